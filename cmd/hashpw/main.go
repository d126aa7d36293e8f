// hashpw imprime o hash bcrypt de uma senha, para ADMIN_PASSWORD_HASH
// ou para a tabela operators.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "custo do bcrypt")
	flag.Parse()

	password := flag.Arg(0)
	if password == "" {
		// Lê da entrada padrão para não deixar a senha no histórico do shell.
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatalf("hashpw: falha ao ler a senha: %v", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		log.Fatal("hashpw: senha vazia")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), *cost)
	if err != nil {
		log.Fatalf("hashpw: %v", err)
	}
	fmt.Println(string(hash))
}
