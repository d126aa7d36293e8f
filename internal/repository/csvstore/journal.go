package csvstore

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperror "bookstock/internal/errors"
)

// journalFile marca um commit decidido: enquanto existir, os temporários listados
// nele estão completos e devem substituir os originais.
const journalFile = ".commit"

const tmpSuffix = ".tmp"

// fileChange é o conteúdo completo (sem cabeçalho) que substituirá um dataset.
type fileChange struct {
	name string
	rows [][]string
}

// commit grava todas as alterações de forma atômica em relação a falhas do processo:
// temporários -> journal -> renomeações -> remoção do journal.
func (s *Store) commit(changes ...fileChange) error {
	if err := s.settle(); err != nil {
		return err
	}

	names := make([]string, 0, len(changes))
	for _, c := range changes {
		if err := writeFileSync(s.path(c.name)+tmpSuffix, encodeCSV(schemas[c.name], c.rows)); err != nil {
			s.discardTemps()
			return fmt.Errorf("gravar temporário de %s: %w", c.name, err)
		}
		names = append(names, c.name)
	}

	// O rename do journal é o ponto de decisão do commit.
	journal := []byte(strings.Join(names, "\n") + "\n")
	if err := writeFileSync(s.path(journalFile)+tmpSuffix, journal); err != nil {
		s.discardTemps()
		return fmt.Errorf("gravar journal: %w", err)
	}
	if err := os.Rename(s.path(journalFile)+tmpSuffix, s.path(journalFile)); err != nil {
		s.discardTemps()
		return fmt.Errorf("publicar journal: %w", err)
	}
	if err := syncDir(s.dir); err != nil {
		return fmt.Errorf("sincronizar diretório: %w", err)
	}

	// Daqui em diante o commit está decidido e não pode ser reportado como falha.
	if err := s.rollForward(names); err != nil {
		s.pending = names
		s.logger.Error("Commit decidido, mas renomeações pendentes. Nova tentativa na próxima operação.", err)
	}
	return nil
}

// settle conclui um commit decidido cujas renomeações falharam. Enquanto não
// concluir, nenhuma leitura ou gravação é servida.
func (s *Store) settle() error {
	if s.pending == nil {
		return nil
	}
	if err := s.rollForward(s.pending); err != nil {
		return apperror.NewStorageError("Commit pendente não concluído", err)
	}
	s.logger.Info("Commit pendente concluído.", map[string]interface{}{"files": s.pending})
	s.pending = nil
	return nil
}

// rollForward aplica as renomeações de um commit já decidido e remove o journal.
func (s *Store) rollForward(names []string) error {
	for _, name := range names {
		tmp := s.path(name) + tmpSuffix
		if err := s.rename(tmp, s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("renomear %s: %w", name, err)
		}
	}
	if err := os.Remove(s.path(journalFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remover journal: %w", err)
	}
	return syncDir(s.dir)
}

// recover conclui um commit interrompido ou descarta temporários órfãos.
func (s *Store) recover() error {
	data, err := os.ReadFile(s.path(journalFile))
	if errors.Is(err, fs.ErrNotExist) {
		s.discardTemps()
		return nil
	}
	if err != nil {
		return fmt.Errorf("ler journal: %w", err)
	}

	var names []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if _, known := schemas[name]; known {
			names = append(names, name)
		}
	}
	s.logger.Warn("Commit interrompido encontrado. Concluindo gravação pendente.", map[string]interface{}{"files": names})
	return s.rollForward(names)
}

// discardTemps remove temporários que não pertencem a um commit decidido.
func (s *Store) discardTemps() {
	for name := range schemas {
		_ = os.Remove(s.path(name) + tmpSuffix)
	}
	_ = os.Remove(s.path(journalFile) + tmpSuffix)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func encodeCSV(header []string, rows [][]string) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	_ = w.WriteAll(rows) // WriteAll faz o Flush; escrita em memória não falha
	return buf.Bytes()
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Alguns sistemas de arquivos não suportam fsync em diretórios.
	_ = d.Sync()
	return nil
}
