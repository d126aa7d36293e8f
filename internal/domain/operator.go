package domain

// Role é o papel de quem acessa o sistema.
type Role string

// Papéis aceitos na coluna operators.role. Um token "partner" autentica, mas
// só alcança as rotas públicas; as rotas administrativas exigem RoleAdmin.
const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
)

// Operator é um usuário interno com credencial (hash bcrypt).
type Operator struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Nunca exposto no JSON de resposta
	Role         Role   `json:"role"`
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
