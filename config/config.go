package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de persistência suportados.
const (
	StoreCSV      = "csv"
	StorePostgres = "postgres"
)

// Config armazena todas as configurações do serviço BookStock.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Persistência
	StoreDriver string // csv (padrão) ou postgres
	DataDir     string // Diretório dos arquivos CSV

	// Banco de Dados (PostgreSQL, apenas com STORE_DRIVER=postgres)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis). Endereço vazio desativa o cache.
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT + credencial do administrador)
	JWTSecretKey      string
	TokenExpiry       time.Duration
	AdminUsername     string
	AdminPasswordHash string

	// Rate Limiting (rotas públicas)
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente via Viper.
// O .env já deve ter sido carregado pelo main (godotenv).
func LoadConfig() *Config {
	return loadFrom(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE_DRIVER", StoreCSV)
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("CACHE_TTL_SEC", 300)
	v.SetDefault("JWT_EXPIRY_MIN", 60)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
	return v
}

func loadFrom(v *viper.Viper) *Config {
	return &Config{
		// 1. Geral
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		// 2. Persistência
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		DataDir:     v.GetString("DATA_DIR"),

		// 3. Banco de Dados
		DatabaseURL: v.GetString("DATABASE_URL"),
		DBTimeout:   time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,

		// 4. Cache
		RedisAddr: v.GetString("REDIS_ADDR"),
		CacheTTL:  time.Duration(v.GetInt("CACHE_TTL_SEC")) * time.Second,

		// 5. Segurança
		JWTSecretKey:      v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:       time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,
		AdminUsername:     v.GetString("ADMIN_USERNAME"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),

		// 6. Rate Limiting
		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,
	}
}

// Validate garante que as variáveis obrigatórias estejam presentes para o driver escolhido.
func (c *Config) Validate() error {
	var errs []error

	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY deve ser definida"))
	}

	switch c.StoreDriver {
	case StoreCSV:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR deve ser definida para o driver csv"))
		}
		if c.AdminPasswordHash == "" {
			errs = append(errs, errors.New("ADMIN_PASSWORD_HASH deve ser definida para o driver csv"))
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL deve ser definida para o driver postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER inválido: '%s' (use csv ou postgres)", c.StoreDriver))
	}

	return errors.Join(errs...)
}
