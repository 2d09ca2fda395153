package config

import (
	"os"
	"strconv"
	"time"
)

// Config concentra toda a configuração lida do ambiente.
// O .env é carregado pelo main via godotenv antes de Load().
type Config struct {
	HTTPPort string
	LogLevel string

	DB DBConfig

	JWTSecret string

	AuthServiceURL   string
	WalletServiceURL string
	CNPJAPIURL       string

	// Prefixos públicos das credenciais emitidas
	CredentialAppPrefix    string
	CredentialSecretPrefix string

	// Timeout dos clientes HTTP de saída (auth, wallet, BrasilAPI)
	HTTPClientTimeout time.Duration
}

type DBConfig struct {
	Host     string
	Port     uint
	Name     string
	SecretID string
}

func Load() *Config {
	port, err := strconv.ParseUint(os.Getenv("DB_PORT"), 10, 32)
	if err != nil {
		port = 5432
	}

	timeout := 5 * time.Second
	if raw := os.Getenv("HTTP_CLIENT_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: os.Getenv("LOG_LEVEL"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     uint(port),
			Name:     os.Getenv("DB_NAME"),
			SecretID: os.Getenv("DB_SECRET_ID"),
		},
		JWTSecret:              os.Getenv("JWT_SECRET"),
		AuthServiceURL:         getEnv("AUTH_SERVICE_URL", "http://localhost:3001"),
		WalletServiceURL:       getEnv("WALLET_SERVICE_URL", "http://localhost:3002"),
		CNPJAPIURL:             getEnv("CNPJ_API_URL", "https://brasilapi.com.br/api/cnpj/v1"),
		CredentialAppPrefix:    getEnv("CREDENTIAL_APP_PREFIX", "mg_live_"),
		CredentialSecretPrefix: getEnv("CREDENTIAL_SECRET_PREFIX", "sk_live_"),
		HTTPClientTimeout:      timeout,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
