// Package credencial gera e verifica o par app_id/app_secret dos usuários.
// O segredo em claro existe só na resposta que o gerou; em repouso fica
// apenas o digest sha256.
package credencial

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"os"
)

const (
	prefixoAppPadrao    = "mg_live_"
	prefixoSecretPadrao = "sk_live_"

	// bytes aleatórios: 8 para o app_id, 16 (128 bits) para o segredo
	tamanhoApp    = 8
	tamanhoSecret = 16
)

func prefixoApp() string {
	if p := os.Getenv("CREDENTIAL_APP_PREFIX"); p != "" {
		return p
	}
	return prefixoAppPadrao
}

func prefixoSecret() string {
	if p := os.Getenv("CREDENTIAL_SECRET_PREFIX"); p != "" {
		return p
	}
	return prefixoSecretPadrao
}

// Gerar emite um novo par app_id/segredo a partir de crypto/rand.
func Gerar() (appID, secret string, err error) {
	bufApp := make([]byte, tamanhoApp)
	if _, err = rand.Read(bufApp); err != nil {
		return "", "", err
	}
	bufSecret := make([]byte, tamanhoSecret)
	if _, err = rand.Read(bufSecret); err != nil {
		return "", "", err
	}
	appID = prefixoApp() + hex.EncodeToString(bufApp)
	secret = prefixoSecret() + hex.EncodeToString(bufSecret)
	return appID, secret, nil
}

// Hash devolve o digest sha256 em hex do segredo em claro.
func Hash(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Verificar compara em tempo constante o segredo apresentado com o hash armazenado.
func Verificar(hash, secret string) bool {
	calculado := Hash(secret)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(calculado)) == 1
}
