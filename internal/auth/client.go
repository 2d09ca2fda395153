package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Cliente fala com o auth-service, que é quem valida JWT de usuário final.
// Este serviço não verifica essas assinaturas por conta própria.
type Cliente struct {
	http *resty.Client
}

func NovoCliente(baseURL string, timeout time.Duration) *Cliente {
	return &Cliente{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

type UsuarioValidado struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

type validarUsuarioResposta struct {
	OK   bool            `json:"ok"`
	User UsuarioValidado `json:"user"`
}

// ValidarUsuario repassa o bearer token para o auth-service. Devolve o
// status HTTP recebido para o middleware mapear 401/403 fielmente.
func (c *Cliente) ValidarUsuario(ctx context.Context, token string) (*UsuarioValidado, int, error) {
	var corpo validarUsuarioResposta
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&corpo).
		Get("/api/auth/validate-user")
	if err != nil {
		return nil, 0, fmt.Errorf("auth-service indisponível: %w", err)
	}
	if resp.IsError() || !corpo.OK {
		return nil, resp.StatusCode(), fmt.Errorf("auth-service recusou o token (%d)", resp.StatusCode())
	}
	return &corpo.User, resp.StatusCode(), nil
}
