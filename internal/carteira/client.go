// Package carteira fala com o wallet-service. A criação da carteira é um
// efeito colateral best-effort do cadastro: tem timeout próprio e a falha
// é devolvida para o chamador reportar na resposta, nunca derruba o
// cadastro do usuário.
package carteira

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type Client struct {
	http *resty.Client
	log  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
		log: log,
	}
}

// CriarCarteira garante a carteira do usuário no wallet-service.
// O GET cria a carteira se ela ainda não existe.
func (c *Client) CriarCarteira(ctx context.Context, userID uint) (map[string]interface{}, error) {
	var corpo map[string]interface{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&corpo).
		Get(fmt.Sprintf("/api/users/%d/wallet", userID))
	if err != nil {
		return nil, fmt.Errorf("wallet-service: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("wallet-service respondeu %d", resp.StatusCode())
	}
	c.log.Debug("carteira garantida no wallet-service", zap.Uint("userId", userID))
	return corpo, nil
}
