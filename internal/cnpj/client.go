// Package cnpj consulta o cadastro público de CNPJ (BrasilAPI).
package cnpj

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout),
	}
}

// DadosCNPJ traz os campos que o cadastro usa mais o payload bruto, que é
// guardado como veio para auditoria.
type DadosCNPJ struct {
	RazaoSocial  string
	NomeFantasia string
	Bruto        json.RawMessage
}

type respostaRegistro struct {
	RazaoSocial     string `json:"razao_social"`
	NomeEmpresarial string `json:"nome_empresarial"`
	NomeFantasia    string `json:"nome_fantasia"`
}

// Consultar busca o CNPJ (14 dígitos, já limpo) no registro público.
func (c *Client) Consultar(ctx context.Context, numero string) (*DadosCNPJ, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/" + numero)
	if err != nil {
		return nil, fmt.Errorf("consulta de CNPJ falhou: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("consulta de CNPJ retornou %d", resp.StatusCode())
	}

	var registro respostaRegistro
	if err := json.Unmarshal(resp.Body(), &registro); err != nil {
		return nil, fmt.Errorf("resposta de CNPJ ilegível: %w", err)
	}

	razao := registro.RazaoSocial
	if razao == "" {
		razao = registro.NomeEmpresarial
	}
	fantasia := registro.NomeFantasia
	if fantasia == "" {
		fantasia = razao
	}

	return &DadosCNPJ{
		RazaoSocial:  razao,
		NomeFantasia: fantasia,
		Bruto:        json.RawMessage(resp.Body()),
	}, nil
}
