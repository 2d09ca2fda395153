// Package httperr define a taxonomia de erros exposta pela API.
// Toda resposta de erro carrega um kind estável legível por máquina
// e uma mensagem humana; nada de stack trace ou identificador interno.
package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type Erro struct {
	Status   int      `json:"-"`
	Kind     string   `json:"error"`
	Message  string   `json:"message,omitempty"`
	Detalhes []string `json:"details,omitempty"`
}

func (e *Erro) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Novo(status int, kind, message string) *Erro {
	return &Erro{Status: status, Kind: kind, Message: message}
}

func Validacao(message string) *Erro {
	return Novo(http.StatusBadRequest, "ValidationError", message)
}

func NaoEncontrado(kind, message string) *Erro {
	return Novo(http.StatusNotFound, kind, message)
}

func Conflito(kind, message string) *Erro {
	return Novo(http.StatusConflict, kind, message)
}

func NaoAutorizado(kind, message string) *Erro {
	return Novo(http.StatusUnauthorized, kind, message)
}

func Proibido(message string) *Erro {
	return Novo(http.StatusForbidden, "Forbidden", message)
}

// UpstreamIndisponivel cobre dependências externas fora do ar ou em timeout.
func UpstreamIndisponivel(message string) *Erro {
	return Novo(http.StatusBadGateway, "UpstreamUnavailable", message)
}

func Interno() *Erro {
	return Novo(http.StatusInternalServerError, "InternalServerError", "erro interno, tente novamente mais tarde")
}

// DeValidator converte erros do go-playground/validator em ValidationError
// com o detalhe por campo (equivalente ao abortEarly:false do painel antigo).
func DeValidator(err error) *Erro {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Validacao("payload inválido")
	}
	e := Validacao("payload inválido")
	for _, fe := range verrs {
		e.Detalhes = append(e.Detalhes, fmt.Sprintf("%s: falhou na regra '%s'", fe.Field(), fe.Tag()))
	}
	return e
}

// Escrever serializa o erro no formato {ok:false, error, message}.
func Escrever(w http.ResponseWriter, e *Erro) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(struct {
		OK bool `json:"ok"`
		*Erro
	}{OK: false, Erro: e})
}

// EscreverJSON responde sucesso com o corpo informado.
func EscreverJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
