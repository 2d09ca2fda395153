package manutencao

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/httperr"
)

var validate = validator.New()

const mensagemPadrao = "O sistema está em manutenção, tente novamente mais tarde."

type definirManutencaoRequest struct {
	IsActive *bool   `json:"isActive" validate:"required"`
	Message  *string `json:"message"`
}

// Quem pode chamar Definir é decidido por um gate externo (middleware);
// aqui não mora autorização nenhuma.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Log: log}
}

// ObterStatus devolve o flag para o painel admin
func (h *Handler) ObterStatus(w http.ResponseWriter, r *http.Request) {
	m, err := h.Repository.Obter(h.DB.WithContext(r.Context()))
	if err != nil {
		h.Log.Error("erro ao ler modo manutenção", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"data": map[string]interface{}{
			"isActive":  m.IsActive,
			"message":   m.Message,
			"updatedAt": m.UpdatedAt,
		},
	})
}

// Definir liga/desliga o modo manutenção do deployment inteiro
func (h *Handler) Definir(w http.ResponseWriter, r *http.Request) {
	var req definirManutencaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.Validacao("isActive é obrigatório"))
		return
	}

	m, err := h.Repository.Definir(h.DB.WithContext(r.Context()), *req.IsActive, req.Message)
	if err != nil {
		h.Log.Error("erro ao gravar modo manutenção", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	h.Log.Info("modo manutenção alterado", zap.Bool("isActive", m.IsActive))

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"data": map[string]interface{}{
			"isActive":  m.IsActive,
			"message":   m.Message,
			"updatedAt": m.UpdatedAt,
		},
	})
}

// StatusPublico é a versão sem autenticação consumida pelos frontends
func (h *Handler) StatusPublico(w http.ResponseWriter, r *http.Request) {
	m, err := h.Repository.Obter(h.DB.WithContext(r.Context()))
	if err != nil {
		h.Log.Error("erro ao ler modo manutenção", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	mensagem := mensagemPadrao
	if m.Message != nil && *m.Message != "" {
		mensagem = *m.Message
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"data": map[string]interface{}{
			"isActive": m.IsActive,
			"message":  mensagem,
		},
	})
}
