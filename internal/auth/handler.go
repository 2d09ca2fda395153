package auth

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/omnigateway/api-usuario/internal/httperr"
	"github.com/omnigateway/api-usuario/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler cuida do login do painel admin. O admin é único e vem do
// ambiente (ADMIN_EMAIL + ADMIN_PASSWORD_HASH, ou ADMIN_PASSWORD que é
// hasheada no boot).
type Handler struct {
	Log       *zap.Logger
	email     string
	hashSenha string
}

func NewHandler(log *zap.Logger) *Handler {
	h := &Handler{
		Log:       log,
		email:     os.Getenv("ADMIN_EMAIL"),
		hashSenha: os.Getenv("ADMIN_PASSWORD_HASH"),
	}
	if h.hashSenha == "" {
		if senha := os.Getenv("ADMIN_PASSWORD"); senha != "" {
			if hash, err := utils.HashSenha(senha); err == nil {
				h.hashSenha = hash
			}
		}
	}
	return h
}

// LoginAdmin valida email+senha do painel e emite o JWT de admin
func (h *Handler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}

	if h.email == "" || h.hashSenha == "" {
		h.Log.Warn("login do painel chamado sem ADMIN_EMAIL/ADMIN_PASSWORD configurados")
		httperr.Escrever(w, httperr.NaoAutorizado("Unauthorized", "credenciais inválidas"))
		return
	}
	if req.Email != h.email || !utils.VerificarSenha(h.hashSenha, req.Password) {
		httperr.Escrever(w, httperr.NaoAutorizado("Unauthorized", "credenciais inválidas"))
		return
	}

	token, err := GerarToken(0, true)
	if err != nil {
		h.Log.Error("erro ao gerar token do painel", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]string{"token": token})
}
