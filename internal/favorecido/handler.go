package favorecido

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/httperr"
	"github.com/omnigateway/api-usuario/internal/usuario"
)

var validate = validator.New()

type criarFavorecidoRequest struct {
	Name     string  `json:"name" validate:"required"`
	BankName *string `json:"bank_name"`
	Document *string `json:"document"`
	PixKey   string  `json:"pix_key" validate:"required"`
	KeyType  *string `json:"key_type"`
}

type atualizarFavorecidoRequest struct {
	Name     *string `json:"name"`
	BankName *string `json:"bank_name"`
	Document *string `json:"document"`
	PixKey   *string `json:"pix_key"`
	KeyType  *string `json:"key_type"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Usuarios   usuario.Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Usuarios:   usuario.NewRepository(),
		Log:        log,
	}
}

// dono resolve o usuário da requisição (sessão -> {id} da rota -> par
// app_id/segredo) num ponto só.
func (h *Handler) dono(r *http.Request, db *gorm.DB) (*usuario.Usuario, *httperr.Erro) {
	return usuario.ResolverUsuario(r, db, h.Usuarios)
}

// Criar cadastra um favorecido Pix do usuário
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	u, herr := h.dono(r, db)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req criarFavorecidoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	f := Favorecido{
		UserID:   u.ID,
		Name:     req.Name,
		BankName: req.BankName,
		Document: req.Document,
		PixKey:   req.PixKey,
		KeyType:  req.KeyType,
	}
	if err := h.Repository.Criar(db, &f); err != nil {
		h.Log.Error("erro ao criar favorecido", zap.Uint("userId", u.ID), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "data": f})
}

// Listar retorna os favorecidos do usuário
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	u, herr := h.dono(r, db)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	lista, err := h.Repository.ListarPorUsuario(db, u.ID)
	if err != nil {
		h.Log.Error("erro ao listar favorecidos", zap.Uint("userId", u.ID), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": lista})
}

func idFavorecido(r *http.Request) (uint, *httperr.Erro) {
	id, err := strconv.Atoi(mux.Vars(r)["bid"])
	if err != nil || id <= 0 {
		return 0, httperr.Validacao("id de favorecido inválido")
	}
	return uint(id), nil
}

// Buscar retorna um favorecido específico do usuário
func (h *Handler) Buscar(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	u, herr := h.dono(r, db)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}
	id, herr := idFavorecido(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	f, err := h.Repository.Buscar(db, u.ID, id)
	if err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("BeneficiaryNotFound", "favorecido não encontrado"))
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": f})
}

// Atualizar altera dados de um favorecido
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	u, herr := h.dono(r, db)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}
	id, herr := idFavorecido(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req atualizarFavorecidoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}

	campos := map[string]interface{}{}
	if req.Name != nil {
		campos["name"] = *req.Name
	}
	if req.BankName != nil {
		campos["bank_name"] = req.BankName
	}
	if req.Document != nil {
		campos["document"] = req.Document
	}
	if req.PixKey != nil {
		campos["pix_key"] = *req.PixKey
	}
	if req.KeyType != nil {
		campos["key_type"] = req.KeyType
	}

	f, err := h.Repository.Atualizar(db, u.ID, id, campos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Escrever(w, httperr.NaoEncontrado("BeneficiaryNotFound", "favorecido não encontrado"))
			return
		}
		h.Log.Error("erro ao atualizar favorecido", zap.Uint("userId", u.ID), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": f})
}

// Remover exclui um favorecido do usuário
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	db := h.DB.WithContext(r.Context())
	u, herr := h.dono(r, db)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}
	id, herr := idFavorecido(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	if err := h.Repository.Remover(db, u.ID, id); err != nil {
		h.Log.Error("erro ao remover favorecido", zap.Uint("userId", u.ID), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
