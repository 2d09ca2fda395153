package provedor

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/httperr"
)

var validate = validator.New()

type criarProviderRequest struct {
	Code    string  `json:"code" validate:"required,min=2"`
	Name    string  `json:"name" validate:"required,min=2"`
	BaseURL *string `json:"baseUrl" validate:"omitempty,url"`
	Active  *bool   `json:"active"`
}

type atualizarProviderRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2"`
	BaseURL *string `json:"baseUrl" validate:"omitempty,url"`
	Active  *bool   `json:"active"`
}

type atribuirProviderRequest struct {
	Provider *string `json:"provider"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Log: log}
}

// NormalizarCode leva o código à forma canônica do catálogo
func NormalizarCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CriarProvider cadastra um provider no catálogo (admin)
func (h *Handler) CriarProvider(w http.ResponseWriter, r *http.Request) {
	var req criarProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	ativo := true
	if req.Active != nil {
		ativo = *req.Active
	}
	p := Provider{
		Code:    NormalizarCode(req.Code),
		Name:    req.Name,
		BaseURL: req.BaseURL,
		Active:  ativo,
	}
	if err := h.Repository.Criar(h.DB.WithContext(r.Context()), &p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httperr.Escrever(w, httperr.Conflito("DuplicateProviderCode", "já existe provider com esse código"))
			return
		}
		h.Log.Error("erro ao criar provider", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "data": p})
}

// ListarProviders lista o catálogo com filtro de ativo, busca e paginação
func (h *Handler) ListarProviders(w http.ResponseWriter, r *http.Request) {
	filtro := FiltroListagem{Busca: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("active"); raw != "" {
		ativo := raw == "true"
		filtro.Ativo = &ativo
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		filtro.Limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		filtro.Offset, _ = strconv.Atoi(raw)
	}

	providers, total, err := h.Repository.Listar(h.DB.WithContext(r.Context()), filtro)
	if err != nil {
		h.Log.Error("erro ao listar providers", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":    true,
		"data":  providers,
		"total": total,
	})
}

// BuscarProvider retorna um provider pelo ID
func (h *Handler) BuscarProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		httperr.Escrever(w, httperr.Validacao("providerId inválido"))
		return
	}
	p, rerr := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), uint(id))
	if rerr != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("ProviderNotFound", "provider não encontrado"))
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": p})
}

// AtualizarProvider altera nome, endpoint ou flag de ativo
func (h *Handler) AtualizarProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		httperr.Escrever(w, httperr.Validacao("providerId inválido"))
		return
	}

	var req atualizarProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	campos := map[string]interface{}{}
	if req.Name != nil {
		campos["name"] = *req.Name
	}
	if req.BaseURL != nil {
		campos["base_url"] = *req.BaseURL
	}
	if req.Active != nil {
		campos["active"] = *req.Active
	}

	p, uerr := h.Repository.Atualizar(h.DB.WithContext(r.Context()), uint(id), campos)
	if uerr != nil {
		if errors.Is(uerr, gorm.ErrRecordNotFound) {
			httperr.Escrever(w, httperr.NaoEncontrado("ProviderNotFound", "provider não encontrado"))
			return
		}
		h.Log.Error("erro ao atualizar provider", zap.Int("providerId", id), zap.Error(uerr))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": p})
}

// DeletarProvider remove do catálogo, mas nunca enquanto algum usuário
// ainda estiver roteado pelo código: nesse caso responde conflito e o
// caminho é desativar.
func (h *Handler) DeletarProvider(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		httperr.Escrever(w, httperr.Validacao("providerId inválido"))
		return
	}

	db := h.DB.WithContext(r.Context())
	p, rerr := h.Repository.BuscarPorID(db, uint(id))
	if rerr != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("ProviderNotFound", "provider não encontrado"))
		return
	}

	roteados, cerr := h.Repository.ContarUsuariosRoteados(db, p.Code)
	if cerr != nil {
		h.Log.Error("erro ao contar usuários roteados", zap.String("code", p.Code), zap.Error(cerr))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	if roteados > 0 {
		httperr.Escrever(w, httperr.Conflito("ProviderInUse",
			"provider ainda roteia usuários; desative em vez de excluir"))
		return
	}

	if derr := h.Repository.Deletar(db, uint(id)); derr != nil {
		h.Log.Error("erro ao excluir provider", zap.Int("providerId", id), zap.Error(derr))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// AtribuirAoUsuario liga (ou desliga, com provider null) o roteamento do
// usuário. Código não nulo precisa existir e estar ativo; a escrita
// re-checa o ativo no mesmo statement para não atribuir um provider
// desativado entre a validação e o UPDATE.
func (h *Handler) AtribuirAoUsuario(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		httperr.Escrever(w, httperr.Validacao("userId inválido"))
		return
	}

	var req atribuirProviderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}

	db := h.DB.WithContext(r.Context())

	var linha struct {
		ID       uint
		Provider *string
	}
	if err := db.Table("usuarios").
		Select("id, provider").
		Where("id = ? AND deleted_at IS NULL", userID).
		Take(&linha).Error; err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}

	// desatribuição explícita é sempre permitida, ativo ou não
	if req.Provider == nil || strings.TrimSpace(*req.Provider) == "" {
		if err := db.Table("usuarios").
			Where("id = ?", userID).
			Updates(map[string]interface{}{"provider": nil, "updated_at": time.Now()}).Error; err != nil {
			h.Log.Error("erro ao limpar provider", zap.Int("userId", userID), zap.Error(err))
			httperr.Escrever(w, httperr.Interno())
			return
		}
		httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
			"ok": true, "userId": linha.ID, "provider": nil,
		})
		return
	}

	code := NormalizarCode(*req.Provider)

	// reatribuir o provider atual é um no-op de sucesso
	if linha.Provider != nil && *linha.Provider == code {
		httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
			"ok": true, "userId": linha.ID, "provider": code,
		})
		return
	}

	p, perr := h.Repository.BuscarPorCode(db, code)
	if perr != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("ProviderNotFound",
			"provider com código '"+code+"' não encontrado"))
		return
	}
	if !p.Active {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "ProviderInactive",
			"provider '"+code+"' está inativo"))
		return
	}

	// escrita condicionada: só grava se o provider ainda estiver ativo
	res := db.Exec(
		`UPDATE usuarios SET provider = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL
		   AND EXISTS (SELECT 1 FROM providers WHERE code = ? AND active = ? AND deleted_at IS NULL)`,
		code, time.Now(), userID, code, true,
	)
	if res.Error != nil {
		h.Log.Error("erro ao atribuir provider", zap.Int("userId", userID), zap.Error(res.Error))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	if res.RowsAffected == 0 {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "ProviderInactive",
			"provider '"+code+"' foi desativado durante a atribuição"))
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true, "userId": linha.ID, "provider": code,
	})
}
