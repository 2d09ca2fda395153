package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/carteira"
	"github.com/omnigateway/api-usuario/internal/cnpj"
	"github.com/omnigateway/api-usuario/internal/credencial"
	"github.com/omnigateway/api-usuario/internal/httperr"
	"github.com/omnigateway/api-usuario/internal/tarifa"
)

// Handler encapsula DB, repository e os clientes dos serviços vizinhos
type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
	Carteira   *carteira.Client
	CNPJ       *cnpj.Client
}

func NewHandler(db *gorm.DB, log *zap.Logger, wallet *carteira.Client, consulta *cnpj.Client) *Handler {
	return &Handler{
		DB:         db,
		Repository: NewRepository(),
		Log:        log,
		Carteira:   wallet,
		CNPJ:       consulta,
	}
}

func idDaRota(r *http.Request) (uint, *httperr.Erro) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, httperr.Validacao("userId inválido")
	}
	return uint(id), nil
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CriarUsuario cadastra um novo usuário. Credenciais NÃO saem aqui: a
// emissão acontece na aprovação documental ou sob pedido explícito. A
// criação da carteira no wallet-service é best-effort: falha vira campo
// na resposta, nunca rollback do cadastro.
func (h *Handler) CriarUsuario(w http.ResponseWriter, r *http.Request) {
	var req criarUsuarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	u := Usuario{
		Name:       req.Name,
		Email:      ptr(req.Email),
		Document:   ptr(req.Document),
		ExternalID: ptr(req.ExternalID),
		DocStatus:  DocStatusPendente,
		Status:     StatusAtivo,
	}
	db := h.DB.WithContext(r.Context())
	if err := h.Repository.Criar(db, &u); err != nil {
		h.Log.Error("erro ao criar usuário", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	resposta := map[string]interface{}{
		"ok":   true,
		"user": u,
	}
	wallet, err := h.Carteira.CriarCarteira(r.Context(), u.ID)
	if err != nil {
		h.Log.Warn("wallet-service indisponível na criação do usuário",
			zap.Uint("userId", u.ID), zap.Error(err))
		resposta["wallet"] = nil
		resposta["walletError"] = err.Error()
	} else {
		resposta["wallet"] = wallet
	}

	httperr.EscreverJSON(w, http.StatusCreated, resposta)
}

// RegistrarOperador cadastra um operador a partir do CNPJ: consulta a
// BrasilAPI, aplica overrides de razão social/fantasia e calcula o split
// gateway/parceiro.
func (h *Handler) RegistrarOperador(w http.ResponseWriter, r *http.Request) {
	var req registrarOperadorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	numeroCNPJ := somenteDigitos(req.CNPJ)
	if len(numeroCNPJ) != 14 {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "InvalidCNPJ", "CNPJ deve ter 14 dígitos"))
		return
	}

	dados, err := h.CNPJ.Consultar(r.Context(), numeroCNPJ)
	if err != nil {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "CNPJLookupFailed", err.Error()))
		return
	}

	companyName := dados.RazaoSocial
	if req.CompanyNameOverride != "" {
		companyName = req.CompanyNameOverride
	}
	tradeName := dados.NomeFantasia
	if req.TradeNameOverride != "" {
		tradeName = req.TradeNameOverride
	}

	gateway := decimal.NewFromInt(10)
	if req.GatewayFeePercent != nil {
		gateway = *req.GatewayFeePercent
	}
	split, splitErr := tarifa.CalcularSplit(gateway)
	if splitErr != nil {
		httperr.Escrever(w, splitErr)
		return
	}

	bruto := string(dados.Bruto)
	u := Usuario{
		Name:              companyName,
		Email:             ptr(req.Email),
		Document:          &numeroCNPJ,
		ExternalID:        ptr(req.ExternalID),
		CNPJ:              &numeroCNPJ,
		CompanyName:       ptr(companyName),
		TradeName:         ptr(tradeName),
		PartnerName:       &req.PartnerName,
		CNPJData:          &bruto,
		DocStatus:         DocStatusPendente,
		Status:            StatusAtivo,
		GatewayFeePercent: split.GatewayFeePercent,
		PartnerFeePercent: split.PartnerFeePercent,
	}
	db := h.DB.WithContext(r.Context())
	if err := h.Repository.Criar(db, &u); err != nil {
		h.Log.Error("erro ao registrar operador", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	resposta := map[string]interface{}{
		"ok": true,
		"operator": map[string]interface{}{
			"id":                u.ID,
			"cnpj":              numeroCNPJ,
			"companyName":       companyName,
			"tradeName":         tradeName,
			"partnerName":       req.PartnerName,
			"docStatus":         u.DocStatus,
			"gatewayFeePercent": u.GatewayFeePercent,
			"partnerFeePercent": u.PartnerFeePercent,
		},
	}
	wallet, werr := h.Carteira.CriarCarteira(r.Context(), u.ID)
	if werr != nil {
		h.Log.Warn("wallet-service indisponível no registro do operador",
			zap.Uint("userId", u.ID), zap.Error(werr))
		resposta["wallet"] = nil
		resposta["walletError"] = werr.Error()
	} else {
		resposta["wallet"] = wallet
	}

	httperr.EscreverJSON(w, http.StatusCreated, resposta)
}

// ListarUsuarios busca por nome/email/documento com paginação limitada
func (h *Handler) ListarUsuarios(w http.ResponseWriter, r *http.Request) {
	filtro := FiltroListagem{Busca: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		filtro.Limit, _ = strconv.Atoi(raw)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		filtro.Offset, _ = strconv.Atoi(raw)
	}

	usuarios, err := h.Repository.Listar(h.DB.WithContext(r.Context()), filtro)
	if err != nil {
		h.Log.Error("erro ao listar usuários", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": usuarios})
}

// BuscarPorID retorna o usuário pelo ID
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}
	u, err := h.Repository.BuscarPorID(h.DB.WithContext(r.Context()), id)
	if err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}
	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "data": u})
}

// AtualizarConfig altera webhooks e allow-list de IP (whitelist de campos)
func (h *Handler) AtualizarConfig(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req atualizarConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	campos := map[string]interface{}{
		"webhook_url":         req.WebhookURL,
		"webhook_url_pix_in":  req.WebhookURLPixIn,
		"webhook_url_pix_out": req.WebhookURLPixOut,
		"ip_whitelist":        req.IPWhitelist,
	}
	u, err := h.Repository.AtualizarCampos(h.DB.WithContext(r.Context()), id, campos)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
			return
		}
		h.Log.Error("erro ao atualizar config", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":                  true,
		"userId":              u.ID,
		"webhook_url":         u.WebhookURL,
		"webhook_url_pix_in":  u.WebhookURLPixIn,
		"webhook_url_pix_out": u.WebhookURLPixOut,
		"ip_whitelist":        u.IPWhitelist,
	})
}

// AtualizarDocStatus aplica a máquina de estados documental. A transição
// para APPROVED é o único gatilho de primeira emissão de credenciais; o
// segredo em claro sai apenas nessa resposta.
func (h *Handler) AtualizarDocStatus(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req atualizarDocStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !DocStatusValido(status) {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "InvalidDocStatus", "status documental desconhecido: "+status))
		return
	}

	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorID(db, id)
	if err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}
	if !TransicaoDocStatusValida(u.DocStatus, status) {
		httperr.Escrever(w, httperr.Novo(http.StatusBadRequest, "InvalidDocStatus",
			"transição não permitida: "+u.DocStatus+" -> "+status))
		return
	}

	atualizado, err := h.Repository.AtualizarDocStatus(db, id, status, req.Notes)
	if err != nil {
		h.Log.Error("erro ao atualizar doc status", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	var appID, appSecret *string
	if atualizado.AppID != nil {
		appID = atualizado.AppID
	}
	if status == DocStatusAprovado && atualizado.AppID == nil {
		novoAppID, novoSegredo, gerr := credencial.Gerar()
		if gerr != nil {
			h.Log.Error("erro ao gerar credenciais", zap.Error(gerr))
			httperr.Escrever(w, httperr.Interno())
			return
		}
		gravou, werr := h.Repository.DefinirCredenciaisSeAusente(db, id, novoAppID, credencial.Hash(novoSegredo))
		if werr != nil {
			if errors.Is(werr, gorm.ErrDuplicatedKey) {
				httperr.Escrever(w, httperr.Conflito("DuplicateAppId", "app_id já existente"))
				return
			}
			h.Log.Error("erro ao gravar credenciais", zap.Uint("userId", id), zap.Error(werr))
			httperr.Escrever(w, httperr.Interno())
			return
		}
		if gravou {
			appID = &novoAppID
			appSecret = &novoSegredo
		} else {
			// outra aprovação concorrente emitiu primeiro; só devolve o app_id dela
			if recarregado, rerr := h.Repository.BuscarPorID(db, id); rerr == nil {
				appID = recarregado.AppID
			}
		}
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":                 true,
		"userId":             atualizado.ID,
		"docStatus":          atualizado.DocStatus,
		"docStatusNotes":     atualizado.DocStatusNotes,
		"docStatusUpdatedAt": atualizado.DocStatusUpdatedAt,
		"appId":              appID,
		"appSecret":          appSecret,
	})
}

// DefinirTreasury marca/desmarca o usuário como conta tesouraria
func (h *Handler) DefinirTreasury(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req definirTreasuryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.Validacao("isTreasury deve ser boolean"))
		return
	}

	u, err := h.Repository.AtualizarCampos(h.DB.WithContext(r.Context()), id, map[string]interface{}{
		"is_treasury": *req.IsTreasury,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
			return
		}
		h.Log.Error("erro ao definir treasury", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":         true,
		"userId":     u.ID,
		"isTreasury": u.IsTreasury,
	})
}

func somenteDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
