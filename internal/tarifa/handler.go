package tarifa

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/httperr"
)

var validate = validator.New()

type definirTarifasRequest struct {
	PixInType   string           `json:"pixInType" validate:"required"`
	PixInValue  *decimal.Decimal `json:"pixInValue" validate:"required"`
	PixOutType  string           `json:"pixOutType" validate:"required"`
	PixOutValue *decimal.Decimal `json:"pixOutValue" validate:"required"`
}

type Handler struct {
	DB         *gorm.DB
	Repository Repository
	Log        *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{DB: db, Repository: NewRepository(), Log: log}
}

// a checagem de existência consulta a tabela direto para não acoplar o
// pacote de tarifas ao de usuários
func usuarioExiste(db *gorm.DB, id uint) (bool, error) {
	var total int64
	err := db.Table("usuarios").
		Where("id = ? AND deleted_at IS NULL", id).
		Count(&total).Error
	return total > 0, err
}

func idDaRota(r *http.Request) (uint, *httperr.Erro) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, httperr.Validacao("userId inválido")
	}
	return uint(id), nil
}

// DefinirTarifas grava a tabela de tarifas Pix do usuário (upsert)
func (h *Handler) DefinirTarifas(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	var req definirTarifasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.DeValidator(err))
		return
	}

	tipoIn := strings.ToUpper(strings.TrimSpace(req.PixInType))
	tipoOut := strings.ToUpper(strings.TrimSpace(req.PixOutType))
	if e := ValidarComponente("pixIn", tipoIn, *req.PixInValue); e != nil {
		httperr.Escrever(w, e)
		return
	}
	if e := ValidarComponente("pixOut", tipoOut, *req.PixOutValue); e != nil {
		httperr.Escrever(w, e)
		return
	}

	db := h.DB.WithContext(r.Context())
	existe, err := usuarioExiste(db, id)
	if err != nil {
		h.Log.Error("erro ao checar usuário", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	if !existe {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}

	t := Tarifa{
		UserID:      id,
		PixInType:   tipoIn,
		PixInValue:  req.PixInValue.Round(2),
		PixOutType:  tipoOut,
		PixOutValue: req.PixOutValue.Round(2),
	}
	if err := h.Repository.Definir(db, &t); err != nil {
		h.Log.Error("erro ao gravar tarifas", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"userId": id,
		"fees": map[string]interface{}{
			"pixInType":   t.PixInType,
			"pixInValue":  t.PixInValue,
			"pixOutType":  t.PixOutType,
			"pixOutValue": t.PixOutValue,
		},
	})
}

// ObterTarifasInterno serve o serviço de pagamentos; tabela ausente
// significa tarifa zero.
func (h *Handler) ObterTarifasInterno(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	db := h.DB.WithContext(r.Context())
	t, err := h.Repository.BuscarPorUsuario(db, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
				"ok":     true,
				"userId": id,
				"fees": map[string]interface{}{
					"pixInType":   TipoPercentual,
					"pixInValue":  decimal.Zero,
					"pixOutType":  TipoPercentual,
					"pixOutValue": decimal.Zero,
				},
			})
			return
		}
		h.Log.Error("erro ao buscar tarifas", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"userId": id,
		"fees": map[string]interface{}{
			"pixInType":   t.PixInType,
			"pixInValue":  t.PixInValue,
			"pixOutType":  t.PixOutType,
			"pixOutValue": t.PixOutValue,
		},
	})
}
