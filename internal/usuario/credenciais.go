package usuario

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/credencial"
	"github.com/omnigateway/api-usuario/internal/httperr"
)

// ObterCredenciais devolve o app_id do usuário. Se ele ainda não tem
// credencial, emite uma na hora: esse é o único momento em que o segredo
// em claro aparece aqui.
func (h *Handler) ObterCredenciais(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorID(db, id)
	if err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}

	if u.AppID != nil && u.AppSecretHash != nil {
		// segredo já emitido antes; só o hash existe em repouso e ele nunca sai
		httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"data": map[string]interface{}{"appId": *u.AppID},
		})
		return
	}

	appID, segredo, err := credencial.Gerar()
	if err != nil {
		h.Log.Error("erro ao gerar credenciais", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	gravou, err := h.Repository.DefinirCredenciaisSeAusente(db, id, appID, credencial.Hash(segredo))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httperr.Escrever(w, httperr.Conflito("DuplicateAppId", "app_id já existente"))
			return
		}
		h.Log.Error("erro ao gravar credenciais", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}
	if !gravou {
		// emissão concorrente venceu; devolve o app_id gravado, sem segredo
		atual, rerr := h.Repository.BuscarPorID(db, id)
		if rerr != nil || atual.AppID == nil {
			httperr.Escrever(w, httperr.Interno())
			return
		}
		httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
			"ok":   true,
			"data": map[string]interface{}{"appId": *atual.AppID},
		})
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok": true,
		"data": map[string]interface{}{
			"appId":     appID,
			"appSecret": segredo,
		},
	})
}

// RotacionarCredenciais sempre emite um segredo novo e invalida o anterior
// sobrescrevendo o hash. O app_id público permanece o mesmo.
func (h *Handler) RotacionarCredenciais(w http.ResponseWriter, r *http.Request) {
	id, herr := idDaRota(r)
	if herr != nil {
		httperr.Escrever(w, herr)
		return
	}

	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorID(db, id)
	if err != nil {
		httperr.Escrever(w, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado"))
		return
	}

	appID, segredo, err := credencial.Gerar()
	if err != nil {
		h.Log.Error("erro ao gerar credenciais", zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	if u.AppID == nil {
		gravou, werr := h.Repository.DefinirCredenciaisSeAusente(db, id, appID, credencial.Hash(segredo))
		if werr != nil {
			h.Log.Error("erro ao gravar credenciais", zap.Uint("userId", id), zap.Error(werr))
			httperr.Escrever(w, httperr.Interno())
			return
		}
		if gravou {
			httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
				"ok":   true,
				"data": map[string]interface{}{"appId": appID, "appSecret": segredo},
			})
			return
		}
		// corrida com primeira emissão: segue para rotação normal
		if u, err = h.Repository.BuscarPorID(db, id); err != nil || u.AppID == nil {
			httperr.Escrever(w, httperr.Interno())
			return
		}
	}

	if err := h.Repository.RotacionarSegredo(db, id, credencial.Hash(segredo)); err != nil {
		h.Log.Error("erro ao rotacionar segredo", zap.Uint("userId", id), zap.Error(err))
		httperr.Escrever(w, httperr.Interno())
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"data": map[string]interface{}{"appId": *u.AppID, "appSecret": segredo},
	})
}

// ValidarCredenciaisInterno é consumido pelos serviços irmãos para
// autenticar chamadas com o par app_id/segredo.
func (h *Handler) ValidarCredenciaisInterno(w http.ResponseWriter, r *http.Request) {
	var req validarCredenciaisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Escrever(w, httperr.Validacao("payload inválido"))
		return
	}
	if err := validate.Struct(req); err != nil {
		httperr.Escrever(w, httperr.Validacao("appId e secret são obrigatórios"))
		return
	}

	db := h.DB.WithContext(r.Context())
	u, err := h.Repository.BuscarPorAppID(db, req.AppID)
	if err != nil {
		httperr.Escrever(w, httperr.NaoAutorizado("Unauthorized", "appId inválido"))
		return
	}
	if u.AppSecretHash == nil || !credencial.Verificar(*u.AppSecretHash, req.Secret) {
		httperr.Escrever(w, httperr.NaoAutorizado("Unauthorized", "secret inválido"))
		return
	}

	httperr.EscreverJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"user": MontarResumoUsuarioDTO(u),
	})
}
