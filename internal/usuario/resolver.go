package usuario

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/omnigateway/api-usuario/internal/auth"
	"github.com/omnigateway/api-usuario/internal/credencial"
	"github.com/omnigateway/api-usuario/internal/httperr"
)

// ResolverUsuario identifica o usuário dono da requisição seguindo uma
// precedência estrita: sessão autenticada no contexto, depois o {id} da
// rota, por fim o par app_id/segredo nos headers. É o único ponto do
// serviço que faz essa resolução; os handlers não repetem sniffing de
// header por conta própria.
func ResolverUsuario(r *http.Request, db *gorm.DB, repo Repository) (*Usuario, *httperr.Erro) {
	// 1) sessão validada pelo middleware
	if v := r.Context().Value(auth.CtxUserID); v != nil {
		if id, ok := v.(uint); ok && id > 0 {
			u, err := repo.BuscarPorID(db, id)
			if err != nil {
				return nil, httperr.NaoEncontrado("UserNotFound", "usuário da sessão não encontrado")
			}
			return u, nil
		}
	}

	// 2) parâmetro de rota
	if raw := mux.Vars(r)["id"]; raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return nil, httperr.Validacao("userId inválido")
		}
		u, err2 := repo.BuscarPorID(db, uint(id))
		if err2 != nil {
			return nil, httperr.NaoEncontrado("UserNotFound", "usuário não encontrado")
		}
		return u, nil
	}

	// 3) par app_id/segredo nos headers
	appID := primeiroHeader(r, "app_id", "app-id")
	segredo := primeiroHeader(r, "app_secret", "client_secret", "client-secret")
	if appID == "" || segredo == "" {
		return nil, httperr.Validacao("userId, app_id e app_secret são obrigatórios")
	}

	u, err := repo.BuscarPorAppID(db, appID)
	if err != nil {
		return nil, httperr.NaoAutorizado("InvalidAppId", "app_id inválido ou não encontrado")
	}
	if u.AppSecretHash == nil || !credencial.Verificar(*u.AppSecretHash, segredo) {
		return nil, httperr.NaoAutorizado("InvalidAppSecret", "app_secret não corresponde às credenciais")
	}
	return u, nil
}

func primeiroHeader(r *http.Request, nomes ...string) string {
	for _, nome := range nomes {
		if v := r.Header.Get(nome); v != "" {
			return v
		}
	}
	return ""
}
