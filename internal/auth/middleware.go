package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/omnigateway/api-usuario/internal/httperr"
)

type ctxKey string

const (
	CtxUserID  ctxKey = "usuarioID"
	CtxIsAdmin ctxKey = "isAdmin"
)

func extrairBearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// MiddlewareAutenticacao valida o bearer token junto ao auth-service e
// injeta a identidade no contexto.
func MiddlewareAutenticacao(cliente *Cliente) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := extrairBearer(r)
			if !ok {
				httperr.Escrever(w, httperr.NaoAutorizado("MissingAuthorizationHeader", "token ausente"))
				return
			}

			user, status, err := cliente.ValidarUsuario(r.Context(), raw)
			if err != nil {
				switch status {
				case http.StatusUnauthorized:
					httperr.Escrever(w, httperr.NaoAutorizado("InvalidToken", "token inválido"))
				case http.StatusForbidden:
					httperr.Escrever(w, httperr.Proibido("acesso negado"))
				default:
					httperr.Escrever(w, httperr.UpstreamIndisponivel("auth-service indisponível"))
				}
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, user.ID)
			ctx = context.WithValue(ctx, CtxIsAdmin, user.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MiddlewareAdmin aceita só o token HS256 do painel com claim de admin.
func MiddlewareAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := extrairBearer(r)
		if !ok {
			httperr.Escrever(w, httperr.NaoAutorizado("MissingAuthorizationHeader", "token ausente"))
			return
		}
		claims, err := ValidarToken(raw)
		if err != nil {
			httperr.Escrever(w, httperr.NaoAutorizado("InvalidToken", "token inválido"))
			return
		}
		if !claims.IsAdmin {
			httperr.Escrever(w, httperr.Proibido("somente admin"))
			return
		}
		ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
		ctx = context.WithValue(ctx, CtxIsAdmin, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
