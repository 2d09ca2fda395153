package usuario

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omnigateway/api-usuario/internal/auth"
	"github.com/omnigateway/api-usuario/internal/credencial"
)

func TestResolverUsuarioPrecedencia(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	daSessao := criarUsuarioTeste(t, db, "Da Sessão")
	daRota := criarUsuarioTeste(t, db, "Da Rota")

	appID := "mg_live_resolver"
	hash := credencial.Hash("sk_live_resolver")
	doHeader := &Usuario{Name: "Do Header", DocStatus: DocStatusAprovado, Status: StatusAtivo,
		AppID: &appID, AppSecretHash: &hash}
	require.NoError(t, repo.Criar(db, doHeader))

	// sessão no contexto ganha de rota e headers
	req := httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req = req.WithContext(context.WithValue(req.Context(), auth.CtxUserID, daSessao.ID))
	req = mux.SetURLVars(req, map[string]string{"id": itoa(daRota.ID)})
	req.Header.Set("app_id", appID)
	req.Header.Set("app_secret", "sk_live_resolver")

	u, herr := ResolverUsuario(req, db, repo)
	require.Nil(t, herr)
	assert.Equal(t, daSessao.ID, u.ID)

	// sem sessão, vale o {id} da rota
	req = httptest.NewRequest(http.MethodGet, "/users/x/beneficiaries", nil)
	req = mux.SetURLVars(req, map[string]string{"id": itoa(daRota.ID)})
	req.Header.Set("app_id", appID)
	req.Header.Set("app_secret", "sk_live_resolver")

	u, herr = ResolverUsuario(req, db, repo)
	require.Nil(t, herr)
	assert.Equal(t, daRota.ID, u.ID)

	// por fim, o par app_id/segredo nos headers
	req = httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req.Header.Set("app_id", appID)
	req.Header.Set("app_secret", "sk_live_resolver")

	u, herr = ResolverUsuario(req, db, repo)
	require.Nil(t, herr)
	assert.Equal(t, doHeader.ID, u.ID)
}

func TestResolverUsuarioAliasDeHeader(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	appID := "mg_live_alias"
	hash := credencial.Hash("sk_live_alias")
	u := &Usuario{Name: "Alias", DocStatus: DocStatusAprovado, Status: StatusAtivo,
		AppID: &appID, AppSecretHash: &hash}
	require.NoError(t, repo.Criar(db, u))

	// integrações antigas mandam client_secret em vez de app_secret
	req := httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req.Header.Set("app-id", appID)
	req.Header.Set("client_secret", "sk_live_alias")

	achado, herr := ResolverUsuario(req, db, repo)
	require.Nil(t, herr)
	assert.Equal(t, u.ID, achado.ID)
}

func TestResolverUsuarioFalhas(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	appID := "mg_live_certo"
	hash := credencial.Hash("sk_live_certo")
	require.NoError(t, repo.Criar(db, &Usuario{Name: "Dono", DocStatus: DocStatusAprovado,
		Status: StatusAtivo, AppID: &appID, AppSecretHash: &hash}))

	// sem sessão, rota ou headers
	req := httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	_, herr := ResolverUsuario(req, db, repo)
	require.NotNil(t, herr)
	assert.Equal(t, http.StatusBadRequest, herr.Status)

	// app_id desconhecido
	req = httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req.Header.Set("app_id", "mg_live_fantasma")
	req.Header.Set("app_secret", "sk_live_certo")
	_, herr = ResolverUsuario(req, db, repo)
	require.NotNil(t, herr)
	assert.Equal(t, "InvalidAppId", herr.Kind)

	// segredo errado
	req = httptest.NewRequest(http.MethodGet, "/beneficiaries", nil)
	req.Header.Set("app_id", appID)
	req.Header.Set("app_secret", "sk_live_errado")
	_, herr = ResolverUsuario(req, db, repo)
	require.NotNil(t, herr)
	assert.Equal(t, "InvalidAppSecret", herr.Kind)
	assert.Equal(t, http.StatusUnauthorized, herr.Status)

	// id de rota inexistente
	req = httptest.NewRequest(http.MethodGet, "/users/9999/beneficiaries", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "9999"})
	_, herr = ResolverUsuario(req, db, repo)
	require.NotNil(t, herr)
	assert.Equal(t, "UserNotFound", herr.Kind)
}
