package usuario

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func abrirBanco(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Usuario{}))

	// serializa as escritas no sqlite em memória
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func criarUsuarioTeste(t *testing.T, db *gorm.DB, nome string) *Usuario {
	t.Helper()
	u := &Usuario{Name: nome, DocStatus: DocStatusPendente, Status: StatusAtivo}
	require.NoError(t, NewRepository().Criar(db, u))
	return u
}

func TestCriarEBuscar(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	email := "loja@example.com"
	externo := "ext-42"
	u := &Usuario{
		Name:       "Loja Alpha",
		Email:      &email,
		ExternalID: &externo,
		DocStatus:  DocStatusPendente,
		Status:     StatusAtivo,
	}
	require.NoError(t, repo.Criar(db, u))
	require.NotZero(t, u.ID)

	porID, err := repo.BuscarPorID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loja Alpha", porID.Name)
	assert.Equal(t, DocStatusPendente, porID.DocStatus)

	porExterno, err := repo.BuscarPorExternalID(db, "ext-42")
	require.NoError(t, err)
	assert.Equal(t, u.ID, porExterno.ID)

	_, err = repo.BuscarPorID(db, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAppIDUnico(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	appID := "mg_live_duplicado"
	a := &Usuario{Name: "Primeiro", DocStatus: DocStatusAprovado, Status: StatusAtivo, AppID: &appID}
	require.NoError(t, repo.Criar(db, a))

	b := &Usuario{Name: "Segundo", DocStatus: DocStatusAprovado, Status: StatusAtivo, AppID: &appID}
	err := repo.Criar(db, b)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// vários usuários sem credencial convivem: NULL não conta no índice único
	criarUsuarioTeste(t, db, "Sem Credencial 1")
	criarUsuarioTeste(t, db, "Sem Credencial 2")
}

func TestBuscarPorAppID(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	appID := "mg_live_abc123"
	u := &Usuario{Name: "Com Credencial", DocStatus: DocStatusAprovado, Status: StatusAtivo, AppID: &appID}
	require.NoError(t, repo.Criar(db, u))

	achado, err := repo.BuscarPorAppID(db, appID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, achado.ID)

	_, err = repo.BuscarPorAppID(db, "mg_live_inexistente")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListarComBuscaEPaginacao(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	criarUsuarioTeste(t, db, "Alpha Pagamentos")
	criarUsuarioTeste(t, db, "Beta Serviços")
	criarUsuarioTeste(t, db, "ALPHA Segunda Loja")

	// busca case-insensitive por nome
	achados, err := repo.Listar(db, FiltroListagem{Busca: "alpha"})
	require.NoError(t, err)
	assert.Len(t, achados, 2)

	// mais recente primeiro
	assert.Equal(t, "ALPHA Segunda Loja", achados[0].Name)

	// busca por e-mail
	email := "contato@beta.com"
	require.NoError(t, db.Model(&Usuario{}).Where("name = ?", "Beta Serviços").Update("email", &email).Error)
	achados, err = repo.Listar(db, FiltroListagem{Busca: "BETA.com"})
	require.NoError(t, err)
	assert.Len(t, achados, 1)

	// paginação
	pagina, err := repo.Listar(db, FiltroListagem{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, pagina, 2)
	pagina, err = repo.Listar(db, FiltroListagem{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, pagina, 1)
}

func TestListarAplicaTetoDePaginacao(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()

	for i := 0; i < LimitePadrao+10; i++ {
		criarUsuarioTeste(t, db, fmt.Sprintf("Usuario %03d", i))
	}

	// sem limite explícito vale o default
	achados, err := repo.Listar(db, FiltroListagem{})
	require.NoError(t, err)
	assert.Len(t, achados, LimitePadrao)

	// acima do teto volta para o default
	achados, err = repo.Listar(db, FiltroListagem{Limit: LimiteMaximo + 1})
	require.NoError(t, err)
	assert.Len(t, achados, LimitePadrao)
}

func TestAtualizarCamposRespeitaWhitelist(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()
	u := criarUsuarioTeste(t, db, "Original")

	_, err := repo.AtualizarCampos(db, u.ID, map[string]interface{}{"id": 999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "não atualizável")

	_, err = repo.AtualizarCampos(db, u.ID, map[string]interface{}{"created_at": "2020-01-01"})
	require.Error(t, err)

	_, err = repo.AtualizarCampos(db, u.ID, map[string]interface{}{"app_secret_hash": "x"})
	require.Error(t, err)

	atualizado, err := repo.AtualizarCampos(db, u.ID, map[string]interface{}{"name": "Novo Nome"})
	require.NoError(t, err)
	assert.Equal(t, "Novo Nome", atualizado.Name)
	assert.Equal(t, u.ID, atualizado.ID)
}

func TestAtualizarDocStatus(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()
	u := criarUsuarioTeste(t, db, "Em Análise")

	notas := "documentos completos"
	atualizado, err := repo.AtualizarDocStatus(db, u.ID, DocStatusEmAnalise, &notas)
	require.NoError(t, err)
	assert.Equal(t, DocStatusEmAnalise, atualizado.DocStatus)
	require.NotNil(t, atualizado.DocStatusNotes)
	assert.Equal(t, notas, *atualizado.DocStatusNotes)
	assert.NotNil(t, atualizado.DocStatusUpdatedAt)

	_, err = repo.AtualizarDocStatus(db, 9999, DocStatusAprovado, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDefinirCredenciaisSeAusente(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()
	u := criarUsuarioTeste(t, db, "Aprovado")

	gravou, err := repo.DefinirCredenciaisSeAusente(db, u.ID, "mg_live_primeiro", "hash1")
	require.NoError(t, err)
	assert.True(t, gravou)

	// segunda tentativa não afeta a linha: emissão é única
	gravou, err = repo.DefinirCredenciaisSeAusente(db, u.ID, "mg_live_segundo", "hash2")
	require.NoError(t, err)
	assert.False(t, gravou)

	atual, err := repo.BuscarPorID(db, u.ID)
	require.NoError(t, err)
	require.NotNil(t, atual.AppID)
	assert.Equal(t, "mg_live_primeiro", *atual.AppID)
	require.NotNil(t, atual.AppSecretHash)
	assert.Equal(t, "hash1", *atual.AppSecretHash)
}

func TestRotacionarSegredo(t *testing.T) {
	db := abrirBanco(t)
	repo := NewRepository()
	u := criarUsuarioTeste(t, db, "Rotação")

	gravou, err := repo.DefinirCredenciaisSeAusente(db, u.ID, "mg_live_estavel", "hash-antigo")
	require.NoError(t, err)
	require.True(t, gravou)

	require.NoError(t, repo.RotacionarSegredo(db, u.ID, "hash-novo"))

	atual, err := repo.BuscarPorID(db, u.ID)
	require.NoError(t, err)
	require.NotNil(t, atual.AppID)
	assert.Equal(t, "mg_live_estavel", *atual.AppID)
	require.NotNil(t, atual.AppSecretHash)
	assert.Equal(t, "hash-novo", *atual.AppSecretHash)

	assert.ErrorIs(t, repo.RotacionarSegredo(db, 9999, "hash"), gorm.ErrRecordNotFound)
}
