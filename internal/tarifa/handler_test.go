package tarifa

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
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
	require.NoError(t, db.AutoMigrate(&Tarifa{}))

	// espelho mínimo da tabela de usuários, só o que a checagem de
	// existência consulta
	require.NoError(t, db.Exec(
		`CREATE TABLE usuarios (id INTEGER PRIMARY KEY AUTOINCREMENT, deleted_at DATETIME)`,
	).Error)
	return db
}

func criarUsuarioTeste(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	require.NoError(t, db.Exec(`INSERT INTO usuarios (deleted_at) VALUES (NULL)`).Error)
	var id uint
	require.NoError(t, db.Raw(`SELECT last_insert_rowid()`).Scan(&id).Error)
	return id
}

func novoRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/users/{id}/fees", h.DefinirTarifas).Methods("PATCH")
	r.HandleFunc("/internal/users/{id}/fees", h.ObterTarifasInterno).Methods("GET")
	return r
}

func executar(t *testing.T, r http.Handler, metodo, alvo string, corpo any) (int, map[string]interface{}) {
	t.Helper()
	var body *bytes.Buffer
	if corpo != nil {
		raw, err := json.Marshal(corpo)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(metodo, alvo, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decodificado map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decodificado))
	return rec.Code, decodificado
}

func TestDefinirEObterTarifas(t *testing.T) {
	db := abrirBanco(t)
	r := novoRouter(NewHandler(db, zap.NewNop()))
	id := criarUsuarioTeste(t, db)
	alvo := "/users/" + itoa(id) + "/fees"

	status, resp := executar(t, r, http.MethodPatch, alvo, map[string]any{
		"pixInType":   "percent",
		"pixInValue":  1.25,
		"pixOutType":  "fixed",
		"pixOutValue": 2.45,
	})
	require.Equal(t, http.StatusOK, status)
	fees := resp["fees"].(map[string]interface{})
	assert.Equal(t, TipoPercentual, fees["pixInType"])
	assert.Equal(t, "1.25", fees["pixInValue"])
	assert.Equal(t, TipoFixo, fees["pixOutType"])
	assert.Equal(t, "2.45", fees["pixOutValue"])

	status, resp = executar(t, r, http.MethodGet, "/internal/users/"+itoa(id)+"/fees", nil)
	require.Equal(t, http.StatusOK, status)
	fees = resp["fees"].(map[string]interface{})
	assert.Equal(t, "1.25", fees["pixInValue"])
	assert.Equal(t, "2.45", fees["pixOutValue"])
}

func TestDefinirTarifasFazUpsert(t *testing.T) {
	db := abrirBanco(t)
	r := novoRouter(NewHandler(db, zap.NewNop()))
	id := criarUsuarioTeste(t, db)
	alvo := "/users/" + itoa(id) + "/fees"

	corpo := map[string]any{
		"pixInType": "PERCENT", "pixInValue": 1,
		"pixOutType": "PERCENT", "pixOutValue": 1,
	}
	status, _ := executar(t, r, http.MethodPatch, alvo, corpo)
	require.Equal(t, http.StatusOK, status)

	corpo["pixInValue"] = 3
	status, resp := executar(t, r, http.MethodPatch, alvo, corpo)
	require.Equal(t, http.StatusOK, status)
	fees := resp["fees"].(map[string]interface{})
	assert.Equal(t, "3", fees["pixInValue"])

	// a chave user_id garante linha única por usuário
	var total int64
	require.NoError(t, db.Model(&Tarifa{}).Where("user_id = ?", id).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestDefinirTarifasUsuarioInexistente(t *testing.T) {
	db := abrirBanco(t)
	r := novoRouter(NewHandler(db, zap.NewNop()))

	status, resp := executar(t, r, http.MethodPatch, "/users/9999/fees", map[string]any{
		"pixInType": "PERCENT", "pixInValue": 1,
		"pixOutType": "PERCENT", "pixOutValue": 1,
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "UserNotFound", resp["error"])
}

func TestDefinirTarifasInvalidas(t *testing.T) {
	db := abrirBanco(t)
	r := novoRouter(NewHandler(db, zap.NewNop()))
	id := criarUsuarioTeste(t, db)
	alvo := "/users/" + itoa(id) + "/fees"

	// percentual acima de 100
	status, resp := executar(t, r, http.MethodPatch, alvo, map[string]any{
		"pixInType": "PERCENT", "pixInValue": 150,
		"pixOutType": "PERCENT", "pixOutValue": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "InvalidFeeSchedule", resp["error"])

	// campo obrigatório ausente
	status, resp = executar(t, r, http.MethodPatch, alvo, map[string]any{
		"pixInType": "PERCENT", "pixInValue": 1,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", resp["error"])
}

func TestObterTarifasAusentesVoltamZeradas(t *testing.T) {
	db := abrirBanco(t)
	r := novoRouter(NewHandler(db, zap.NewNop()))
	id := criarUsuarioTeste(t, db)

	status, resp := executar(t, r, http.MethodGet, "/internal/users/"+itoa(id)+"/fees", nil)
	require.Equal(t, http.StatusOK, status)
	fees := resp["fees"].(map[string]interface{})
	assert.Equal(t, TipoPercentual, fees["pixInType"])
	assert.Equal(t, "0", fees["pixInValue"])
	assert.Equal(t, TipoPercentual, fees["pixOutType"])
	assert.Equal(t, "0", fees["pixOutValue"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
