package credencial

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGerarFormatoDoPar(t *testing.T) {
	appID, secret, err := Gerar()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(appID, "mg_live_"))
	assert.Len(t, appID, len("mg_live_")+16)

	assert.True(t, strings.HasPrefix(secret, "sk_live_"))
	assert.Len(t, secret, len("sk_live_")+32)
	assert.GreaterOrEqual(t, len(secret), 32)
}

func TestGerarNuncaRepete(t *testing.T) {
	vistosApp := make(map[string]bool, 10000)
	vistosSecret := make(map[string]bool, 10000)

	for i := 0; i < 10000; i++ {
		appID, secret, err := Gerar()
		require.NoError(t, err)
		require.False(t, vistosApp[appID], "app_id repetido na iteração %d", i)
		require.False(t, vistosSecret[secret], "segredo repetido na iteração %d", i)
		vistosApp[appID] = true
		vistosSecret[secret] = true
	}
}

func TestHashEVerificar(t *testing.T) {
	_, secret, err := Gerar()
	require.NoError(t, err)

	hash := Hash(secret)
	assert.Len(t, hash, 64) // sha256 em hex
	assert.NotEqual(t, secret, hash)
	assert.NotContains(t, hash, secret)

	assert.True(t, Verificar(hash, secret))
	assert.False(t, Verificar(hash, secret+"x"))
	assert.False(t, Verificar(hash, "sk_live_outra"))
}

func TestHashDeterministico(t *testing.T) {
	assert.Equal(t, Hash("sk_live_abc"), Hash("sk_live_abc"))
	assert.NotEqual(t, Hash("sk_live_abc"), Hash("sk_live_abd"))
}
