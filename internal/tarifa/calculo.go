// Package tarifa cuida do split gateway/parceiro e das tarifas Pix por
// transação. Percentuais são sempre decimais de duas casas, nunca float.
package tarifa

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/omnigateway/api-usuario/internal/httperr"
)

// tipos de tarifa por transação
const (
	TipoPercentual = "PERCENT"
	TipoFixo       = "FIXED"
)

var (
	zero = decimal.Zero
	cem  = decimal.NewFromInt(100)
)

type Split struct {
	GatewayFeePercent decimal.Decimal `json:"gatewayFeePercent"`
	PartnerFeePercent decimal.Decimal `json:"partnerFeePercent"`
}

// CalcularSplit deriva o percentual do parceiro como complemento exato de
// 100. Válido apenas para 0 <= gateway <= 100.
func CalcularSplit(gateway decimal.Decimal) (Split, *httperr.Erro) {
	if gateway.LessThan(zero) || gateway.GreaterThan(cem) {
		return Split{}, httperr.Novo(http.StatusBadRequest, "InvalidFeeRange",
			"gatewayFeePercent deve estar entre 0 e 100")
	}
	gateway = gateway.Round(2)
	return Split{
		GatewayFeePercent: gateway,
		PartnerFeePercent: cem.Sub(gateway),
	}, nil
}

// ValidarComponente checa um par tipo/valor da tabela de tarifas:
// PERCENT em [0,100], FIXED >= 0. As tarifas por transação são
// independentes entre si, não precisam somar 100.
func ValidarComponente(campo, tipo string, valor decimal.Decimal) *httperr.Erro {
	switch tipo {
	case TipoPercentual:
		if valor.LessThan(zero) || valor.GreaterThan(cem) {
			return httperr.Novo(http.StatusBadRequest, "InvalidFeeSchedule",
				campo+": percentual deve estar entre 0 e 100")
		}
	case TipoFixo:
		if valor.LessThan(zero) {
			return httperr.Novo(http.StatusBadRequest, "InvalidFeeSchedule",
				campo+": valor fixo não pode ser negativo")
		}
	default:
		return httperr.Novo(http.StatusBadRequest, "InvalidFeeSchedule",
			campo+": tipo deve ser PERCENT ou FIXED")
	}
	return nil
}
