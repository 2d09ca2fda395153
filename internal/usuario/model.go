package usuario

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Status de verificação documental (KYC)
const (
	DocStatusPendente  = "PENDING"
	DocStatusEmAnalise = "UNDER_REVIEW"
	DocStatusAprovado  = "APPROVED"
	DocStatusReprovado = "REJECTED"
)

// Status de ciclo de vida do usuário
const (
	StatusAtivo    = "ACTIVE"
	StatusSuspenso = "SUSPENDED"
)

// Usuario é o registro de tenant do gateway: perfil, configuração de
// tarifas, provider de roteamento e credenciais (somente o hash do segredo).
type Usuario struct {
	gorm.Model
	Name       string  `json:"name"`
	Email      *string `json:"email" gorm:"index"`
	Document   *string `json:"document"`
	ExternalID *string `json:"externalId" gorm:"index"`

	CNPJ        *string `json:"cnpj"`
	CompanyName *string `json:"companyName"`
	TradeName   *string `json:"tradeName"`
	PartnerName *string `json:"partnerName"`
	// payload bruto da consulta de CNPJ, guardado como veio
	CNPJData *string `json:"-" gorm:"type:text"`

	DocStatus          string     `json:"docStatus"`
	DocStatusNotes     *string    `json:"docStatusNotes"`
	DocStatusUpdatedAt *time.Time `json:"docStatusUpdatedAt"`

	GatewayFeePercent decimal.Decimal `json:"gatewayFeePercent" gorm:"type:numeric(5,2)"`
	PartnerFeePercent decimal.Decimal `json:"partnerFeePercent" gorm:"type:numeric(5,2)"`

	Status     string  `json:"status"`
	Provider   *string `json:"provider"`
	IsTreasury bool    `json:"isTreasury"`

	WebhookURL       *string `json:"webhookUrl"`
	WebhookURLPixIn  *string `json:"webhookUrlPixIn"`
	WebhookURLPixOut *string `json:"webhookUrlPixOut"`
	IPWhitelist      *string `json:"ipWhitelist"`

	AppID         *string `json:"appId" gorm:"uniqueIndex"`
	AppSecretHash *string `json:"-"`
}

// transições permitidas do status documental; mesma origem e destino é
// sempre um no-op aceito (reaprovação não reemite credencial)
var transicoesDocStatus = map[string][]string{
	DocStatusPendente:  {DocStatusEmAnalise, DocStatusAprovado, DocStatusReprovado},
	DocStatusEmAnalise: {DocStatusAprovado, DocStatusReprovado},
	DocStatusReprovado: {DocStatusEmAnalise},
	DocStatusAprovado:  {},
}

func DocStatusValido(s string) bool {
	_, ok := transicoesDocStatus[s]
	return ok
}

// TransicaoDocStatusValida diz se a mudança de estado é permitida.
func TransicaoDocStatusValida(de, para string) bool {
	if de == para {
		return true
	}
	for _, destino := range transicoesDocStatus[de] {
		if destino == para {
			return true
		}
	}
	return false
}
