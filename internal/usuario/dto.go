package usuario

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// request DTOs
type criarUsuarioRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	Email      string `json:"email" validate:"omitempty,email"`
	Document   string `json:"document"`
	ExternalID string `json:"externalId"`
}

type registrarOperadorRequest struct {
	CNPJ        string `json:"cnpj" validate:"required"`
	PartnerName string `json:"partnerName" validate:"required,min=3"`

	Email      string `json:"email" validate:"omitempty,email"`
	ExternalID string `json:"externalId"`

	// percentual do gateway no split; o do parceiro é o complemento até 100
	GatewayFeePercent *decimal.Decimal `json:"gatewayFeePercent"`

	CompanyNameOverride string `json:"companyNameOverride"`
	TradeNameOverride   string `json:"tradeNameOverride"`
}

type atualizarConfigRequest struct {
	WebhookURL       *string `json:"webhook_url" validate:"omitempty,url"`
	WebhookURLPixIn  *string `json:"webhook_url_pix_in" validate:"omitempty,url"`
	WebhookURLPixOut *string `json:"webhook_url_pix_out" validate:"omitempty,url"`
	IPWhitelist      *string `json:"ip_whitelist"`
}

type atualizarDocStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

type definirTreasuryRequest struct {
	IsTreasury *bool `json:"isTreasury" validate:"required"`
}

type validarCredenciaisRequest struct {
	AppID  string `json:"appId" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

// ResumoUsuarioDTO é o que os serviços irmãos recebem ao validar credenciais.
type ResumoUsuarioDTO struct {
	ID     uint    `json:"id"`
	AppID  *string `json:"appId"`
	Name   string  `json:"name"`
	Email  *string `json:"email"`
	Status string  `json:"status"`
}

func MontarResumoUsuarioDTO(u *Usuario) ResumoUsuarioDTO {
	return ResumoUsuarioDTO{
		ID:     u.ID,
		AppID:  u.AppID,
		Name:   u.Name,
		Email:  u.Email,
		Status: u.Status,
	}
}
