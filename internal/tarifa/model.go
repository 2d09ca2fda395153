package tarifa

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tarifa é a tabela de tarifas Pix de um usuário (um-para-um). Ausência de
// linha significa tarifa zero.
type Tarifa struct {
	gorm.Model
	UserID uint `json:"userId" gorm:"uniqueIndex;not null"`

	PixInType   string          `json:"pixInType"`
	PixInValue  decimal.Decimal `json:"pixInValue" gorm:"type:numeric(12,2)"`
	PixOutType  string          `json:"pixOutType"`
	PixOutValue decimal.Decimal `json:"pixOutValue" gorm:"type:numeric(12,2)"`
}
