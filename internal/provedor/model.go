package provedor

import "gorm.io/gorm"

// Provider é um backend de processamento de pagamento do catálogo. Nunca é
// apagado enquanto algum usuário estiver roteado por ele; o caminho normal
// é desativar.
type Provider struct {
	gorm.Model
	Code    string  `json:"code" gorm:"uniqueIndex;not null"`
	Name    string  `json:"name"`
	BaseURL *string `json:"baseUrl"`
	Active  bool    `json:"active"`
}
