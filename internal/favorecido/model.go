package favorecido

import "gorm.io/gorm"

// Favorecido é um destinatário Pix cadastrado pelo usuário
type Favorecido struct {
	gorm.Model
	UserID   uint    `json:"userId" gorm:"index;not null"`
	Name     string  `json:"name"`
	BankName *string `json:"bankName"`
	Document *string `json:"document"`
	PixKey   string  `json:"pixKey"`
	KeyType  *string `json:"keyType"`
}
