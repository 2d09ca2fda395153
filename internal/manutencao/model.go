package manutencao

import "time"

// idSingleton é a chave fixa da linha única de manutenção; o upsert por
// conflito nesse id garante que dois toggles concorrentes nunca criam
// uma segunda linha.
const idSingleton = 1

type ModoManutencao struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	IsActive  bool      `json:"isActive"`
	Message   *string   `json:"message"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ModoManutencao) TableName() string {
	return "maintenance_mode"
}
