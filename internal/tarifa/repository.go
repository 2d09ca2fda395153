package tarifa

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	BuscarPorUsuario(db *gorm.DB, userID uint) (*Tarifa, error)
	Definir(db *gorm.DB, t *Tarifa) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) BuscarPorUsuario(db *gorm.DB, userID uint) (*Tarifa, error) {
	var t Tarifa
	if err := db.Where("user_id = ?", userID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// Definir faz upsert pela chave user_id em um único statement.
func (r *repositoryImpl) Definir(db *gorm.DB, t *Tarifa) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pix_in_type", "pix_in_value", "pix_out_type", "pix_out_value", "updated_at",
		}),
	}).Create(t).Error
}
