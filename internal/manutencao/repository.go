package manutencao

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Obter(db *gorm.DB) (*ModoManutencao, error)
	Definir(db *gorm.DB, ativo bool, mensagem *string) (*ModoManutencao, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Obter lê a linha única; se nunca foi gravada, inicializa {false, null}
// com DO NOTHING para não brigar com uma criação concorrente.
func (r *repositoryImpl) Obter(db *gorm.DB) (*ModoManutencao, error) {
	var m ModoManutencao
	err := db.Where("id = ?", idSingleton).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	inicial := ModoManutencao{ID: idSingleton, IsActive: false}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&inicial).Error; err != nil {
		return nil, err
	}
	if err := db.Where("id = ?", idSingleton).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Definir é um upsert em statement único na chave fixa.
func (r *repositoryImpl) Definir(db *gorm.DB, ativo bool, mensagem *string) (*ModoManutencao, error) {
	m := ModoManutencao{
		ID:        idSingleton,
		IsActive:  ativo,
		Message:   mensagem,
		UpdatedAt: time.Now(),
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "message", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return nil, err
	}

	var atual ModoManutencao
	if err := db.Where("id = ?", idSingleton).First(&atual).Error; err != nil {
		return nil, err
	}
	return &atual, nil
}
