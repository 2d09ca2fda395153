package favorecido

import "gorm.io/gorm"

type Repository interface {
	Criar(db *gorm.DB, f *Favorecido) error
	ListarPorUsuario(db *gorm.DB, userID uint) ([]Favorecido, error)
	Buscar(db *gorm.DB, userID, id uint) (*Favorecido, error)
	Atualizar(db *gorm.DB, userID, id uint, campos map[string]interface{}) (*Favorecido, error)
	Remover(db *gorm.DB, userID, id uint) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, f *Favorecido) error {
	return db.Create(f).Error
}

func (r *repositoryImpl) ListarPorUsuario(db *gorm.DB, userID uint) ([]Favorecido, error) {
	var lista []Favorecido
	err := db.Where("user_id = ?", userID).Order("id DESC").Find(&lista).Error
	return lista, err
}

func (r *repositoryImpl) Buscar(db *gorm.DB, userID, id uint) (*Favorecido, error) {
	var f Favorecido
	if err := db.Where("user_id = ? AND id = ?", userID, id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, userID, id uint, campos map[string]interface{}) (*Favorecido, error) {
	f, err := r.Buscar(db, userID, id)
	if err != nil {
		return nil, err
	}
	if len(campos) == 0 {
		return f, nil
	}
	if err := db.Model(f).Updates(campos).Error; err != nil {
		return nil, err
	}
	return r.Buscar(db, userID, id)
}

func (r *repositoryImpl) Remover(db *gorm.DB, userID, id uint) error {
	return db.Where("user_id = ?", userID).Delete(&Favorecido{}, id).Error
}
