package provedor

import (
	"strings"

	"gorm.io/gorm"
)

type FiltroListagem struct {
	Ativo  *bool
	Busca  string
	Limit  int
	Offset int
}

type Repository interface {
	Criar(db *gorm.DB, p *Provider) error
	BuscarPorID(db *gorm.DB, id uint) (*Provider, error)
	BuscarPorCode(db *gorm.DB, code string) (*Provider, error)
	Listar(db *gorm.DB, filtro FiltroListagem) ([]Provider, int64, error)
	Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) (*Provider, error)
	Deletar(db *gorm.DB, id uint) error
	ContarUsuariosRoteados(db *gorm.DB, code string) (int64, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Criar(db *gorm.DB, p *Provider) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Provider, error) {
	var p Provider
	if err := db.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) BuscarPorCode(db *gorm.DB, code string) (*Provider, error) {
	var p Provider
	if err := db.Where("code = ?", code).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repositoryImpl) Listar(db *gorm.DB, filtro FiltroListagem) ([]Provider, int64, error) {
	limit := filtro.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	offset := filtro.Offset
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Provider{})
	if filtro.Ativo != nil {
		q = q.Where("active = ?", *filtro.Ativo)
	}
	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		like := "%" + strings.ToLower(busca) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var providers []Provider
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&providers).Error
	return providers, total, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, id uint, campos map[string]interface{}) (*Provider, error) {
	var p Provider
	if err := db.First(&p, id).Error; err != nil {
		return nil, err
	}
	if len(campos) == 0 {
		return &p, nil
	}
	if err := db.Model(&p).Updates(campos).Error; err != nil {
		return nil, err
	}
	return r.BuscarPorID(db, id)
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id uint) error {
	return db.Delete(&Provider{}, id).Error
}

// ContarUsuariosRoteados diz quantos usuários ainda apontam para o código;
// consulta a tabela direto para não acoplar o pacote ao de usuários.
func (r *repositoryImpl) ContarUsuariosRoteados(db *gorm.DB, code string) (int64, error) {
	var total int64
	err := db.Table("usuarios").
		Where("provider = ? AND deleted_at IS NULL", code).
		Count(&total).Error
	return total, err
}
