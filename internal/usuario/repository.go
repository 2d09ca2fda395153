package usuario

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// limites de paginação da listagem
const (
	LimitePadrao = 50
	LimiteMaximo = 200
)

type FiltroListagem struct {
	Busca  string
	Limit  int
	Offset int
}

type Repository interface {
	Criar(db *gorm.DB, u *Usuario) error
	BuscarPorID(db *gorm.DB, id uint) (*Usuario, error)
	BuscarPorAppID(db *gorm.DB, appID string) (*Usuario, error)
	BuscarPorExternalID(db *gorm.DB, externalID string) (*Usuario, error)
	Listar(db *gorm.DB, filtro FiltroListagem) ([]Usuario, error)
	AtualizarCampos(db *gorm.DB, id uint, campos map[string]interface{}) (*Usuario, error)
	AtualizarDocStatus(db *gorm.DB, id uint, status string, notas *string) (*Usuario, error)
	DefinirCredenciaisSeAusente(db *gorm.DB, id uint, appID, hash string) (bool, error)
	RotacionarSegredo(db *gorm.DB, id uint, hash string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// campos que aceitam atualização parcial; id e created_at são imutáveis
var colunasMutaveis = map[string]bool{
	"name":                true,
	"email":               true,
	"document":            true,
	"external_id":         true,
	"company_name":        true,
	"trade_name":          true,
	"partner_name":        true,
	"gateway_fee_percent": true,
	"partner_fee_percent": true,
	"status":              true,
	"provider":            true,
	"is_treasury":         true,
	"webhook_url":         true,
	"webhook_url_pix_in":  true,
	"webhook_url_pix_out": true,
	"ip_whitelist":        true,
}

func (r *repositoryImpl) Criar(db *gorm.DB, u *Usuario) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id uint) (*Usuario, error) {
	var u Usuario
	if err := db.First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// BuscarPorAppID é o caminho de autenticação dos serviços irmãos;
// depende do índice único em app_id.
func (r *repositoryImpl) BuscarPorAppID(db *gorm.DB, appID string) (*Usuario, error) {
	var u Usuario
	if err := db.Where("app_id = ?", appID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repositoryImpl) BuscarPorExternalID(db *gorm.DB, externalID string) (*Usuario, error) {
	var u Usuario
	if err := db.Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Listar faz busca case-insensitive por nome/email/documento com paginação
// limitada (default 50, teto 200, igual ao painel antigo).
func (r *repositoryImpl) Listar(db *gorm.DB, filtro FiltroListagem) ([]Usuario, error) {
	limit := filtro.Limit
	if limit <= 0 || limit > LimiteMaximo {
		limit = LimitePadrao
	}
	offset := filtro.Offset
	if offset < 0 {
		offset = 0
	}

	q := db.Model(&Usuario{})
	if busca := strings.TrimSpace(filtro.Busca); busca != "" {
		like := "%" + strings.ToLower(busca) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(document) LIKE ?", like, like, like)
	}

	var usuarios []Usuario
	err := q.Order("id DESC").Limit(limit).Offset(offset).Find(&usuarios).Error
	return usuarios, err
}

func (r *repositoryImpl) AtualizarCampos(db *gorm.DB, id uint, campos map[string]interface{}) (*Usuario, error) {
	for coluna := range campos {
		if !colunasMutaveis[coluna] {
			return nil, fmt.Errorf("campo não atualizável: %s", coluna)
		}
	}

	var u Usuario
	if err := db.First(&u, id).Error; err != nil {
		return nil, err
	}
	if len(campos) == 0 {
		return &u, nil
	}
	if err := db.Model(&u).Updates(campos).Error; err != nil {
		return nil, err
	}
	return r.BuscarPorID(db, id)
}

func (r *repositoryImpl) AtualizarDocStatus(db *gorm.DB, id uint, status string, notas *string) (*Usuario, error) {
	agora := time.Now()
	res := db.Model(&Usuario{}).Where("id = ?", id).Updates(map[string]interface{}{
		"doc_status":            status,
		"doc_status_notes":      notas,
		"doc_status_updated_at": agora,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.BuscarPorID(db, id)
}

// DefinirCredenciaisSeAusente grava app_id + hash apenas se o usuário ainda
// não tem app_id. O UPDATE condicional é o que garante emissão única sob
// requisições concorrentes: só uma delas afeta a linha.
func (r *repositoryImpl) DefinirCredenciaisSeAusente(db *gorm.DB, id uint, appID, hash string) (bool, error) {
	res := db.Model(&Usuario{}).
		Where("id = ? AND app_id IS NULL", id).
		Updates(map[string]interface{}{
			"app_id":          appID,
			"app_secret_hash": hash,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RotacionarSegredo sobrescreve o hash em um único UPDATE; o app_id público
// permanece estável.
func (r *repositoryImpl) RotacionarSegredo(db *gorm.DB, id uint, hash string) error {
	res := db.Model(&Usuario{}).Where("id = ?", id).Update("app_secret_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
