package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/bloom-backend/internal/domain"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
	"github.com/yungbote/bloom-backend/internal/platform/logger"
)

type CompanyRepo interface {
	Create(dbc dbctx.Context, companies []*types.Company) ([]*types.Company, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Company, error)
}

type companyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompanyRepo(db *gorm.DB, baseLog *logger.Logger) CompanyRepo {
	return &companyRepo{db: db, log: baseLog.With("repo", "CompanyRepo")}
}

func (r *companyRepo) Create(dbc dbctx.Context, companies []*types.Company) ([]*types.Company, error) {
	if len(companies) == 0 {
		return []*types.Company{}, nil
	}
	if err := dbc.DB(r.db).Create(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *companyRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Company, error) {
	var c types.Company
	err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (r *companyRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Company, error) {
	var c types.Company
	err := dbc.DB(r.db).Where("slug = ?", slug).Limit(1).Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}
