package repository

import (
	"context"
	"errors"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"gorm.io/gorm"
)

type packageRepository struct {
	db *gorm.DB
}

// NewPackageRepository creates a new photography package repository
func NewPackageRepository(db *gorm.DB) domainRepo.PackageRepository {
	return &packageRepository{db: db}
}

func (r *packageRepository) Create(ctx context.Context, pkg *entity.PhotographyPackage) error {
	return translateError(r.db.WithContext(ctx).Create(pkg).Error)
}

func (r *packageRepository) GetByID(ctx context.Context, id uint) (*entity.PhotographyPackage, error) {
	var pkg entity.PhotographyPackage
	err := r.db.WithContext(ctx).First(&pkg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &pkg, err
}

func (r *packageRepository) Update(ctx context.Context, pkg *entity.PhotographyPackage) error {
	return translateError(r.db.WithContext(ctx).Save(pkg).Error)
}

func (r *packageRepository) List(ctx context.Context, activeOnly bool) ([]entity.PhotographyPackage, error) {
	var pkgs []entity.PhotographyPackage
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&pkgs).Error
	return pkgs, err
}

type photographerRepository struct {
	db *gorm.DB
}

// NewPhotographerRepository creates a new photographer repository
func NewPhotographerRepository(db *gorm.DB) domainRepo.PhotographerRepository {
	return &photographerRepository{db: db}
}

func (r *photographerRepository) Create(ctx context.Context, p *entity.Photographer) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *photographerRepository) GetByID(ctx context.Context, id uint) (*entity.Photographer, error) {
	var p entity.Photographer
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *photographerRepository) GetByPhone(ctx context.Context, phone string) (*entity.Photographer, error) {
	var p entity.Photographer
	err := r.db.WithContext(ctx).First(&p, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *photographerRepository) Update(ctx context.Context, p *entity.Photographer) error {
	return translateError(r.db.WithContext(ctx).Save(p).Error)
}

func (r *photographerRepository) List(ctx context.Context, activeOnly bool) ([]entity.Photographer, error) {
	var list []entity.Photographer
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&list).Error
	return list, err
}
