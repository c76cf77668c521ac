package repository

import (
	"context"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
)

// PackageRepository defines the interface for photography package data operations
type PackageRepository interface {
	Create(ctx context.Context, pkg *entity.PhotographyPackage) error
	GetByID(ctx context.Context, id uint) (*entity.PhotographyPackage, error)
	Update(ctx context.Context, pkg *entity.PhotographyPackage) error
	List(ctx context.Context, activeOnly bool) ([]entity.PhotographyPackage, error)
}

// PhotographerRepository defines the interface for photographer data operations
type PhotographerRepository interface {
	Create(ctx context.Context, p *entity.Photographer) error
	GetByID(ctx context.Context, id uint) (*entity.Photographer, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Photographer, error)
	Update(ctx context.Context, p *entity.Photographer) error
	List(ctx context.Context, activeOnly bool) ([]entity.Photographer, error)
}
