package service

import (
	"context"
	"strings"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/ledger"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/shopspring/decimal"
)

// CatalogService handles photography packages and photographers
type CatalogService struct {
	packageRepo      repository.PackageRepository
	photographerRepo repository.PhotographerRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(packageRepo repository.PackageRepository, photographerRepo repository.PhotographerRepository) *CatalogService {
	return &CatalogService{
		packageRepo:      packageRepo,
		photographerRepo: photographerRepo,
	}
}

// PackageInput represents the package create/update input. Nil fields are
// left unchanged on update.
type PackageInput struct {
	Name             *string
	Description      *string
	Price            *decimal.Decimal
	NumPhotosDigital *int
	NumPhotosPrinted *int
	IncludesAlbum    *bool
	IncludesFrame    *bool
	IsActive         *bool
}

// CreatePackage creates a new photography package
func (s *CatalogService) CreatePackage(ctx context.Context, input *PackageInput) (*entity.PhotographyPackage, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Package name is required")
	}
	if input.Price == nil {
		return nil, apperror.NewBadRequestError("Package price is required")
	}

	pkg := &entity.PhotographyPackage{IsActive: true}
	if err := applyPackageInput(pkg, input); err != nil {
		return nil, err
	}
	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// GetPackage retrieves a package by id
func (s *CatalogService) GetPackage(ctx context.Context, id uint) (*entity.PhotographyPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperror.NewNotFoundError("Package")
	}
	return pkg, nil
}

// ListPackages lists packages, optionally only those still offered
func (s *CatalogService) ListPackages(ctx context.Context, activeOnly bool) ([]entity.PhotographyPackage, error) {
	return s.packageRepo.List(ctx, activeOnly)
}

// UpdatePackage updates a package
func (s *CatalogService) UpdatePackage(ctx context.Context, id uint, input *PackageInput) (*entity.PhotographyPackage, error) {
	pkg, err := s.GetPackage(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPackageInput(pkg, input); err != nil {
		return nil, err
	}
	if err := s.packageRepo.Update(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

// DeactivatePackage stops offering a package. Sessions that use it keep it.
func (s *CatalogService) DeactivatePackage(ctx context.Context, id uint) error {
	inactive := false
	_, err := s.UpdatePackage(ctx, id, &PackageInput{IsActive: &inactive})
	return err
}

func applyPackageInput(pkg *entity.PhotographyPackage, input *PackageInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return apperror.NewBadRequestError("Package name is required")
		}
		pkg.Name = name
	}
	if input.Description != nil {
		pkg.Description = input.Description
	}
	if input.Price != nil {
		if err := ledger.ValidateTotal(*input.Price); err != nil {
			return err
		}
		pkg.Price = *input.Price
	}
	if input.NumPhotosDigital != nil {
		if *input.NumPhotosDigital < 0 {
			return apperror.NewBadRequestError("Photo counts cannot be negative")
		}
		pkg.NumPhotosDigital = *input.NumPhotosDigital
	}
	if input.NumPhotosPrinted != nil {
		if *input.NumPhotosPrinted < 0 {
			return apperror.NewBadRequestError("Photo counts cannot be negative")
		}
		pkg.NumPhotosPrinted = *input.NumPhotosPrinted
	}
	if input.IncludesAlbum != nil {
		pkg.IncludesAlbum = *input.IncludesAlbum
	}
	if input.IncludesFrame != nil {
		pkg.IncludesFrame = *input.IncludesFrame
	}
	if input.IsActive != nil {
		pkg.IsActive = *input.IsActive
	}
	return nil
}

// PhotographerInput represents the photographer create/update input
type PhotographerInput struct {
	Name           *string
	Phone          *string
	Email          *string
	Specialization *string
	IsActive       *bool
}

// CreatePhotographer creates a new photographer
func (s *CatalogService) CreatePhotographer(ctx context.Context, input *PhotographerInput) (*entity.Photographer, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, apperror.NewBadRequestError("Photographer name is required")
	}
	if input.Phone == nil || strings.TrimSpace(*input.Phone) == "" {
		return nil, apperror.NewBadRequestError("Photographer phone is required")
	}

	p := &entity.Photographer{IsActive: true}
	if err := s.applyPhotographerInput(ctx, p, input); err != nil {
		return nil, err
	}
	if err := s.photographerRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetPhotographer retrieves a photographer by id
func (s *CatalogService) GetPhotographer(ctx context.Context, id uint) (*entity.Photographer, error) {
	p, err := s.photographerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperror.NewNotFoundError("Photographer")
	}
	return p, nil
}

// ListPhotographers lists photographers, optionally only active ones
func (s *CatalogService) ListPhotographers(ctx context.Context, activeOnly bool) ([]entity.Photographer, error) {
	return s.photographerRepo.List(ctx, activeOnly)
}

// UpdatePhotographer updates a photographer
func (s *CatalogService) UpdatePhotographer(ctx context.Context, id uint, input *PhotographerInput) (*entity.Photographer, error) {
	p, err := s.GetPhotographer(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyPhotographerInput(ctx, p, input); err != nil {
		return nil, err
	}
	if err := s.photographerRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeactivatePhotographer stops assigning new sessions to a photographer
func (s *CatalogService) DeactivatePhotographer(ctx context.Context, id uint) error {
	inactive := false
	_, err := s.UpdatePhotographer(ctx, id, &PhotographerInput{IsActive: &inactive})
	return err
}

func (s *CatalogService) applyPhotographerInput(ctx context.Context, p *entity.Photographer, input *PhotographerInput) error {
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return apperror.NewBadRequestError("Photographer name is required")
		}
		p.Name = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		existing, err := s.photographerRepo.GetByPhone(ctx, phone)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != p.ID {
			return apperror.NewConflictError("A photographer with this phone number already exists")
		}
		p.Phone = phone
	}
	if input.Email != nil {
		p.Email = input.Email
	}
	if input.Specialization != nil {
		p.Specialization = input.Specialization
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	return nil
}
