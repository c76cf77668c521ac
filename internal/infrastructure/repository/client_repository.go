package repository

import (
	"context"
	"errors"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"gorm.io/gorm"
)

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) domainRepo.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *entity.Client) error {
	return translateError(r.db.WithContext(ctx).Create(client).Error)
}

func (r *clientRepository) GetByID(ctx context.Context, id uint) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).First(&client, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) GetByPhone(ctx context.Context, phone string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).First(&client, "phone = ?", phone).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &client, err
}

func (r *clientRepository) Update(ctx context.Context, client *entity.Client) error {
	return translateError(r.db.WithContext(ctx).Save(client).Error)
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return translateError(r.db.WithContext(ctx).Delete(&entity.Client{}, id).Error)
}

func (r *clientRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error) {
	var clients []entity.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Client{}).
		Scopes(SearchScope(search, "name", "phone", "email"))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("name ASC").
		Find(&clients).Error

	return clients, total, err
}

func (r *clientRepository) CountOrders(ctx context.Context, id uint) (int64, error) {
	var jobs, sessions int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&entity.PrintJob{}).Where("client_id = ?", id).Count(&jobs).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&entity.PhotoSession{}).Where("client_id = ?", id).Count(&sessions).Error; err != nil {
		return 0, err
	}
	return jobs + sessions, nil
}
