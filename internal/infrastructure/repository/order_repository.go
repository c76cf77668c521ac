package repository

import (
	"context"
	"errors"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"gorm.io/gorm"
)

var orderSortColumns = map[string]string{
	"created_at":   "created_at",
	"total_amount": "total_amount",
	"paid_amount":  "paid_amount",
	"status":       "status",
}

// orderFilters applies the filters both order variants share
func orderFilters(p *domainRepo.OrderFilterParams, dateColumn string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Status != nil {
			db = db.Where("status = ?", *p.Status)
		}
		if p.ClientID != nil {
			db = db.Where("client_id = ?", *p.ClientID)
		}
		return db.Scopes(DateRangeScope(dateColumn, p.StartDate, p.EndDate))
	}
}

type printJobRepository struct {
	db *gorm.DB
}

// NewPrintJobRepository creates a new print job repository
func NewPrintJobRepository(db *gorm.DB) domainRepo.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) GetByID(ctx context.Context, id uint) (*entity.PrintJob, error) {
	var job entity.PrintJob
	err := r.db.WithContext(ctx).Preload("Client").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &job, err
}

func (r *printJobRepository) UpdateDetails(ctx context.Context, job *entity.PrintJob) error {
	return translateError(r.db.WithContext(ctx).Model(job).
		Select("title", "description", "print_type", "size", "quantity", "delivery_date", "notes", "updated_at").
		Updates(job).Error)
}

func (r *printJobRepository) List(ctx context.Context, params *domainRepo.PrintJobFilterParams) ([]entity.PrintJob, int64, error) {
	var jobs []entity.PrintJob
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PrintJob{}).
		Scopes(
			orderFilters(&params.OrderFilterParams, "created_at"),
			SearchScope(params.Search, "title", "receipt_number", "notes"),
		)
	if params.PrintType != nil {
		query = query.Where("print_type = ?", *params.PrintType)
	}
	if params.Size != nil {
		query = query.Where("size = ?", *params.Size)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Preload("Client").
		Scopes(orderScope(params.SortBy, params.SortOrder, orderSortColumns, "created_at DESC, id DESC")).
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Find(&jobs).Error

	return jobs, total, err
}

func (r *printJobRepository) ListByClient(ctx context.Context, clientID uint) ([]entity.PrintJob, error) {
	var jobs []entity.PrintJob
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC, id DESC").
		Find(&jobs).Error
	return jobs, err
}

type photoSessionRepository struct {
	db *gorm.DB
}

// NewPhotoSessionRepository creates a new photo session repository
func NewPhotoSessionRepository(db *gorm.DB) domainRepo.PhotoSessionRepository {
	return &photoSessionRepository{db: db}
}

func (r *photoSessionRepository) GetByID(ctx context.Context, id uint) (*entity.PhotoSession, error) {
	var session entity.PhotoSession
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Package").Preload("Photographer").
		First(&session, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &session, err
}

func (r *photoSessionRepository) UpdateDetails(ctx context.Context, session *entity.PhotoSession) error {
	return translateError(r.db.WithContext(ctx).Model(session).
		Select(
			"package_id", "photographer_id", "session_date", "session_time", "location",
			"event_type", "editing_status", "final_delivery_date", "num_photos_delivered",
			"num_printed_delivered", "album_delivered", "frame_delivered", "final_gallery_link",
			"agreement_notes", "notes", "updated_at",
		).
		Updates(session).Error)
}

func (r *photoSessionRepository) List(ctx context.Context, params *domainRepo.PhotoSessionFilterParams) ([]entity.PhotoSession, int64, error) {
	var sessions []entity.PhotoSession
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PhotoSession{}).
		Scopes(
			orderFilters(&params.OrderFilterParams, "session_date"),
			SearchScope(params.Search, "location", "receipt_number", "notes"),
		)
	if params.EventType != nil {
		query = query.Where("event_type = ?", *params.EventType)
	}
	if params.EditingStatus != nil {
		query = query.Where("editing_status = ?", *params.EditingStatus)
	}
	if params.PhotographerID != nil {
		query = query.Where("photographer_id = ?", *params.PhotographerID)
	}
	if params.PackageID != nil {
		query = query.Where("package_id = ?", *params.PackageID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortColumns := map[string]string{"session_date": "session_date"}
	for k, v := range orderSortColumns {
		sortColumns[k] = v
	}

	params.Pagination.Validate()
	err := query.Preload("Client").Preload("Package").Preload("Photographer").
		Scopes(orderScope(params.SortBy, params.SortOrder, sortColumns, "session_date DESC, id DESC")).
		Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Find(&sessions).Error

	return sessions, total, err
}

func (r *photoSessionRepository) ListByClient(ctx context.Context, clientID uint) ([]entity.PhotoSession, error) {
	var sessions []entity.PhotoSession
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("session_date DESC, id DESC").
		Find(&sessions).Error
	return sessions, err
}
