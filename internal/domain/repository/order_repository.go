package repository

import (
	"context"
	"time"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// OrderFilterParams holds the filters shared by print job and photo session listings
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.OrderStatus
	ClientID   *uint
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// PrintJobFilterParams holds filters for listing print jobs
type PrintJobFilterParams struct {
	OrderFilterParams
	PrintType *enum.PrintType
	Size      *enum.PrintSize
}

// PhotoSessionFilterParams holds filters for listing photo sessions
type PhotoSessionFilterParams struct {
	OrderFilterParams
	EventType      *enum.EventType
	EditingStatus  *enum.EditingStatus
	PhotographerID *uint
	PackageID      *uint
}

// PrintJobRepository defines the descriptive read/update operations on print
// jobs. Creation, balances and deletion go through LedgerRepository.
type PrintJobRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.PrintJob, error)
	// UpdateDetails writes descriptive fields only, never billing fields
	UpdateDetails(ctx context.Context, job *entity.PrintJob) error
	List(ctx context.Context, params *PrintJobFilterParams) ([]entity.PrintJob, int64, error)
	ListByClient(ctx context.Context, clientID uint) ([]entity.PrintJob, error)
}

// PhotoSessionRepository defines the descriptive read/update operations on photo sessions
type PhotoSessionRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.PhotoSession, error)
	// UpdateDetails writes descriptive fields only, never billing fields
	UpdateDetails(ctx context.Context, session *entity.PhotoSession) error
	List(ctx context.Context, params *PhotoSessionFilterParams) ([]entity.PhotoSession, int64, error)
	ListByClient(ctx context.Context, clientID uint) ([]entity.PhotoSession, error)
}
