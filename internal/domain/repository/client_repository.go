package repository

import (
	"context"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id uint) (*entity.Client, error)
	GetByPhone(ctx context.Context, phone string) (*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id uint) error
	// List returns clients matching search on name, phone or email
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Client, int64, error)
	CountOrders(ctx context.Context, id uint) (int64, error)
}
