package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// StaffFilterParams holds filters for listing staff accounts
type StaffFilterParams struct {
	Page   *pagination.PaginationParams
	Search string
	Role   *enum.UserRole
	Active *bool
}

// UserRepository stores the staff accounts that take payments and issue
// receipts
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error

	// Delete removes the account; orders and receipts keep their history
	// with the issuer cleared
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context, params *StaffFilterParams) ([]entity.User, int64, error)

	// CountActiveByRole guards against deactivating the last manager
	CountActiveByRole(ctx context.Context, role enum.UserRole) (int64, error)
}
