package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	domainRepo "github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domainRepo.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, cond string, arg interface{}) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	return translateError(r.db.WithContext(ctx).Save(user).Error)
}

// Delete clears the user from every order and receipt it issued before
// removing it, so SQLite behaves like the ON DELETE SET NULL constraints
// PostgreSQL enforces
func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&entity.PrintJob{}, &entity.PhotoSession{}, &entity.PaymentReceipt{}} {
			if err := tx.Model(model).Where("issued_by_id = ?", id).Update("issued_by_id", nil).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&entity.User{}, "id = ?", id).Error
	})
}

func (r *userRepository) List(ctx context.Context, params *domainRepo.StaffFilterParams) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.User{}).
		Scopes(SearchScope(params.Search, "username", "first_name", "last_name", "email"))
	if params.Role != nil {
		query = query.Where("role = ?", *params.Role)
	}
	if params.Active != nil {
		query = query.Where("is_active = ?", *params.Active)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	page := params.Page
	if page == nil {
		page = &pagination.PaginationParams{}
	}
	page.Validate()
	err := query.Offset(page.Offset()).Limit(page.PerPage).
		Order("username ASC").
		Find(&users).Error

	return users, total, translateError(err)
}

func (r *userRepository) CountActiveByRole(ctx context.Context, role enum.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, translateError(err)
}
