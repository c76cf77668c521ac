package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"github.com/sangkips/studio-ledger/pkg/utils"
)

// UserService handles staff account management
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns a paginated list of users
func (s *UserService) ListUsers(ctx context.Context, filter *repository.StaffFilterParams) (*pagination.PaginatedResult[entity.User], error) {
	if filter.Page == nil {
		filter.Page = &pagination.PaginationParams{}
	}
	filter.Page.Validate()

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(filter.Page.Page, filter.Page.PerPage, total)
	return pagination.NewPaginatedResult(users, pag), nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// CreateUserInput represents the create user input
type CreateUserInput struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Email     *string
	Role      enum.UserRole
}

// CreateUser creates a staff account
func (s *UserService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperror.NewBadRequestError("Username is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewBadRequestError("Password must be at least 8 characters")
	}
	role := input.Role
	if role == "" {
		role = enum.UserRoleEmployee
	}
	if !role.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid role")
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Username already taken")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:  username,
		Password:  hashedPassword,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserInput represents the update user input
type UpdateUserInput struct {
	ID        uuid.UUID
	FirstName *string
	LastName  *string
	Email     *string
	Role      *enum.UserRole
	IsActive  *bool
	Password  *string
}

// UpdateUser updates a staff account. The last active manager cannot be
// demoted or disabled.
func (s *UserService) UpdateUser(ctx context.Context, input *UpdateUserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	losesManager := false
	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid role")
		}
		losesManager = user.IsManager() && *input.Role != enum.UserRoleManager
	}
	if input.IsActive != nil && !*input.IsActive && user.IsManager() {
		losesManager = true
	}
	if losesManager && user.IsActive {
		if err := s.ensureAnotherManager(ctx); err != nil {
			return nil, err
		}
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = input.Email
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Password != nil {
		if len(*input.Password) < minPasswordLength {
			return nil, apperror.NewBadRequestError("Password must be at least 8 characters")
		}
		hashedPassword, err := utils.HashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser deletes a staff account. Receipts it issued keep their history.
func (s *UserService) DeleteUser(ctx context.Context, actingUser, userID uuid.UUID) error {
	if actingUser == userID {
		return apperror.NewBadRequestError("You cannot delete your own account")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsManager() && user.IsActive {
		if err := s.ensureAnotherManager(ctx); err != nil {
			return err
		}
	}

	return s.userRepo.Delete(ctx, userID)
}

func (s *UserService) ensureAnotherManager(ctx context.Context) error {
	managers, err := s.userRepo.CountActiveByRole(ctx, enum.UserRoleManager)
	if err != nil {
		return err
	}
	if managers <= 1 {
		return apperror.NewConflictError("The studio must keep at least one active manager")
	}
	return nil
}
