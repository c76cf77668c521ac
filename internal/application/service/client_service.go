package service

import (
	"context"
	"strings"

	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo  repository.ClientRepository
	jobRepo     repository.PrintJobRepository
	sessionRepo repository.PhotoSessionRepository
	receiptRepo repository.ReceiptRepository
	ledger      *LedgerService
}

// NewClientService creates a new client service
func NewClientService(
	clientRepo repository.ClientRepository,
	jobRepo repository.PrintJobRepository,
	sessionRepo repository.PhotoSessionRepository,
	receiptRepo repository.ReceiptRepository,
	ledger *LedgerService,
) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		jobRepo:     jobRepo,
		sessionRepo: sessionRepo,
		receiptRepo: receiptRepo,
		ledger:      ledger,
	}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	Name    string
	Phone   *string
	Email   *string
	Address *string
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Client name is required")
	}
	if err := s.ensurePhoneFree(ctx, input.Phone, 0); err != nil {
		return nil, err
	}

	client := &entity.Client{
		Name:    name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetClient retrieves a client with its outstanding balance
func (s *ClientService) GetClient(ctx context.Context, id uint) (*entity.Client, error) {
	client, err := s.getClient(ctx, id)
	if err != nil {
		return nil, err
	}

	remaining, err := s.ledger.TotalRemainingAcrossOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	client.TotalRemainingAmount = &remaining
	return client, nil
}

// ListClients lists clients matching search
func (s *ClientService) ListClients(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	ID      uint
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

// UpdateClient updates a client
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.getClient(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewBadRequestError("Client name is required")
		}
		client.Name = name
	}
	if input.Phone != nil {
		if err := s.ensurePhoneFree(ctx, input.Phone, client.ID); err != nil {
			return nil, err
		}
		client.Phone = input.Phone
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Address != nil {
		client.Address = input.Address
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient deletes a client that has no orders
func (s *ClientService) DeleteClient(ctx context.Context, id uint) error {
	if _, err := s.getClient(ctx, id); err != nil {
		return err
	}

	orders, err := s.clientRepo.CountOrders(ctx, id)
	if err != nil {
		return err
	}
	if orders > 0 {
		return apperror.NewConflictError("Client has orders and cannot be deleted")
	}
	return s.clientRepo.Delete(ctx, id)
}

// TotalRemaining returns the outstanding balance of a client across all orders
func (s *ClientService) TotalRemaining(ctx context.Context, id uint) (decimal.Decimal, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return decimal.Zero, err
	}
	return s.ledger.TotalRemainingAcrossOrders(ctx, id)
}

// ListPrintJobs returns every print job of a client
func (s *ClientService) ListPrintJobs(ctx context.Context, id uint) ([]entity.PrintJob, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return nil, err
	}
	return s.jobRepo.ListByClient(ctx, id)
}

// ListPhotoSessions returns every photo session of a client
func (s *ClientService) ListPhotoSessions(ctx context.Context, id uint) ([]entity.PhotoSession, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByClient(ctx, id)
}

// ListReceipts returns every payment receipt issued to a client
func (s *ClientService) ListReceipts(ctx context.Context, id uint) ([]entity.PaymentReceipt, error) {
	if _, err := s.getClient(ctx, id); err != nil {
		return nil, err
	}
	return s.receiptRepo.ListByClient(ctx, id)
}

func (s *ClientService) getClient(ctx context.Context, id uint) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

func (s *ClientService) ensurePhoneFree(ctx context.Context, phone *string, self uint) error {
	if phone == nil || *phone == "" {
		return nil
	}
	existing, err := s.clientRepo.GetByPhone(ctx, *phone)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != self {
		return apperror.NewConflictError("A client with this phone number already exists")
	}
	return nil
}
