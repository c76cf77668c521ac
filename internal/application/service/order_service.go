package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"github.com/shopspring/decimal"
)

// PrintJobService handles print job operations. Money moves only through
// the ledger; this service owns the descriptive fields.
type PrintJobService struct {
	jobRepo    repository.PrintJobRepository
	clientRepo repository.ClientRepository
	ledger     *LedgerService
}

// NewPrintJobService creates a new print job service
func NewPrintJobService(
	jobRepo repository.PrintJobRepository,
	clientRepo repository.ClientRepository,
	ledger *LedgerService,
) *PrintJobService {
	return &PrintJobService{
		jobRepo:    jobRepo,
		clientRepo: clientRepo,
		ledger:     ledger,
	}
}

// CreatePrintJobInput represents the create print job input
type CreatePrintJobInput struct {
	UserID         uuid.UUID
	ClientID       uint
	Title          string
	Description    *string
	PrintType      enum.PrintType
	Size           enum.PrintSize
	Quantity       int
	DeliveryDate   *time.Time
	TotalAmount    decimal.Decimal
	InitialPayment decimal.Decimal
	PaymentMethod  enum.PaymentMethod
	Notes          *string
}

// CreatePrintJob creates a print job and records the initial payment, if any
func (s *PrintJobService) CreatePrintJob(ctx context.Context, input *CreatePrintJobInput) (*PaymentResult, error) {
	if err := requireClient(ctx, s.clientRepo, input.ClientID); err != nil {
		return nil, err
	}
	if !input.PrintType.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid print type")
	}
	if !input.Size.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid print size")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 0 {
		return nil, apperror.NewBadRequestError("Quantity must be at least 1")
	}

	job := &entity.PrintJob{
		BillingInfo: entity.BillingInfo{
			ClientID:    input.ClientID,
			TotalAmount: input.TotalAmount,
			Notes:       input.Notes,
		},
		Title:        input.Title,
		Description:  input.Description,
		PrintType:    input.PrintType,
		Size:         input.Size,
		Quantity:     input.Quantity,
		DeliveryDate: input.DeliveryDate,
	}

	user := input.UserID
	return s.ledger.CreateOrderWithInitialDeposit(ctx, job, input.InitialPayment, input.PaymentMethod, &user)
}

// GetPrintJob retrieves a print job with its payment history
func (s *PrintJobService) GetPrintJob(ctx context.Context, id uint) (*entity.PrintJob, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NewOrderNotFoundError(entity.PrintJobRef(id).String())
	}

	payments, err := s.ledger.ListReceipts(ctx, entity.PrintJobRef(id), repository.SortAsc)
	if err != nil {
		return nil, err
	}
	job.Payments = payments
	return job, nil
}

// ListPrintJobs lists print jobs with filters
func (s *PrintJobService) ListPrintJobs(ctx context.Context, params *repository.PrintJobFilterParams) (*pagination.PaginatedResult[entity.PrintJob], error) {
	jobs, total, err := s.jobRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(jobs, pag), nil
}

// UpdatePrintJobInput represents the update print job input
type UpdatePrintJobInput struct {
	ID           uint
	Title        *string
	Description  *string
	PrintType    *enum.PrintType
	Size         *enum.PrintSize
	Quantity     *int
	DeliveryDate *time.Time
	Notes        *string
}

// UpdatePrintJob updates the descriptive fields of a print job
func (s *PrintJobService) UpdatePrintJob(ctx context.Context, input *UpdatePrintJobInput) (*entity.PrintJob, error) {
	job, err := s.jobRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, apperror.NewOrderNotFoundError(entity.PrintJobRef(input.ID).String())
	}

	if input.Title != nil {
		job.Title = *input.Title
	}
	if input.Description != nil {
		job.Description = input.Description
	}
	if input.PrintType != nil {
		if !input.PrintType.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid print type")
		}
		job.PrintType = *input.PrintType
	}
	if input.Size != nil {
		if !input.Size.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid print size")
		}
		job.Size = *input.Size
	}
	if input.Quantity != nil {
		if *input.Quantity < 1 {
			return nil, apperror.NewBadRequestError("Quantity must be at least 1")
		}
		job.Quantity = *input.Quantity
	}
	if input.DeliveryDate != nil {
		job.DeliveryDate = input.DeliveryDate
	}
	if input.Notes != nil {
		job.Notes = input.Notes
	}

	if err := s.jobRepo.UpdateDetails(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ChangeStatus moves a print job to a lifecycle status
func (s *PrintJobService) ChangeStatus(ctx context.Context, id uint, status enum.OrderStatus) (*entity.PrintJob, error) {
	if _, err := s.ledger.TransitionStatus(ctx, entity.PrintJobRef(id), status); err != nil {
		return nil, err
	}
	return s.GetPrintJob(ctx, id)
}

// DeletePrintJob deletes a print job; its receipts stay on record
func (s *PrintJobService) DeletePrintJob(ctx context.Context, id uint) error {
	return s.ledger.DeleteOrder(ctx, entity.PrintJobRef(id))
}

// requireClient fails with a not-found error when the client does not exist
func requireClient(ctx context.Context, repo repository.ClientRepository, id uint) error {
	if id == 0 {
		return apperror.NewBadRequestError("Client is required")
	}
	client, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}
	return nil
}
