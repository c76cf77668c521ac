package service

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/enum"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
	"github.com/shopspring/decimal"
)

var sessionTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// PhotoSessionService handles photography session operations
type PhotoSessionService struct {
	sessionRepo      repository.PhotoSessionRepository
	clientRepo       repository.ClientRepository
	packageRepo      repository.PackageRepository
	photographerRepo repository.PhotographerRepository
	ledger           *LedgerService
}

// NewPhotoSessionService creates a new photo session service
func NewPhotoSessionService(
	sessionRepo repository.PhotoSessionRepository,
	clientRepo repository.ClientRepository,
	packageRepo repository.PackageRepository,
	photographerRepo repository.PhotographerRepository,
	ledger *LedgerService,
) *PhotoSessionService {
	return &PhotoSessionService{
		sessionRepo:      sessionRepo,
		clientRepo:       clientRepo,
		packageRepo:      packageRepo,
		photographerRepo: photographerRepo,
		ledger:           ledger,
	}
}

// CreatePhotoSessionInput represents the create photo session input
type CreatePhotoSessionInput struct {
	UserID         uuid.UUID
	ClientID       uint
	PackageID      *uint
	PhotographerID *uint
	SessionDate    time.Time
	SessionTime    *string
	Location       *string
	EventType      enum.EventType
	AgreementNotes *string
	// TotalAmount defaults to the package price when zero
	TotalAmount    decimal.Decimal
	InitialPayment decimal.Decimal
	PaymentMethod  enum.PaymentMethod
	Notes          *string
}

// CreatePhotoSession books a session and records the initial payment, if any
func (s *PhotoSessionService) CreatePhotoSession(ctx context.Context, input *CreatePhotoSessionInput) (*PaymentResult, error) {
	if err := requireClient(ctx, s.clientRepo, input.ClientID); err != nil {
		return nil, err
	}
	if !input.EventType.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid event type")
	}
	if input.SessionDate.IsZero() {
		return nil, apperror.NewBadRequestError("Session date is required")
	}
	if input.SessionTime != nil && !sessionTimePattern.MatchString(*input.SessionTime) {
		return nil, apperror.NewBadRequestError("Session time must be HH:MM")
	}

	total := input.TotalAmount
	if input.PackageID != nil {
		pkg, err := s.activePackage(ctx, *input.PackageID)
		if err != nil {
			return nil, err
		}
		if total.IsZero() {
			total = pkg.Price
		}
	}
	if input.PhotographerID != nil {
		if err := s.requirePhotographer(ctx, *input.PhotographerID); err != nil {
			return nil, err
		}
	}

	session := &entity.PhotoSession{
		BillingInfo: entity.BillingInfo{
			ClientID:    input.ClientID,
			TotalAmount: total,
			Notes:       input.Notes,
		},
		PackageID:      input.PackageID,
		PhotographerID: input.PhotographerID,
		SessionDate:    input.SessionDate,
		SessionTime:    input.SessionTime,
		Location:       input.Location,
		EventType:      input.EventType,
		EditingStatus:  enum.EditingStatusNotStarted,
		AgreementNotes: input.AgreementNotes,
	}

	user := input.UserID
	return s.ledger.CreateOrderWithInitialDeposit(ctx, session, input.InitialPayment, input.PaymentMethod, &user)
}

// GetPhotoSession retrieves a session with its payment history
func (s *PhotoSessionService) GetPhotoSession(ctx context.Context, id uint) (*entity.PhotoSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewOrderNotFoundError(entity.PhotoSessionRef(id).String())
	}

	payments, err := s.ledger.ListReceipts(ctx, entity.PhotoSessionRef(id), repository.SortAsc)
	if err != nil {
		return nil, err
	}
	session.Payments = payments
	return session, nil
}

// ListPhotoSessions lists sessions with filters
func (s *PhotoSessionService) ListPhotoSessions(ctx context.Context, params *repository.PhotoSessionFilterParams) (*pagination.PaginatedResult[entity.PhotoSession], error) {
	sessions, total, err := s.sessionRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(sessions, pag), nil
}

// UpdatePhotoSessionInput represents the update photo session input
type UpdatePhotoSessionInput struct {
	ID                  uint
	PackageID           *uint
	PhotographerID      *uint
	SessionDate         *time.Time
	SessionTime         *string
	Location            *string
	EventType           *enum.EventType
	EditingStatus       *enum.EditingStatus
	FinalDeliveryDate   *time.Time
	NumPhotosDelivered  *int
	NumPrintedDelivered *int
	AlbumDelivered      *bool
	FrameDelivered      *bool
	FinalGalleryLink    *string
	AgreementNotes      *string
	Notes               *string
}

// UpdatePhotoSession updates scheduling and delivery details. The total is
// fixed at booking and is not changed by a new package.
func (s *PhotoSessionService) UpdatePhotoSession(ctx context.Context, input *UpdatePhotoSessionInput) (*entity.PhotoSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NewOrderNotFoundError(entity.PhotoSessionRef(input.ID).String())
	}

	if input.PackageID != nil {
		if _, err := s.activePackage(ctx, *input.PackageID); err != nil {
			return nil, err
		}
		session.PackageID = input.PackageID
	}
	if input.PhotographerID != nil {
		if err := s.requirePhotographer(ctx, *input.PhotographerID); err != nil {
			return nil, err
		}
		session.PhotographerID = input.PhotographerID
	}
	if input.SessionDate != nil {
		session.SessionDate = *input.SessionDate
	}
	if input.SessionTime != nil {
		if !sessionTimePattern.MatchString(*input.SessionTime) {
			return nil, apperror.NewBadRequestError("Session time must be HH:MM")
		}
		session.SessionTime = input.SessionTime
	}
	if input.Location != nil {
		session.Location = input.Location
	}
	if input.EventType != nil {
		if !input.EventType.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid event type")
		}
		session.EventType = *input.EventType
	}
	if input.EditingStatus != nil {
		if !input.EditingStatus.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid editing status")
		}
		session.EditingStatus = *input.EditingStatus
	}
	if input.FinalDeliveryDate != nil {
		session.FinalDeliveryDate = input.FinalDeliveryDate
	}
	if input.NumPhotosDelivered != nil {
		session.NumPhotosDelivered = *input.NumPhotosDelivered
	}
	if input.NumPrintedDelivered != nil {
		session.NumPrintedDelivered = *input.NumPrintedDelivered
	}
	if input.AlbumDelivered != nil {
		session.AlbumDelivered = *input.AlbumDelivered
	}
	if input.FrameDelivered != nil {
		session.FrameDelivered = *input.FrameDelivered
	}
	if input.FinalGalleryLink != nil {
		session.FinalGalleryLink = input.FinalGalleryLink
	}
	if input.AgreementNotes != nil {
		session.AgreementNotes = input.AgreementNotes
	}
	if input.Notes != nil {
		session.Notes = input.Notes
	}
	if session.NumPhotosDelivered < 0 || session.NumPrintedDelivered < 0 {
		return nil, apperror.NewBadRequestError("Delivered counts cannot be negative")
	}

	if err := s.sessionRepo.UpdateDetails(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ChangeStatus moves a photo session to a lifecycle status
func (s *PhotoSessionService) ChangeStatus(ctx context.Context, id uint, status enum.OrderStatus) (*entity.PhotoSession, error) {
	if _, err := s.ledger.TransitionStatus(ctx, entity.PhotoSessionRef(id), status); err != nil {
		return nil, err
	}
	return s.GetPhotoSession(ctx, id)
}

// DeletePhotoSession deletes a session; its receipts stay on record
func (s *PhotoSessionService) DeletePhotoSession(ctx context.Context, id uint) error {
	return s.ledger.DeleteOrder(ctx, entity.PhotoSessionRef(id))
}

func (s *PhotoSessionService) activePackage(ctx context.Context, id uint) (*entity.PhotographyPackage, error) {
	pkg, err := s.packageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, apperror.NewNotFoundError("Package")
	}
	if !pkg.IsActive {
		return nil, apperror.NewBadRequestError("Package is no longer offered")
	}
	return pkg, nil
}

func (s *PhotoSessionService) requirePhotographer(ctx context.Context, id uint) error {
	p, err := s.photographerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return apperror.NewNotFoundError("Photographer")
	}
	if !p.IsActive {
		return apperror.NewBadRequestError("Photographer is inactive")
	}
	return nil
}
