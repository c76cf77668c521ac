package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
	"github.com/sangkips/studio-ledger/internal/domain/repository"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/printer"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const documentDateLayout = "2006-01-02 15:04"

// PrinterSettings describes the attached printer and the studio header
type PrinterSettings struct {
	Type          string
	Width         int
	StudioName    string
	StudioPhone   string
	StudioAddress string
}

// PrinterService composes printable documents from ledger data and sends
// them to the thermal printer. It is only called after a ledger unit of
// work has finished.
type PrinterService struct {
	printer     printer.Printer
	ledger      *LedgerService
	receiptRepo repository.ReceiptRepository
	clientRepo  repository.ClientRepository
	userRepo    repository.UserRepository
	settings    PrinterSettings
	logger      *zap.Logger
}

// NewPrinterService creates a new printer service
func NewPrinterService(
	p printer.Printer,
	ledger *LedgerService,
	receiptRepo repository.ReceiptRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	settings PrinterSettings,
	logger *zap.Logger,
) *PrinterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.StudioName == "" {
		settings.StudioName = "Studio"
	}
	return &PrinterService{
		printer:     p,
		ledger:      ledger,
		receiptRepo: receiptRepo,
		clientRepo:  clientRepo,
		userRepo:    userRepo,
		settings:    settings,
		logger:      logger,
	}
}

// PrinterStatus returns the current printer status information
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.settings.Type != "none" && s.settings.Type != "",
		Connected:  s.printer.IsConnected(ctx),
		Type:       s.settings.Type,
	}
}

// TestPrint sends a sample receipt to the printer and returns it
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Document, error) {
	doc := &entity.Document{
		Type:        entity.DocumentPaymentReceipt,
		Header:      s.header(),
		Number:      "TEST-0001",
		OrderNumber: "TEST",
		OrderLabel:  "Printer test",
		Date:        time.Now().Local().Format(documentDateLayout),
		IssuedBy:    "System",
		Method:      "Cash",
		Amount:      decimal.NewFromInt(10),
		Total:       decimal.NewFromInt(20),
		Paid:        decimal.NewFromInt(10),
		Remaining:   decimal.NewFromInt(10),
		Status:      "Partially paid",
	}
	return doc, s.send(ctx, doc)
}

// PrintReceipt prints a payment receipt. Paid and remaining are the
// balances right after this payment, taken from the order's receipt history.
func (s *PrinterService) PrintReceipt(ctx context.Context, receiptID uint) (*entity.Document, error) {
	receipt, err := s.receiptRepo.GetByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}

	doc := &entity.Document{
		Type:       entity.DocumentPaymentReceipt,
		Header:     s.header(),
		Number:     deref(receipt.ReceiptNumber),
		Date:       receipt.IssuedAt.Local().Format(documentDateLayout),
		IssuedBy:   s.issuerName(ctx, receipt.IssuedByID),
		Method:     receipt.PaymentMethod.Label(),
		Amount:     receipt.PaidAmount,
		Total:      receipt.TotalAmount,
		Paid:       receipt.PaidAmount,
		OrderLabel: receipt.OrderKind.Label(),
	}
	s.fillClient(ctx, doc, receipt.ClientID)

	if ref, ok := receipt.Order(); ok {
		order, err := s.ledger.GetOrder(ctx, ref)
		if err != nil {
			return nil, err
		}
		s.fillOrder(doc, order)

		history, err := s.ledger.ListReceipts(ctx, ref, repository.SortAsc)
		if err != nil {
			return nil, err
		}
		paid := decimal.Zero
		for _, r := range history {
			paid = paid.Add(r.PaidAmount)
			if r.ID == receipt.ID {
				break
			}
		}
		doc.Paid = paid
	}
	doc.Remaining = doc.Total.Sub(doc.Paid)
	if doc.Remaining.IsZero() {
		doc.Status = "Paid in full"
	} else {
		doc.Status = "Balance due"
	}

	return doc, s.send(ctx, doc)
}

// PrintStatement prints an order with its full payment history
func (s *PrinterService) PrintStatement(ctx context.Context, ref entity.OrderRef) (*entity.Document, error) {
	doc, err := s.orderDocument(ctx, entity.DocumentStatement, ref)
	if err != nil {
		return nil, err
	}
	return doc, s.send(ctx, doc)
}

// PrintFinalInvoice prints the closing invoice of a fully paid order
func (s *PrinterService) PrintFinalInvoice(ctx context.Context, ref entity.OrderRef) (*entity.Document, error) {
	order, err := s.ledger.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !order.Billing().IsFullyPaid() {
		return nil, apperror.NewBadRequestError(fmt.Sprintf(
			"Final invoice requires full payment, %s remaining", order.Billing().RemainingAmount().StringFixed(2)))
	}

	doc, err := s.orderDocument(ctx, entity.DocumentFinalInvoice, ref)
	if err != nil {
		return nil, err
	}
	return doc, s.send(ctx, doc)
}

func (s *PrinterService) orderDocument(ctx context.Context, docType entity.DocumentType, ref entity.OrderRef) (*entity.Document, error) {
	order, err := s.ledger.GetOrder(ctx, ref)
	if err != nil {
		return nil, err
	}
	receipts, err := s.ledger.ListReceipts(ctx, ref, repository.SortAsc)
	if err != nil {
		return nil, err
	}

	b := order.Billing()
	doc := &entity.Document{
		Type:     docType,
		Header:   s.header(),
		Date:     time.Now().Local().Format(documentDateLayout),
		IssuedBy: s.issuerName(ctx, b.IssuedByID),
	}
	s.fillOrder(doc, order)
	doc.Number = doc.OrderNumber
	s.fillClient(ctx, doc, b.ClientID)

	for _, r := range receipts {
		doc.Payments = append(doc.Payments, entity.DocumentPayment{
			ReceiptNumber: deref(r.ReceiptNumber),
			Date:          r.IssuedAt.Local().Format("2006-01-02"),
			Method:        r.PaymentMethod.Label(),
			Amount:        r.PaidAmount,
		})
	}
	return doc, nil
}

func (s *PrinterService) fillOrder(doc *entity.Document, order entity.Billable) {
	b := order.Billing()
	doc.OrderNumber = deref(b.ReceiptNumber)
	doc.OrderLabel = order.Kind().Label()
	doc.Total = b.TotalAmount
	doc.Paid = b.PaidAmount
	doc.Remaining = b.RemainingAmount()
	doc.Status = b.Status.Label()

	switch o := order.(type) {
	case *entity.PrintJob:
		doc.Description = fmt.Sprintf("%s (%d x %s)", o.Title, o.Quantity, o.Size)
	case *entity.PhotoSession:
		doc.Description = fmt.Sprintf("%s session on %s", o.EventType, o.SessionDate.Format("2006-01-02"))
	}
}

func (s *PrinterService) fillClient(ctx context.Context, doc *entity.Document, clientID uint) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil || client == nil {
		return
	}
	doc.Client = client.Name
	doc.ClientPhone = deref(client.Phone)
}

func (s *PrinterService) issuerName(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	user, err := s.userRepo.GetByID(ctx, *id)
	if err != nil || user == nil {
		return ""
	}
	return user.FullName()
}

func (s *PrinterService) header() entity.DocumentHeader {
	return entity.DocumentHeader{
		StudioName: s.settings.StudioName,
		Address:    s.settings.StudioAddress,
		Phone:      s.settings.StudioPhone,
	}
}

func (s *PrinterService) send(ctx context.Context, doc *entity.Document) error {
	if err := s.printer.Print(ctx, FormatDocument(doc, s.settings.Width)); err != nil {
		s.logger.Error("printing failed",
			zap.String("document", string(doc.Type)),
			zap.String("number", doc.Number),
			zap.Error(err))
		return fmt.Errorf("failed to print %s: %w", doc.Type, err)
	}
	return nil
}

// FormatDocument converts a document into ESC/POS bytes
func FormatDocument(d *entity.Document, width int) []byte {
	doc := printer.NewDocument(width)

	doc.Banner(d.Header.StudioName).
		Centered(d.Header.Address, d.Header.Phone).
		Blank(1).
		Align(printer.AlignCenter).Bold(true).Line(d.Type.Title()).Bold(false).
		Align(printer.AlignLeft).
		Rule('-')

	doc.Pair("No:", d.Number).
		Pair("Date:", d.Date)
	if d.Type == entity.DocumentPaymentReceipt && d.OrderNumber != "" {
		doc.Pair("Order:", d.OrderNumber)
	}
	if d.Client != "" {
		doc.Pair("Client:", d.Client)
	}
	if d.ClientPhone != "" {
		doc.Pair("Phone:", d.ClientPhone)
	}
	if d.IssuedBy != "" {
		doc.Pair("Served by:", d.IssuedBy)
	}
	doc.Rule('-').Line(d.OrderLabel)
	if d.Description != "" {
		doc.Wrapped(d.Description)
	}
	doc.Rule('-')

	if d.Type == entity.DocumentPaymentReceipt {
		doc.Pair("Method:", d.Method).
			StrongPair("AMOUNT PAID:", d.Amount.StringFixed(2)).
			Rule('-')
	} else if len(d.Payments) > 0 {
		doc.Line("Payments")
		for _, p := range d.Payments {
			doc.PaymentLine(p.Date, p.Method, p.Amount.StringFixed(2), p.ReceiptNumber)
		}
		doc.Rule('-')
	}

	doc.Pair("Total:", d.Total.StringFixed(2)).
		Pair("Paid:", d.Paid.StringFixed(2)).
		StrongPair("Balance:", d.Remaining.StringFixed(2))
	if d.Status != "" {
		doc.Pair("Status:", d.Status)
	}
	doc.Rule('-').
		Blank(1).
		Centered("Thank you for your business!").
		Cut(true)

	return doc.Bytes()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
