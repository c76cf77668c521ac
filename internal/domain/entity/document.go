package entity

import "github.com/shopspring/decimal"

// DocumentType names the printable documents the studio issues
type DocumentType string

const (
	DocumentPaymentReceipt DocumentType = "payment_receipt"
	DocumentStatement      DocumentType = "statement"
	DocumentFinalInvoice   DocumentType = "final_invoice"
)

// Title is the heading printed on the document
func (t DocumentType) Title() string {
	switch t {
	case DocumentPaymentReceipt:
		return "PAYMENT RECEIPT"
	case DocumentStatement:
		return "ACCOUNT STATEMENT"
	case DocumentFinalInvoice:
		return "FINAL INVOICE"
	}
	return "DOCUMENT"
}

// DocumentHeader holds the studio header printed at the top of a document.
type DocumentHeader struct {
	StudioName string `json:"studio_name"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// DocumentPayment is one payment line of a statement or invoice.
type DocumentPayment struct {
	ReceiptNumber string          `json:"receipt_number"`
	Date          string          `json:"date"`
	Method        string          `json:"method"`
	Amount        decimal.Decimal `json:"amount"`
}

// Document is a value object composed from ledger data at print time.
// It is not persisted.
type Document struct {
	Type        DocumentType      `json:"type"`
	Header      DocumentHeader    `json:"header"`
	Number      string            `json:"number"`
	OrderNumber string            `json:"order_number"`
	OrderLabel  string            `json:"order_label"`
	Description string            `json:"description,omitempty"`
	Date        string            `json:"date"`
	IssuedBy    string            `json:"issued_by,omitempty"`
	Client      string            `json:"client,omitempty"`
	ClientPhone string            `json:"client_phone,omitempty"`
	Method      string            `json:"method,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	Payments    []DocumentPayment `json:"payments,omitempty"`
	Total       decimal.Decimal   `json:"total"`
	Paid        decimal.Decimal   `json:"paid"`
	Remaining   decimal.Decimal   `json:"remaining"`
	Status      string            `json:"status"`
}
