// Package finance keeps the invoice ledger. Uploads are classified by amount
// so unusually large invoices wait for authorization in the security log.
package finance

import (
	"fmt"
	"time"

	"github.com/femar/gestao/internal/shared"
)

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

// Invoice statuses.
const (
	StatusPaid    InvoiceStatus = "paid"
	StatusPending InvoiceStatus = "pending"
	StatusOverdue InvoiceStatus = "overdue"
)

// Invoice is a ledger entry.
type Invoice struct {
	ID              string        `json:"id"`
	Number          string        `json:"invoice_number"`
	Client          string        `json:"client"`
	Amount          float64       `json:"amount"`
	AmountFormatted string        `json:"amount_formatted"`
	IssueDate       time.Time     `json:"issue_date"`
	DueDate         time.Time     `json:"due_date"`
	Status          InvoiceStatus `json:"status"`
}

// UploadResult pairs the stored invoice with the security event it raised.
type UploadResult struct {
	Invoice              Invoice `json:"invoice"`
	EventID              string  `json:"event_id"`
	PendingAuthorization bool    `json:"pending_authorization"`
}

// Report summarises the ledger.
type Report struct {
	GeneratedAt time.Time                 `json:"generated_at"`
	Count       int                       `json:"count"`
	Total       float64                   `json:"total"`
	ByStatus    map[InvoiceStatus]float64 `json:"by_status"`
	Formatted   map[InvoiceStatus]string  `json:"formatted"`
}

// UnknownClient names invoices whose file name yields no client.
const UnknownClient = "Cliente Desconhecido"

// PaymentTermDays is the gap between issue and due dates.
const PaymentTermDays = 30

var (
	// ErrFileNameRequired rejects an upload without a file name.
	ErrFileNameRequired = fmt.Errorf("finance: file name required: %w", shared.ErrValidation)
	// ErrInvalidAmount rejects non-positive amounts.
	ErrInvalidAmount = fmt.Errorf("finance: amount must be positive: %w", shared.ErrValidation)
)
