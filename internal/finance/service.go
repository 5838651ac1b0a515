package finance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/femar/gestao/internal/security"
)

// Action labels recorded in the security log.
const (
	ActionInvoiceUploaded = "Upload de fatura"
	ActionReportGenerated = "Relatório financeiro gerado"
)

// SeedInvoices returns the initial ledger.
func SeedInvoices() []Invoice {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return []Invoice{
		{ID: "inv-1", Number: "2024-058", Client: "Tech Solutions Ltda", Amount: 12500.00, IssueDate: day(2024, 3, 1), DueDate: day(2024, 3, 31), Status: StatusPaid},
		{ID: "inv-2", Number: "2024-059", Client: "Consultoria Ambiental Marítima", Amount: 7800.50, IssueDate: day(2024, 3, 15), DueDate: day(2024, 4, 14), Status: StatusPending},
		{ID: "inv-3", Number: "2024-050", Client: "Fornecedora Atlântico", Amount: 3400.00, IssueDate: day(2024, 2, 20), DueDate: day(2024, 3, 21), Status: StatusOverdue},
		{ID: "inv-4", Number: "2024-061", Client: "Universidade Federal do Rio", Amount: 22000.00, IssueDate: day(2024, 3, 25), DueDate: day(2024, 4, 24), Status: StatusPending},
	}
}

// Service owns the invoice ledger.
type Service struct {
	mu       sync.RWMutex
	invoices []Invoice
	sequence int

	recorder *security.Recorder
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService seeds a ledger.
func NewService(seed []Invoice, recorder *security.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return "inv-" + uuid.NewString() },
	}
	for _, inv := range seed {
		inv.AmountFormatted = FormatBRL(inv.Amount)
		s.invoices = append(s.invoices, inv)
		var year, seq int
		if _, err := fmt.Sscanf(inv.Number, "%d-%d", &year, &seq); err == nil && seq > s.sequence {
			s.sequence = seq
		}
	}
	return s
}

// Invoices returns the ledger, newest upload first.
func (s *Service) Invoices() []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Invoice, len(s.invoices))
	for i := range s.invoices {
		out[i] = s.invoices[len(s.invoices)-1-i]
	}
	return out
}

// UploadInvoice registers an invoice extracted from fileName and records it
// in the security log. Amounts above the anomaly threshold leave the event
// pending authorization.
func (s *Service) UploadInvoice(ctx context.Context, actor, fileName string, amount float64) (UploadResult, error) {
	if strings.TrimSpace(fileName) == "" {
		return UploadResult{}, ErrFileNameRequired
	}
	if amount <= 0 {
		return UploadResult{}, ErrInvalidAmount
	}
	issued := s.now()

	s.mu.Lock()
	s.sequence++
	inv := Invoice{
		ID:              s.newID(),
		Number:          fmt.Sprintf("%d-%03d", issued.Year(), s.sequence),
		Client:          ClientFromFileName(fileName),
		Amount:          amount,
		AmountFormatted: FormatBRL(amount),
		IssueDate:       issued,
		DueDate:         issued.AddDate(0, 0, PaymentTermDays),
		Status:          StatusPending,
	}
	s.invoices = append(s.invoices, inv)
	s.mu.Unlock()

	details := fmt.Sprintf("Fatura %s de %s no valor de %s (arquivo %s).", inv.Number, inv.Client, inv.AmountFormatted, fileName)
	e, err := s.recorder.Record(ctx, actor, security.Signal{Kind: security.KindInvoiceUpload, Amount: amount}, ActionInvoiceUploaded, details)
	if err != nil {
		return UploadResult{Invoice: inv}, fmt.Errorf("finance: record invoice upload: %w", err)
	}
	if e.Pending() {
		s.logger.Warn("invoice above anomaly threshold",
			slog.String("invoice", inv.Number),
			slog.Float64("amount", amount),
			slog.String("event_id", e.ID),
		)
	}
	return UploadResult{Invoice: inv, EventID: e.ID, PendingAuthorization: e.Pending()}, nil
}

// GenerateReport totals the ledger by status.
func (s *Service) GenerateReport(ctx context.Context, actor string) (Report, error) {
	s.mu.RLock()
	report := Report{
		GeneratedAt: s.now(),
		Count:       len(s.invoices),
		ByStatus:    make(map[InvoiceStatus]float64),
		Formatted:   make(map[InvoiceStatus]string),
	}
	for _, inv := range s.invoices {
		report.ByStatus[inv.Status] += inv.Amount
		report.Total += inv.Amount
	}
	s.mu.RUnlock()

	for status, total := range report.ByStatus {
		report.Formatted[status] = FormatBRL(total)
	}
	details := fmt.Sprintf("Relatório com %d fatura(s), total %s.", report.Count, FormatBRL(report.Total))
	if _, err := s.recorder.Record(ctx, actor, security.Signal{Kind: security.KindReportGeneration}, ActionReportGenerated, details); err != nil {
		return report, fmt.Errorf("finance: record report: %w", err)
	}
	return report, nil
}
