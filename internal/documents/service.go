// Package documents keeps the administrative document register.
package documents

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/femar/gestao/internal/security"
	"github.com/femar/gestao/internal/shared"
)

// ActionDocumentUploaded labels upload events in the security log.
const ActionDocumentUploaded = "Upload de documento"

// Document types inferred from file names.
const (
	TypeContract = "Contrato"
	TypeReceipt  = "Recibo"
	TypeProposal = "Proposta"
	TypeReport   = "Relatório"
	TypeOther    = "Outro"
)

// ErrFileNameRequired rejects an upload without a file name.
var ErrFileNameRequired = fmt.Errorf("documents: file name required: %w", shared.ErrValidation)

// ErrInvalidSize rejects negative sizes.
var ErrInvalidSize = fmt.Errorf("documents: size must not be negative: %w", shared.ErrValidation)

// Document is a registered file.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploaded_at"`
	Bytes      int64     `json:"bytes"`
	Size       string    `json:"size"`
}

// TypeFromFileName infers the document type from keywords in the name.
func TypeFromFileName(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "contrato"):
		return TypeContract
	case strings.Contains(lower, "recibo"), strings.Contains(lower, "fatura"):
		return TypeReceipt
	case strings.Contains(lower, "proposta"):
		return TypeProposal
	case strings.Contains(lower, "relatorio"), strings.Contains(lower, "relatório"), strings.Contains(lower, "report"):
		return TypeReport
	default:
		return TypeOther
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a size with binary units and up to two decimals.
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := float64(n) / math.Pow(1024, float64(i))
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + sizeUnits[i]
}

// SeedDocuments returns the initial register.
func SeedDocuments() []Document {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
	docs := []Document{
		{ID: "doc-1", Name: "Contrato_Parceria_A.pdf", UploadedAt: day(3, 10), Bytes: 1258291},
		{ID: "doc-2", Name: "Recibo_Serviços_IA.pdf", UploadedAt: day(3, 15), Bytes: 348160},
		{ID: "doc-3", Name: "Proposta_Monitoramento.docx", UploadedAt: day(2, 28), Bytes: 870400},
	}
	for i := range docs {
		docs[i].Type = TypeFromFileName(docs[i].Name)
		docs[i].Size = FormatBytes(docs[i].Bytes)
	}
	return docs
}

// Service owns the register.
type Service struct {
	mu        sync.RWMutex
	documents []Document

	recorder *security.Recorder
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService seeds a register.
func NewService(seed []Document, recorder *security.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	docs := make([]Document, len(seed))
	copy(docs, seed)
	return &Service{
		documents: docs,
		recorder:  recorder,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return "doc-" + uuid.NewString() },
	}
}

// Documents returns the register, newest upload first.
func (s *Service) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, len(s.documents))
	for i := range s.documents {
		out[i] = s.documents[len(s.documents)-1-i]
	}
	return out
}

// Upload registers a file and records a low-risk event.
func (s *Service) Upload(ctx context.Context, actor, fileName string, size int64) (Document, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return Document{}, ErrFileNameRequired
	}
	if size < 0 {
		return Document{}, ErrInvalidSize
	}
	doc := Document{
		ID:         s.newID(),
		Name:       fileName,
		Type:       TypeFromFileName(fileName),
		UploadedAt: s.now(),
		Bytes:      size,
		Size:       FormatBytes(size),
	}
	s.mu.Lock()
	s.documents = append(s.documents, doc)
	s.mu.Unlock()

	details := fmt.Sprintf("Documento %s (%s, %s) carregado.", doc.Name, doc.Type, doc.Size)
	if _, err := s.recorder.Record(ctx, actor, security.Signal{Kind: security.KindDocumentUpload}, ActionDocumentUploaded, details); err != nil {
		return doc, fmt.Errorf("documents: record upload: %w", err)
	}
	return doc, nil
}
