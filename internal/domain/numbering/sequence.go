package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/taller/backend/internal/domain/shared"
)

// Sequence is a named gap-free counter persisted as one row per scope.
// The repository increments it under a row-level lock so concurrent callers
// serialize on the counter and never observe duplicate or skipped values.
type Sequence struct {
	Key       string    `gorm:"type:varchar(50);primaryKey"`
	LastValue int64     `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Sequence) TableName() string {
	return "sequences"
}

// Scope describes one numbering scheme: which counter row it draws from and
// how values are rendered. Sales and quotes never reset; repair orders embed
// year+month in the key, so each month starts a fresh counter.
type Scope struct {
	Key      string
	Prefix   string
	PadWidth int
}

// Format renders a counter value as a document number for this scope
func (s Scope) Format(value int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.PadWidth, value)
}

// SaleScope numbers sales: VEN000123, never resets
func SaleScope() Scope {
	return Scope{Key: "sale", Prefix: "VEN", PadWidth: 6}
}

// QuoteScope numbers quotes: COT000123, never resets
func QuoteScope() Scope {
	return Scope{Key: "quote", Prefix: "COT", PadWidth: 6}
}

// OrderScope numbers repair orders: ORD-202501-0007, resets each calendar month
func OrderScope(now time.Time) Scope {
	month := now.Format("200601")
	return Scope{
		Key:      "order-" + month,
		Prefix:   "ORD-" + month + "-",
		PadWidth: 4,
	}
}

// SequenceRepository increments named counters.
type SequenceRepository interface {
	// NextValue atomically increments the counter for the key and returns the
	// new value, creating the row at 1 on first use. Implementations must lock
	// the counter row for the duration of the increment.
	NextValue(ctx context.Context, key string) (int64, error)

	// CurrentValue returns the last issued value for the key, zero if the
	// counter does not exist yet
	CurrentValue(ctx context.Context, key string) (int64, error)
}

// Service issues formatted document numbers backed by locked counters
type Service struct {
	sequences SequenceRepository
}

// NewService creates a numbering service
func NewService(sequences SequenceRepository) *Service {
	return &Service{sequences: sequences}
}

// Next issues the next number for the given scope
func (s *Service) Next(ctx context.Context, scope Scope) (string, error) {
	value, err := s.sequences.NextValue(ctx, scope.Key)
	if err != nil {
		return "", err
	}
	if value <= 0 {
		return "", shared.NewInvariantViolation("INVALID_SEQUENCE_VALUE",
			fmt.Sprintf("Sequence %s returned non-positive value %d", scope.Key, value))
	}
	return scope.Format(value), nil
}

// NextSaleNumber issues the next sale number
func (s *Service) NextSaleNumber(ctx context.Context) (string, error) {
	return s.Next(ctx, SaleScope())
}

// NextQuoteNumber issues the next quote number
func (s *Service) NextQuoteNumber(ctx context.Context) (string, error) {
	return s.Next(ctx, QuoteScope())
}

// NextOrderNumber issues the next repair order number for the month of now
func (s *Service) NextOrderNumber(ctx context.Context, now time.Time) (string, error) {
	return s.Next(ctx, OrderScope(now))
}
