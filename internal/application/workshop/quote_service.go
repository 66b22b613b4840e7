package workshop

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/notification"
	"github.com/taller/backend/internal/domain/numbering"
	"github.com/taller/backend/internal/domain/partner"
	"github.com/taller/backend/internal/domain/shared"
	"github.com/taller/backend/internal/domain/workshop"
	"go.uber.org/zap"
)

// QuoteService handles quote creation and lifecycle. Sending a quote
// enqueues a fire-and-forget notification job for the customer.
type QuoteService struct {
	quoteRepo    workshop.QuoteRepository
	customerRepo partner.CustomerRepository
	numbers      *numbering.Service
	queue        notification.Queue
	logger       *zap.Logger
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(
	quoteRepo workshop.QuoteRepository,
	customerRepo partner.CustomerRepository,
	numbers *numbering.Service,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		numbers:      numbers,
		logger:       logger,
	}
}

// SetNotificationQueue sets the queue used when quotes are sent
func (s *QuoteService) SetNotificationQueue(queue notification.Queue) {
	s.queue = queue
}

// Create creates a draft quote with a never-resetting quote number
func (s *QuoteService) Create(ctx context.Context, actorID uuid.UUID, req CreateQuoteRequest) (*QuoteResponse, error) {
	quoteNumber, err := s.numbers.NextQuoteNumber(ctx)
	if err != nil {
		return nil, err
	}

	lines := make([]workshop.QuoteLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, workshop.QuoteLine{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
		})
	}

	quote, err := workshop.NewQuote(quoteNumber, req.CustomerID, lines, req.ValidUntil, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Send marks a draft quote as sent and enqueues the customer notification
func (s *QuoteService) Send(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := quote.Send(); err != nil {
		return nil, err
	}
	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.notify(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Approve marks a sent quote as approved
func (s *QuoteService) Approve(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	return s.resolve(ctx, quoteID, (*workshop.Quote).Approve)
}

// Reject marks a sent quote as rejected
func (s *QuoteService) Reject(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	return s.resolve(ctx, quoteID, (*workshop.Quote).Reject)
}

func (s *QuoteService) resolve(ctx context.Context, quoteID uuid.UUID, op func(*workshop.Quote) error) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	opErr := op(quote)
	// An expiry flip still needs persisting even though the operation failed
	if saveErr := s.quoteRepo.Save(ctx, quote); saveErr != nil {
		return nil, saveErr
	}
	if opErr != nil {
		return nil, opErr
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// ExpireLapsed flips sent quotes past their validity date to expired.
// Run periodically from the server.
func (s *QuoteService) ExpireLapsed(ctx context.Context) (int, error) {
	now := time.Now()
	lapsed, err := s.quoteRepo.FindSentExpiredBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range lapsed {
		quote := &lapsed[i]
		if !quote.MarkExpired(now) {
			continue
		}
		if err := s.quoteRepo.Save(ctx, quote); err != nil {
			s.logger.Warn("failed to persist quote expiry",
				zap.String("quote_number", quote.QuoteNumber), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// List retrieves quotes with filtering and pagination
func (s *QuoteService) List(ctx context.Context, filter ListFilter) ([]QuoteResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	quotes, err := s.quoteRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.quoteRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]QuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, ToQuoteResponse(&quotes[i]))
	}
	return responses, total, nil
}

func (s *QuoteService) notify(ctx context.Context, quote *workshop.Quote) {
	if s.queue == nil {
		return
	}

	customer, err := s.customerRepo.FindByID(ctx, quote.CustomerID)
	if err != nil {
		s.logger.Warn("failed to load customer for quote notification", zap.Error(err))
		return
	}

	var channels []notification.Channel
	if customer.Email != "" {
		channels = append(channels, notification.ChannelEmail)
	}
	if customer.Phone != "" {
		channels = append(channels, notification.ChannelWhatsapp)
	}
	if len(channels) == 0 {
		return
	}

	recipient := customer.Email
	if recipient == "" {
		recipient = customer.Phone
	}
	message := fmt.Sprintf("Cotizacion %s por %s, valida hasta %s",
		quote.QuoteNumber, quote.Total.StringFixed(2), quote.ValidUntil.Format("2006-01-02"))

	job, err := notification.NewJob(quote.ID, notification.SubjectQuote, recipient, message, channels...)
	if err != nil {
		s.logger.Warn("failed to build quote notification job", zap.Error(err))
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn("failed to enqueue quote notification",
			zap.String("quote_number", quote.QuoteNumber), zap.Error(err))
	}
}
