package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
)

// Channel identifies a delivery channel
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsapp Channel = "whatsapp"
)

// IsValid returns true if the channel is known
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelWhatsapp
}

// SubjectType identifies what kind of document a job refers to
type SubjectType string

const (
	SubjectSale        SubjectType = "sale"
	SubjectQuote       SubjectType = "quote"
	SubjectRepairOrder SubjectType = "repair_order"
)

// Job is one queued notification. Jobs are fire-and-forget from the
// producer's point of view; the worker owns retries.
type Job struct {
	ID          uuid.UUID   `json:"id"`
	SubjectID   uuid.UUID   `json:"subject_id"`
	SubjectType SubjectType `json:"subject_type"`
	Recipient   string      `json:"recipient"`
	Message     string      `json:"message"`
	PDFURL      string      `json:"pdf_url,omitempty"`
	Channels    []Channel   `json:"channels"`
	Attempts    int         `json:"attempts"`
	EnqueuedAt  time.Time   `json:"enqueued_at"`
}

// NewJob creates a notification job for the given subject
func NewJob(subjectID uuid.UUID, subjectType SubjectType, recipient, message string, channels ...Channel) (*Job, error) {
	if subjectID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SUBJECT", "Notification subject cannot be empty")
	}
	if len(channels) == 0 {
		return nil, shared.NewValidationError("NO_CHANNELS", "Notification needs at least one channel")
	}
	for _, c := range channels {
		if !c.IsValid() {
			return nil, shared.NewValidationError("INVALID_CHANNEL", "Unknown notification channel: "+string(c))
		}
	}

	return &Job{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Recipient:   recipient,
		Message:     message,
		Channels:    channels,
		EnqueuedAt:  time.Now(),
	}, nil
}

// Queue moves jobs between producers and the dispatch worker
type Queue interface {
	// Enqueue pushes a job; producers never block on delivery
	Enqueue(ctx context.Context, job *Job) error

	// Dequeue blocks up to timeout waiting for the next job; returns nil job
	// when the timeout elapses with an empty queue
	Dequeue(ctx context.Context, timeout time.Duration) (*Job, error)
}

// Sender delivers a job over one channel
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, job *Job) error
}
