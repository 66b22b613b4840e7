package notification

import (
	"context"
	"time"

	"github.com/taller/backend/internal/domain/notification"
	"go.uber.org/zap"
)

// MaxAttempts caps how many times a failed job is re-queued
const MaxAttempts = 3

// DispatchService consumes the notification queue and fans each job out to
// its channels. Producers never wait on delivery: the worker runs in the
// background, re-queues failed jobs up to the attempt cap and drops them
// with a log line after that.
type DispatchService struct {
	queue   notification.Queue
	senders map[notification.Channel]notification.Sender
	logger  *zap.Logger
}

// NewDispatchService creates a dispatch service with the given senders
func NewDispatchService(queue notification.Queue, logger *zap.Logger, senders ...notification.Sender) *DispatchService {
	byChannel := make(map[notification.Channel]notification.Sender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}
	return &DispatchService{
		queue:   queue,
		senders: byChannel,
		logger:  logger,
	}
}

// Run consumes the queue until the context is cancelled
func (s *DispatchService) Run(ctx context.Context) {
	s.logger.Info("notification dispatcher started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("notification dispatcher stopped")
			return
		default:
		}

		job, err := s.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("notification dispatcher stopped")
				return
			}
			s.logger.Warn("failed to dequeue notification job", zap.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		s.Dispatch(ctx, job)
	}
}

// Dispatch delivers one job over all its channels. Channels that fail are
// collected into a retry job; channels that succeeded are not retried.
func (s *DispatchService) Dispatch(ctx context.Context, job *notification.Job) {
	var failed []notification.Channel
	delivered := 0

	for _, channel := range job.Channels {
		sender, ok := s.senders[channel]
		if !ok {
			s.logger.Warn("no sender configured for channel",
				zap.String("channel", string(channel)),
				zap.String("subject_id", job.SubjectID.String()))
			continue
		}

		if err := sender.Send(ctx, job); err != nil {
			s.logger.Warn("notification delivery failed",
				zap.String("channel", string(channel)),
				zap.String("subject_id", job.SubjectID.String()),
				zap.Int("attempt", job.Attempts+1),
				zap.Error(err))
			failed = append(failed, channel)
			continue
		}
		delivered++
	}

	s.logger.Info("notification job processed",
		zap.String("subject_type", string(job.SubjectType)),
		zap.String("subject_id", job.SubjectID.String()),
		zap.Int("delivered", delivered),
		zap.Int("failed", len(failed)))

	if len(failed) == 0 {
		return
	}

	job.Attempts++
	job.Channels = failed
	if job.Attempts >= MaxAttempts {
		s.logger.Error("notification job dropped after max attempts",
			zap.String("subject_id", job.SubjectID.String()),
			zap.Int("attempts", job.Attempts))
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error("failed to re-queue notification job",
			zap.String("subject_id", job.SubjectID.String()), zap.Error(err))
	}
}
