package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/taller/backend/internal/domain/notification"
	"go.uber.org/zap"
)

type memQueue struct {
	jobs []*notification.Job
}

func (q *memQueue) Enqueue(_ context.Context, job *notification.Job) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memQueue) Dequeue(_ context.Context, _ time.Duration) (*notification.Job, error) {
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

type stubSender struct {
	channel notification.Channel
	err     error
	sent    []*notification.Job
}

func (s *stubSender) Channel() notification.Channel { return s.channel }

func (s *stubSender) Send(_ context.Context, job *notification.Job) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, job)
	return nil
}

func newJob(t *testing.T, channels ...notification.Channel) *notification.Job {
	t.Helper()
	job, err := notification.NewJob(uuid.New(), notification.SubjectSale,
		"maria@example.com", "Venta VEN000001", channels...)
	assert.NoError(t, err)
	return job
}

func TestDispatchService_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers over every channel", func(t *testing.T) {
		queue := &memQueue{}
		email := &stubSender{channel: notification.ChannelEmail}
		whatsapp := &stubSender{channel: notification.ChannelWhatsapp}
		service := NewDispatchService(queue, zap.NewNop(), email, whatsapp)

		service.Dispatch(ctx, newJob(t, notification.ChannelEmail, notification.ChannelWhatsapp))

		assert.Len(t, email.sent, 1)
		assert.Len(t, whatsapp.sent, 1)
		assert.Empty(t, queue.jobs)
	})

	t.Run("failed channels are re-queued, succeeded ones are not", func(t *testing.T) {
		queue := &memQueue{}
		email := &stubSender{channel: notification.ChannelEmail}
		whatsapp := &stubSender{channel: notification.ChannelWhatsapp, err: errors.New("gateway timeout")}
		service := NewDispatchService(queue, zap.NewNop(), email, whatsapp)

		service.Dispatch(ctx, newJob(t, notification.ChannelEmail, notification.ChannelWhatsapp))

		assert.Len(t, email.sent, 1)
		assert.Len(t, queue.jobs, 1)
		assert.Equal(t, []notification.Channel{notification.ChannelWhatsapp}, queue.jobs[0].Channels)
		assert.Equal(t, 1, queue.jobs[0].Attempts)
	})

	t.Run("jobs are dropped after the attempt cap", func(t *testing.T) {
		queue := &memQueue{}
		whatsapp := &stubSender{channel: notification.ChannelWhatsapp, err: errors.New("gateway down")}
		service := NewDispatchService(queue, zap.NewNop(), whatsapp)

		job := newJob(t, notification.ChannelWhatsapp)
		for i := 0; i < MaxAttempts; i++ {
			service.Dispatch(ctx, job)
			if len(queue.jobs) > 0 {
				job = queue.jobs[0]
				queue.jobs = queue.jobs[1:]
			}
		}

		assert.Empty(t, queue.jobs)
		assert.Equal(t, MaxAttempts, job.Attempts)
	})

	t.Run("unknown channel is skipped without retry", func(t *testing.T) {
		queue := &memQueue{}
		service := NewDispatchService(queue, zap.NewNop())

		service.Dispatch(ctx, newJob(t, notification.ChannelEmail))

		assert.Empty(t, queue.jobs)
	})
}

func TestDispatchService_RunStopsOnCancel(t *testing.T) {
	queue := &memQueue{}
	email := &stubSender{channel: notification.ChannelEmail}
	service := NewDispatchService(queue, zap.NewNop(), email)
	queue.jobs = append(queue.jobs, newJob(t, notification.ChannelEmail))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return len(email.sent) == 1 }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on context cancel")
	}
}
