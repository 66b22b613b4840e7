package numbering

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeSequenceRepository mimics the locked counter row: the mutex plays the
// role of the database row lock.
type fakeSequenceRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequenceRepository() *fakeSequenceRepository {
	return &fakeSequenceRepository{counters: make(map[string]int64)}
}

func (r *fakeSequenceRepository) NextValue(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters[key]++
	return r.counters[key], nil
}

func (r *fakeSequenceRepository) CurrentValue(_ context.Context, key string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[key], nil
}

func TestScope_Format(t *testing.T) {
	t.Run("sale numbers are VEN plus six digits", func(t *testing.T) {
		assert.Equal(t, "VEN000123", SaleScope().Format(123))
		assert.Equal(t, "VEN000001", SaleScope().Format(1))
	})

	t.Run("quote numbers are COT plus six digits", func(t *testing.T) {
		assert.Equal(t, "COT000042", QuoteScope().Format(42))
	})

	t.Run("order numbers embed year and month", func(t *testing.T) {
		january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, "ORD-202501-0007", OrderScope(january).Format(7))
	})
}

func TestService_Next(t *testing.T) {
	ctx := context.Background()

	t.Run("sale numbers increment without resetting", func(t *testing.T) {
		service := NewService(newFakeSequenceRepository())

		first, err := service.NextSaleNumber(ctx)
		assert.NoError(t, err)
		second, err := service.NextSaleNumber(ctx)
		assert.NoError(t, err)

		assert.Equal(t, "VEN000001", first)
		assert.Equal(t, "VEN000002", second)
	})

	t.Run("sale and quote counters are independent", func(t *testing.T) {
		service := NewService(newFakeSequenceRepository())

		sale, err := service.NextSaleNumber(ctx)
		assert.NoError(t, err)
		quote, err := service.NextQuoteNumber(ctx)
		assert.NoError(t, err)

		assert.Equal(t, "VEN000001", sale)
		assert.Equal(t, "COT000001", quote)
	})

	t.Run("order counter resets across months", func(t *testing.T) {
		service := NewService(newFakeSequenceRepository())
		january := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
		february := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

		jan1, err := service.NextOrderNumber(ctx, january)
		assert.NoError(t, err)
		jan2, err := service.NextOrderNumber(ctx, january)
		assert.NoError(t, err)
		feb1, err := service.NextOrderNumber(ctx, february)
		assert.NoError(t, err)

		assert.Equal(t, "ORD-202501-0001", jan1)
		assert.Equal(t, "ORD-202501-0002", jan2)
		assert.Equal(t, "ORD-202502-0001", feb1)
	})
}

// Issuing N numbers concurrently must yield N distinct values with no gaps.
func TestService_ConcurrentIssueNoGapsNoDuplicates(t *testing.T) {
	const n = 100
	ctx := context.Background()
	repo := newFakeSequenceRepository()
	service := NewService(repo)

	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			number, err := service.NextSaleNumber(ctx)
			assert.NoError(t, err)
			numbers[i] = number
		}(i)
	}
	wg.Wait()

	sort.Strings(numbers)
	for i := 0; i < n; i++ {
		assert.Equal(t, SaleScope().Format(int64(i+1)), numbers[i])
	}

	last, err := repo.CurrentValue(ctx, SaleScope().Key)
	assert.NoError(t, err)
	assert.Equal(t, int64(n), last)
}
