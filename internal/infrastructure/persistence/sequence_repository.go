package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/taller/backend/internal/domain/numbering"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements SequenceRepository using GORM.
// Counters are incremented under SELECT ... FOR UPDATE so concurrent callers
// serialize on the row and issued values are gap-free.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextValue atomically increments the counter for the key and returns the new
// value, creating the row at 1 on first use
func (r *GormSequenceRepository) NextValue(ctx context.Context, key string) (int64, error) {
	var next int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq numbering.Sequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&seq, "key = ?", key).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Two transactions can race to seed a new key. ON CONFLICT DO
			// NOTHING lets the loser fall through to the locked re-read of
			// the winner's row instead of failing on the unique key.
			seed := numbering.Sequence{Key: key, LastValue: 0, UpdatedAt: time.Now()}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
				return err
			}
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&seq, "key = ?", key).Error
		}
		if err != nil {
			return err
		}

		seq.LastValue++
		seq.UpdatedAt = time.Now()
		if err := tx.Model(&numbering.Sequence{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{
				"last_value": seq.LastValue,
				"updated_at": seq.UpdatedAt,
			}).Error; err != nil {
			return err
		}
		next = seq.LastValue
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// CurrentValue returns the last issued value for the key, zero if the counter
// does not exist yet
func (r *GormSequenceRepository) CurrentValue(ctx context.Context, key string) (int64, error) {
	var seq numbering.Sequence
	err := r.db.WithContext(ctx).First(&seq, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

var _ numbering.SequenceRepository = (*GormSequenceRepository)(nil)
