package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"score-ledger/feature/score"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no game result exists for a timestamp.
var ErrNotFound = errors.New("game result not found")

// Store is the gorm backed score ledger. Every write is its own transaction.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store on db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// AutoMigrate creates or extends the result and remarks tables.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ResultRow{}, &RemarkRow{}); err != nil {
		return fmt.Errorf("failed to migrate ledger tables: %w", err)
	}
	return nil
}

// Get loads the game result stored under ts.
func (s *Store) Get(ctx context.Context, ts string) (*score.GameResult, error) {
	var row ResultRow
	err := s.db.WithContext(ctx).Where("ts = ?", ts).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ts)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load result %s: %w", ts, err)
	}
	return row.toGameResult(), nil
}

// Insert stores a new game result. A result already stored under the same ts is
// left untouched and Insert reports false.
func (s *Store) Insert(ctx context.Context, g *score.GameResult) (bool, error) {
	if g.TS == "" {
		return false, errors.New("game result has no timestamp")
	}
	row := toResultRow(g)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert result %s: %w", g.TS, res.Error)
	}
	if res.RowsAffected == 0 {
		s.logger.Warn("Result already recorded, insert skipped", zap.String("ts", g.TS))
		return false, nil
	}
	s.logger.Info("Result inserted", zap.String("ts", g.TS), zap.String("score", g.ToText(score.TextSimple)))
	return true, nil
}

// Update recalculates g and replaces the stored result with it.
func (s *Store) Update(ctx context.Context, g *score.GameResult) error {
	if err := g.Calc(); err != nil {
		return err
	}
	row := toResultRow(g)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ResultRow{}).Where("ts = ?", g.TS).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, g.TS)
		}
		return tx.Model(&ResultRow{}).Where("ts = ?", g.TS).Select("*").Omit("ts").Updates(&row).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update result %s: %w", g.TS, err)
	}
	s.logger.Info("Result updated", zap.String("ts", g.TS), zap.String("score", g.ToText(score.TextSimple)))
	return nil
}

// Delete removes the result stored under ts together with its remarks and returns
// the event timestamps of the removed remarks.
func (s *Store) Delete(ctx context.Context, ts string) ([]string, error) {
	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []string
		if err := tx.Model(&RemarkRow{}).Where("thread_ts = ?", ts).Distinct().Pluck("event_ts", &events).Error; err != nil {
			return err
		}
		if err := tx.Where("thread_ts = ?", ts).Delete(&RemarkRow{}).Error; err != nil {
			return err
		}
		res := tx.Where("ts = ?", ts).Delete(&ResultRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 && len(events) == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, ts)
		}
		removed = events
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete result %s: %w", ts, err)
	}
	sort.Strings(removed)
	s.logger.Info("Result deleted", zap.String("ts", ts), zap.Strings("remarks", removed))
	return removed, nil
}

// QueryScoresSince lists results played at or after after whose source starts with sourcePrefix.
func (s *Store) QueryScoresSince(ctx context.Context, after time.Time, sourcePrefix string) ([]*score.GameResult, error) {
	var rows []ResultRow
	err := s.db.WithContext(ctx).
		Where("playtime >= ?", after.UTC()).
		Where("source LIKE ? ESCAPE '!'", prefixPattern(sourcePrefix)).
		Order("ts").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}

	out := make([]*score.GameResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toGameResult())
	}
	return out, nil
}

// QueryRemarksSince lists remarks attached to games played at or after after.
func (s *Store) QueryRemarksSince(ctx context.Context, after time.Time, sourcePrefix string) ([]score.Remark, error) {
	var rows []RemarkRow
	err := s.db.WithContext(ctx).
		Where("playtime >= ?", after.UTC()).
		Where("source LIKE ? ESCAPE '!'", prefixPattern(sourcePrefix)).
		Order("thread_ts, event_ts, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query remarks: %w", err)
	}

	out := make([]score.Remark, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRemark())
	}
	return out, nil
}

// RemarkInsert stores remarks whose game exists, is complete and seats the named
// player. Other remarks and exact duplicates are skipped. It returns the number stored.
func (s *Store) RemarkInsert(ctx context.Context, remarks []score.Remark) (int, error) {
	inserted := 0
	for _, r := range remarks {
		ok, err := s.insertRemark(ctx, r)
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func (s *Store) insertRemark(ctx context.Context, r score.Remark) (bool, error) {
	parent, err := s.Get(ctx, r.ThreadTS)
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("Remark skipped, game not recorded", zap.String("thread_ts", r.ThreadTS), zap.String("event_ts", r.EventTS))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !parent.HasValidData() || !parent.HasPlayer(r.Name) {
		s.logger.Warn("Remark skipped, player not seated", zap.String("thread_ts", r.ThreadTS), zap.String("name", r.Name))
		return false, nil
	}

	var count int64
	err = s.db.WithContext(ctx).Model(&RemarkRow{}).
		Where("thread_ts = ? AND event_ts = ? AND name = ? AND matter = ?", r.ThreadTS, r.EventTS, r.Name, r.Matter).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check remark: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	row := toRemarkRow(r)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return false, fmt.Errorf("failed to insert remark: %w", err)
	}
	s.logger.Info("Remark inserted", zap.String("thread_ts", r.ThreadTS), zap.String("name", r.Name), zap.String("matter", r.Matter))
	return true, nil
}

// RemarkDeleteByThread removes every remark attached to the game at threadTS.
func (s *Store) RemarkDeleteByThread(ctx context.Context, threadTS string) (int64, error) {
	res := s.db.WithContext(ctx).Where("thread_ts = ?", threadTS).Delete(&RemarkRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete remarks of %s: %w", threadTS, res.Error)
	}
	return res.RowsAffected, nil
}

// RemarkDeleteOne removes every remark recorded from the posting eventTS.
func (s *Store) RemarkDeleteOne(ctx context.Context, eventTS string) (int64, error) {
	res := s.db.WithContext(ctx).Where("event_ts = ?", eventTS).Delete(&RemarkRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete remarks of posting %s: %w", eventTS, res.Error)
	}
	return res.RowsAffected, nil
}

// RemarkDeleteExact removes the remark matching r field for field and returns how many
// remarks from the same posting remain.
func (s *Store) RemarkDeleteExact(ctx context.Context, r score.Remark) (int64, error) {
	var remaining int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("thread_ts = ? AND event_ts = ? AND name = ? AND matter = ?", r.ThreadTS, r.EventTS, r.Name, r.Matter).
			Delete(&RemarkRow{}).Error
		if err != nil {
			return err
		}
		return tx.Model(&RemarkRow{}).Where("event_ts = ?", r.EventTS).Count(&remaining).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete remark: %w", err)
	}
	return remaining, nil
}

// ReplaceThreadRemarks swaps every remark of the game at threadTS for remarks.
// Remarks that fail the seat check are dropped. It returns the number stored.
func (s *Store) ReplaceThreadRemarks(ctx context.Context, threadTS string, remarks []score.Remark) (int, error) {
	if _, err := s.RemarkDeleteByThread(ctx, threadTS); err != nil {
		return 0, err
	}
	return s.RemarkInsert(ctx, remarks)
}
