package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"score-ledger/core/utils"
	"score-ledger/feature/ledger"
	"score-ledger/feature/score"

	"go.uber.org/zap"
)

var (
	// ErrNotPosting is returned when text is not a score posting.
	ErrNotPosting = errors.New("not a score posting")
	// ErrIncomplete is returned when a result lacks a name or score.
	ErrIncomplete = errors.New("incomplete score")
	// ErrDuplicate is returned when a result is already recorded under the same ts.
	ErrDuplicate = errors.New("result already recorded")
)

// Entry is a manually entered game. Either Text (a posting) or Seats must be set.
type Entry struct {
	TS          string          `json:"ts"`
	Text        string          `json:"text"`
	Seats       []score.RawSeat `json:"seats"`
	Comment     string          `json:"comment"`
	RuleVersion string          `json:"rule_version"`
}

// Service records games entered outside the chat.
type Service struct {
	store  *ledger.Store
	rules  *score.RuleContext
	set    *score.RuleSet
	source string
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service tagging results with source.
func NewService(store *ledger.Store, rules *score.RuleContext, set *score.RuleSet, source string, logger *zap.Logger) *Service {
	return &Service{store: store, rules: rules, set: set, source: source, logger: logger, now: time.Now}
}

// Calculate scores an entry without storing it.
func (s *Service) Calculate(e Entry) (*score.GameResult, error) {
	ts := e.TS
	if ts == "" {
		ts = utils.TimeTS(s.now())
	}

	var (
		result *score.GameResult
		err    error
	)
	switch {
	case len(e.Seats) > 0:
		rule := s.rules.Rule
		if e.RuleVersion != "" {
			if rule, err = s.set.Get(e.RuleVersion); err != nil {
				return nil, err
			}
		}
		fields := &score.RawFields{Comment: e.Comment, Seats: make([]score.RawSeat, len(e.Seats))}
		for i, seat := range e.Seats {
			fields.Seats[i] = score.RawSeat{Name: s.rules.Names.Normalize(seat.Name), Input: seat.Input}
		}
		if result, err = score.Calc(fields, rule); err != nil {
			return nil, err
		}
		result.TS = ts
		result.Source = s.source
	default:
		var ok bool
		result, ok, err = s.rules.Score(ts, e.Text, s.source)
		if !ok {
			return nil, ErrNotPosting
		}
		if err != nil {
			return nil, err
		}
	}

	if !result.HasValidData() {
		return nil, ErrIncomplete
	}
	return result, nil
}

// Record scores an entry and stores it.
func (s *Service) Record(ctx context.Context, e Entry) (*score.GameResult, error) {
	result, err := s.Calculate(e)
	if err != nil {
		return nil, err
	}
	ok, err := s.store.Insert(ctx, result)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicate, result.TS)
	}
	return result, nil
}

// List returns the results recorded since after.
func (s *Service) List(ctx context.Context, after time.Time, sourcePrefix string) ([]*score.GameResult, error) {
	return s.store.QueryScoresSince(ctx, after, sourcePrefix)
}

// Get returns one result.
func (s *Service) Get(ctx context.Context, ts string) (*score.GameResult, error) {
	return s.store.Get(ctx, ts)
}

// Delete removes a result with its remarks.
func (s *Service) Delete(ctx context.Context, ts string) ([]string, error) {
	return s.store.Delete(ctx, ts)
}

// AddRemarks attaches the remarks in text, or pairs when text is empty, to the game at ts.
// Remarks naming a player who did not sit at the game are dropped.
func (s *Service) AddRemarks(ctx context.Context, ts, text string, pairs []score.RemarkPair) (int, error) {
	if text != "" {
		pairs = s.rules.Remarks(text)
	}
	eventTS := utils.TimeTS(s.now())

	remarks := make([]score.Remark, 0, len(pairs))
	for _, p := range pairs {
		remarks = append(remarks, score.Remark{
			ThreadTS: ts,
			EventTS:  eventTS,
			Name:     s.rules.Names.Normalize(p.Name),
			Matter:   p.Matter,
			Source:   s.source,
		})
	}
	if _, err := s.store.Get(ctx, ts); err != nil {
		return 0, err
	}
	return s.store.RemarkInsert(ctx, remarks)
}
