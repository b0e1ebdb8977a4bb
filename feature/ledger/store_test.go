package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"score-ledger/feature/score"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestStore creates an in-memory SQLite ledger for testing
func setupTestStore(t *testing.T) *Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	store := NewStore(db, zap.NewNop())
	require.NoError(t, store.AutoMigrate(context.Background()))
	return store
}

func newResult(t *testing.T, ts, source string, raw ...string) *score.GameResult {
	f := &score.RawFields{}
	for i, r := range raw {
		f.Seats = append(f.Seats, score.RawSeat{Name: string(rune('A' + i)), Input: r})
	}
	rule := score.DefaultRule(4)
	rule.Version = "v1"
	g, err := score.Calc(f, rule)
	require.NoError(t, err)
	g.TS = ts
	g.Source = source
	return g
}

func TestStore_InsertGet(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	g := newResult(t, "1700000000.000100", "slack_C01", "300", "250", "200", "250")
	g.Comment = "東風"

	ok, err := store.Insert(ctx, g)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	// duplicate keys never overwrite
	dup := newResult(t, g.TS, "slack_C01", "100", "300", "300", "300")
	ok, err = store.Insert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = store.Get(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, "300", got.Seats[0].RawInput)

	_, err = store.Get(ctx, "1.0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Update(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	g := newResult(t, "1700000000.000100", "slack_C01", "300", "250", "200", "250")
	_, err := store.Insert(ctx, g)
	require.NoError(t, err)

	g.Seats[2].RawInput = "260"
	g.Seats[3].RawInput = "190"
	require.NoError(t, store.Update(ctx, g))

	got, err := store.Get(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, 260, got.Seats[2].RawPoints)
	assert.Equal(t, 2, got.Seats[2].Rank)
	assert.Equal(t, 4, got.Seats[3].Rank)

	missing := newResult(t, "1.0", "slack_C01", "300", "250", "200", "250")
	assert.ErrorIs(t, store.Update(ctx, missing), ErrNotFound)

	bad := newResult(t, g.TS, "slack_C01", "300", "250", "200", "250")
	bad.Seats[0].RawInput = "3-"
	assert.ErrorIs(t, store.Update(ctx, bad), score.ErrEvaluation)
}

func TestStore_DeleteCascadesRemarks(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	g := newResult(t, "1700000000.000100", "slack_C01", "300", "250", "200", "250")
	_, err := store.Insert(ctx, g)
	require.NoError(t, err)

	n, err := store.RemarkInsert(ctx, []score.Remark{
		{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "A", Matter: "役満", Source: "slack_C01"},
		{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "B", Matter: "焼き鳥", Source: "slack_C01"},
		{ThreadTS: g.TS, EventTS: "1700000200.000001", Name: "C", Matter: "流局", Source: "slack_C01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	removed, err := store.Delete(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, []string{"1700000100.000001", "1700000200.000001"}, removed)

	_, err = store.Get(ctx, g.TS)
	assert.ErrorIs(t, err, ErrNotFound)

	remarks, err := store.QueryRemarksSince(ctx, time.Unix(0, 0), "slack")
	require.NoError(t, err)
	assert.Empty(t, remarks)

	_, err = store.Delete(ctx, g.TS)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_QuerySince(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, g := range []*score.GameResult{
		newResult(t, "1700000000.000000", "slack_C01", "300", "250", "200", "250"),
		newResult(t, "1700090000.000000", "slack_C01", "250", "250", "250", "250"),
		newResult(t, "1700090000.500000", "slackXC01", "250", "250", "250", "250"),
		newResult(t, "1700090001.000000", "discord_1", "250", "250", "250", "250"),
	} {
		_, err := store.Insert(ctx, g)
		require.NoError(t, err)
	}

	got, err := store.QueryScoresSince(ctx, time.Unix(1700050000, 0), "slack_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1700090000.000000", got[0].TS)

	got, err = store.QueryScoresSince(ctx, time.Unix(0, 0), "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestStore_RemarkInsertValidation(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	g := newResult(t, "1700000000.000100", "slack_C01", "300", "250", "200", "250")
	_, err := store.Insert(ctx, g)
	require.NoError(t, err)

	incomplete := newResult(t, "1700000001.000100", "slack_C01", "300", "250", "200", "250")
	incomplete.Seats[3].Name = ""
	require.NoError(t, incomplete.Calc())
	_, err = store.Insert(ctx, incomplete)
	require.NoError(t, err)

	n, err := store.RemarkInsert(ctx, []score.Remark{
		{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "A", Matter: "役満", Source: "slack_C01"},
		{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "A", Matter: "役満", Source: "slack_C01"},
		{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "Z", Matter: "見学", Source: "slack_C01"},
		{ThreadTS: "1.000000", EventTS: "1700000100.000002", Name: "A", Matter: "迷子", Source: "slack_C01"},
		{ThreadTS: incomplete.TS, EventTS: "1700000100.000003", Name: "A", Matter: "途中", Source: "slack_C01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remarks, err := store.QueryRemarksSince(ctx, time.Unix(0, 0), "slack_C01")
	require.NoError(t, err)
	assert.Equal(t, []score.Remark{{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "A", Matter: "役満", Source: "slack_C01"}}, remarks)
}

func TestStore_RemarkDeletes(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	g := newResult(t, "1700000000.000100", "slack_C01", "300", "250", "200", "250")
	_, err := store.Insert(ctx, g)
	require.NoError(t, err)

	a := score.Remark{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "A", Matter: "役満", Source: "slack_C01"}
	b := score.Remark{ThreadTS: g.TS, EventTS: "1700000100.000001", Name: "B", Matter: "焼き鳥", Source: "slack_C01"}
	c := score.Remark{ThreadTS: g.TS, EventTS: "1700000200.000001", Name: "C", Matter: "流局", Source: "slack_C01"}
	_, err = store.RemarkInsert(ctx, []score.Remark{a, b, c})
	require.NoError(t, err)

	remaining, err := store.RemarkDeleteExact(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), remaining)

	remaining, err = store.RemarkDeleteExact(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)

	n, err := store.RemarkDeleteOne(ctx, c.EventTS)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stored, err := store.ReplaceThreadRemarks(ctx, g.TS, []score.Remark{a, c})
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	n, err = store.RemarkDeleteByThread(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestStore_ThreePlayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	f := &score.RawFields{Seats: []score.RawSeat{{Name: "A", Input: "400"}, {Name: "B", Input: "350"}, {Name: "C", Input: "300"}}}
	g, err := score.Calc(f, score.DefaultRule(3))
	require.NoError(t, err)
	g.TS = "1700000000.000100"
	g.Source = "slack_C01"

	_, err = store.Insert(ctx, g)
	require.NoError(t, err)

	got, err := store.Get(ctx, g.TS)
	require.NoError(t, err)
	assert.Equal(t, g, got)
}
