package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return NewStore(gormDB, zap.NewNop()), mock
}

func TestStore_QueryScoresSince_Error(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `result`").WillReturnError(errors.New("connection reset"))

	_, err := store.QueryScoresSince(context.Background(), time.Unix(0, 0), "slack")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query results")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_QueryScoresSince_Rows(t *testing.T) {
	store, mock := setupMockStore(t)

	rows := sqlmock.NewRows([]string{"ts", "p1_name", "p1_str", "p1_rpoint", "p1_point", "p1_rank",
		"p2_name", "p2_str", "p2_rpoint", "p2_point", "p2_rank",
		"p3_name", "p3_str", "p3_rpoint", "p3_point", "p3_rank",
		"p4_name", "p4_str", "p4_rpoint", "p4_point", "p4_rank",
		"deposit", "rule_version", "origin_point", "return_point", "rank_point", "draw_split", "source"}).
		AddRow("1700000000.000100", "A", "300", 300, 50.0, 1, "B", "250", 250, 5.0, 2,
			"C", "200", 200, -40.0, 4, "D", "250", 250, -15.0, 3,
			0, "v1", 250, 300, "30,10,-10,-30", false, "slack_C01")
	mock.ExpectQuery("SELECT \\* FROM `result` WHERE playtime >= \\? AND source LIKE \\? ESCAPE '!' ORDER BY ts").
		WithArgs(sqlmock.AnyArg(), "slack!_%").
		WillReturnRows(rows)

	got, err := store.QueryScoresSince(context.Background(), time.Unix(0, 0), "slack_")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"A", "B", "C", "D"}, got[0].PlayerList())
	assert.Equal(t, []int{30, 10, -10, -30}, got[0].RankPoint)
	assert.True(t, got[0].HasValidData())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get_Error(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `result` WHERE ts = \\?").
		WillReturnError(errors.New("timeout"))

	_, err := store.Get(context.Background(), "1.0")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
