package comparison

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"score-ledger/core/metrics"
	"score-ledger/core/storage/mocks"
	"score-ledger/core/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestService_RunRecordsMetricsAndArchives(t *testing.T) {
	cfg := testConfig()
	cfg.ArchiveReports = true
	env := setupEngine(t, cfg)
	env.chat.scores = []ScorePost{post(gameTS, "御無礼 A300 B250 C200 D250")}

	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, "ledger", mock.MatchedBy(func(name string) bool {
		return strings.HasPrefix(name, "reports/"+source+"/") && strings.HasSuffix(name, ".json")
	}), mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, nil).Once()

	m := metrics.New()
	svc := NewService(env.engine, client, "ledger", m, zap.NewNop())

	_, _, ok := svc.Last(false)
	assert.False(t, ok)

	report, shared, err := svc.Run(context.Background(), sweepAfter, false)
	require.NoError(t, err)
	assert.False(t, shared)
	assert.NotEmpty(t, report.SweepID)
	assert.Len(t, report.Missing, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sweeps.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues(BucketMissing)))
	client.AssertExpectations(t)

	last, _, ok := svc.Last(false)
	require.True(t, ok)
	assert.Equal(t, report.SweepID, last.SweepID)
}

func TestService_RunFetchError(t *testing.T) {
	env := setupEngine(t, testConfig())
	env.chat.err = errors.New("timeout")
	m := metrics.New()
	svc := NewService(env.engine, nil, "", m, zap.NewNop())

	_, _, err := svc.Run(context.Background(), sweepAfter, true)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sweeps.WithLabelValues("error")))
}

type blockingChat struct {
	*fakeChat
	started chan struct{}
	release chan struct{}
}

func (b *blockingChat) FetchScorePosts(ctx context.Context, after time.Time) ([]ScorePost, error) {
	close(b.started)
	<-b.release
	return b.fakeChat.FetchScorePosts(ctx, after)
}

func TestService_RunOtherWindowBusy(t *testing.T) {
	env := setupEngine(t, testConfig())
	chat := &blockingChat{fakeChat: env.chat, started: make(chan struct{}), release: make(chan struct{})}
	engine := NewEngine(env.rules, env.store, chat, env.feedback, testConfig(), zap.NewNop()).
		WithClock(func() time.Time { return utils.TSTime(nowTS) })
	svc := NewService(engine, nil, "", metrics.New(), zap.NewNop())

	done := make(chan error, 1)
	go func() {
		_, _, err := svc.Run(context.Background(), sweepAfter, true)
		done <- err
	}()
	<-chat.started

	_, _, err := svc.Run(context.Background(), sweepAfter.Add(-30*24*time.Hour), true)
	assert.ErrorIs(t, err, ErrBusy)

	close(chat.release)
	require.NoError(t, <-done)

	report, _, ok := svc.Last(true)
	require.True(t, ok)
	assert.True(t, report.After.Equal(sweepAfter))
}

func TestInstrumentFeedback(t *testing.T) {
	m := metrics.New()
	rec := &recordingFeedback{}
	port := InstrumentFeedback(rec, m)

	require.NoError(t, port.AddReaction(context.Background(), "ok_hand", channel, gameTS))
	require.NoError(t, port.RemoveReaction(context.Background(), "ng", channel, gameTS))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Feedback.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Feedback.WithLabelValues("remove")))
	assert.Len(t, rec.take(), 2)
}

func setupHandler(t *testing.T) (*fiber.App, *testEnv) {
	env := setupEngine(t, testConfig())
	svc := NewService(env.engine, nil, "", metrics.New(), zap.NewNop())
	feature := NewFeature(svc, NewHandler(svc, zap.NewNop()), true)
	require.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, env
}

func TestHandler_Sweep(t *testing.T) {
	app, env := setupHandler(t)
	env.chat.scores = []ScorePost{post(gameTS, "御無礼 A300 B250 C200 D250")}

	resp, err := app.Test(httptest.NewRequest("GET", "/comparison/last", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/comparison?dry_run=true&after=30", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"dry_run":true`)
	assert.Contains(t, string(body), gameTS)

	resp, err = app.Test(httptest.NewRequest("GET", "/comparison/last?dry_run=true&format=text", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "取りこぼし：1件")
}

func TestHandler_SweepErrors(t *testing.T) {
	app, env := setupHandler(t)

	resp, err := app.Test(httptest.NewRequest("POST", "/comparison?after=-1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	env.chat.err = errors.New("down")
	resp, err = app.Test(httptest.NewRequest("POST", "/comparison", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
