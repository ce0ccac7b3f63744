package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/chart"
	"github.com/ukaji3/vizparse-go/pkg/vizparse/models"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testDataset(t *testing.T) (*models.Dataset, *models.ChartConfig) {
	t.Helper()
	ds, err := models.NewDataset([]string{"city", "pop"})
	require.NoError(t, err)
	ds.AppendRow([]models.Value{models.StringValue("A"), models.StringValue("10")})
	ds.AppendRow([]models.Value{models.StringValue("B"), models.StringValue("20")})
	cfg, ok := chart.DefaultInferrer().Infer(ds)
	require.True(t, ok)
	return ds, cfg
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(ttl, nil)
	s.now = clock.Now
	return s, clock
}

func TestCreateGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, cfg := testDataset(t)

	sess := s.Create(ds, cfg)
	require.NotEmpty(t, sess.ID)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, cfg, got.Chart)
	assert.Same(t, ds, got.Dataset)

	require.NoError(t, s.Delete(sess.ID))
	_, err = s.Get(sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(sess.ID), ErrNotFound)
}

func TestCreateWithoutChart(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, _ := testDataset(t)

	sess := s.Create(ds, nil)
	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Chart)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, cfg := testDataset(t)
	sess := s.Create(ds, cfg)

	// Mutating what was passed in or handed out does not reach the store.
	cfg.Labels[0] = "changed"
	sess.Chart.Series[0].FillColors[0] = "#000"

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Chart.Labels[0])
	assert.Equal(t, chart.DefaultPalette[0], got.Chart.Series[0].FillColors[0])
}

func TestUpdate(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, cfg := testDataset(t)
	sess := s.Create(ds, cfg)

	got, err := s.Update(sess.ID, func(_ *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error) {
		return chart.SetChartType(cfg, models.ChartPie)
	})
	require.NoError(t, err)
	assert.Equal(t, models.ChartPie, got.Chart.ChartType)

	boom := errors.New("boom")
	_, err = s.Update(sess.ID, func(*models.Dataset, *models.ChartConfig) (*models.ChartConfig, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	got, err = s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ChartPie, got.Chart.ChartType, "failed edit must not change the session")

	_, err = s.Update("missing", func(*models.Dataset, *models.ChartConfig) (*models.ChartConfig, error) {
		t.Fatal("edit called for missing session")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentUpdates(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, cfg := testDataset(t)
	sess := s.Create(ds, cfg)

	colors := []string{"#111", "#222", "#333", "#444"}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Update(sess.ID, func(_ *models.Dataset, cfg *models.ChartConfig) (*models.ChartConfig, error) {
				return chart.SetColor(cfg, 0, i%2, colors[i%len(colors)])
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Chart.Series[0].FillColors, got.Chart.Series[0].StrokeColors)
}

func TestReplace(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	ds, cfg := testDataset(t)
	sess := s.Create(ds, cfg)

	other, err := models.NewDataset([]string{"name"})
	require.NoError(t, err)

	got, err := s.Replace(sess.ID, other, nil)
	require.NoError(t, err)
	assert.Same(t, other, got.Dataset)
	assert.Nil(t, got.Chart)

	_, err = s.Replace("missing", other, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweep(t *testing.T) {
	s, clock := newTestStore(10 * time.Minute)
	ds, cfg := testDataset(t)

	idle := s.Create(ds, cfg)
	active := s.Create(ds, cfg)

	clock.Advance(6 * time.Minute)
	_, err := s.Get(active.ID)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep(clock.Now()))

	_, err = s.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(active.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestRun(t *testing.T) {
	s, clock := newTestStore(time.Minute)
	ds, cfg := testDataset(t)
	s.Create(ds, cfg)
	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx, time.Millisecond)
	}()

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
