package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeUpdater) UpdateToday(context.Context) (model.PricePoint, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	p := model.PricePoint{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(50000)}
	return p, f.err == nil, f.err
}

func (f *fakeUpdater) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeReporter struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeReporter) Report(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return nil
}

func TestRunNow(t *testing.T) {
	up := &fakeUpdater{}
	rep := &fakeReporter{}
	s := NewScheduler(context.Background(), Config{DailyCron: "0 5 0 * * *"}, up, rep, nil)

	s.RunNow()

	assert.Equal(t, 1, up.count())
	require.Len(t, rep.texts, 1)
	assert.Contains(t, rep.texts[0], "Status: updated")
}

func TestRunNow_FailureIsReported(t *testing.T) {
	up := &fakeUpdater{err: errors.New("coingecko: status 429")}
	rep := &fakeReporter{}
	s := NewScheduler(context.Background(), Config{}, up, rep, nil)

	assert.NotPanics(t, s.RunNow)
	require.Len(t, rep.texts, 1)
	assert.Contains(t, rep.texts[0], "status 429")
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), Config{DailyCron: "0 5 0 * * *"}, &fakeUpdater{}, nil, nil)
	require.NoError(t, s.RegisterAll())
	assert.Len(t, s.Cron.Entries(), 1)

	bad := NewScheduler(context.Background(), Config{DailyCron: "every day"}, &fakeUpdater{}, nil, nil)
	assert.Error(t, bad.RegisterAll())
}

func TestStart_RunsEverySecond(t *testing.T) {
	up := &fakeUpdater{}
	s := NewScheduler(context.Background(), Config{DailyCron: "* * * * * *"}, up, nil, nil)
	require.NoError(t, s.RegisterAll())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return up.count() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestStart_RunOnStart(t *testing.T) {
	up := &fakeUpdater{}
	s := NewScheduler(context.Background(), Config{DailyCron: "0 5 0 * * *", RunOnStart: true}, up, nil, nil)
	require.NoError(t, s.RegisterAll())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return up.count() == 1 }, time.Second, 10*time.Millisecond)
}

type summarizingUpdater struct {
	fakeUpdater
	err error
}

func (f *summarizingUpdater) Summary(context.Context) (calculator.Summary, error) {
	if f.err != nil {
		return calculator.Summary{}, f.err
	}
	return calculator.Summary{
		Latest: model.PricePoint{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(50000)},
		High30: decimal.NewFromInt(50000),
		Low30:  decimal.NewFromInt(40000),
		RSI14:  70,
	}, nil
}

func TestRunNow_AppendsSummary(t *testing.T) {
	rep := &fakeReporter{}
	s := NewScheduler(context.Background(), Config{}, &summarizingUpdater{}, rep, nil)

	s.RunNow()
	require.Len(t, rep.texts, 1)
	assert.Contains(t, rep.texts[0], "Status: updated")
	assert.Contains(t, rep.texts[0], "Series overview")
	assert.Contains(t, rep.texts[0], "RSI(14): 70.0")
}

func TestRunNow_SummaryFailureKeepsReport(t *testing.T) {
	rep := &fakeReporter{}
	s := NewScheduler(context.Background(), Config{}, &summarizingUpdater{err: errors.New("disk")}, rep, nil)

	s.RunNow()
	require.Len(t, rep.texts, 1)
	assert.Contains(t, rep.texts[0], "Status: updated")
	assert.NotContains(t, rep.texts[0], "Series overview")
}
