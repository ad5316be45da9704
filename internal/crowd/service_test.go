package crowd

import (
	"context"
	"errors"
	"testing"
	"time"

	"darshan/internal/notifications"
	"darshan/internal/shared/apperrors"
	"darshan/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	readings []CrowdReading
	nextID   int64
}

func (r *fakeRepo) Create(ctx context.Context, reading *CrowdReading) error {
	r.nextID++
	reading.ID = r.nextID
	r.readings = append(r.readings, *reading)
	return nil
}

func (r *fakeRepo) GetCurrent(ctx context.Context, templeID string) (*CrowdReading, error) {
	var current *CrowdReading
	for i := range r.readings {
		reading := r.readings[i]
		if reading.TempleID != templeID {
			continue
		}
		if current == nil ||
			reading.RecordedAt.After(current.RecordedAt) ||
			(reading.RecordedAt.Equal(current.RecordedAt) && reading.ID > current.ID) {
			current = &reading
		}
	}
	if current == nil {
		return nil, nil
	}
	copied := *current
	return &copied, nil
}

func (r *fakeRepo) GetHistory(ctx context.Context, templeID string, since time.Time, limit int) ([]CrowdReading, error) {
	var out []CrowdReading
	for _, reading := range r.readings {
		if reading.TempleID == templeID && !reading.RecordedAt.Before(since) {
			out = append(out, reading)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeRepo) AverageCount(ctx context.Context, templeID string, since time.Time) (float64, error) {
	var sum, n int
	for _, reading := range r.readings {
		if reading.TempleID == templeID && !reading.RecordedAt.Before(since) {
			sum += reading.Count
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type captureDispatcher struct {
	sent []notifications.Notification
}

func (d *captureDispatcher) Dispatch(ctx context.Context, n notifications.Notification) {
	d.sent = append(d.sent, n)
}

func (d *captureDispatcher) Close() error { return nil }

func newTestService() (Service, *fakeRepo, *captureDispatcher) {
	repo := &fakeRepo{}
	dispatcher := &captureDispatcher{}
	svc := NewService(repo, nil, dispatcher, logger.New(), time.Minute)
	return svc, repo, dispatcher
}

func TestLevelForCount(t *testing.T) {
	assert.Equal(t, LevelLow, LevelForCount(1000, 5000))
	assert.Equal(t, LevelModerate, LevelForCount(2500, 5000))
	assert.Equal(t, LevelHigh, LevelForCount(4000, 5000))
	assert.Equal(t, LevelHigh, LevelForCount(9000, 5000))
}

func TestRecordReadingDerivesLevel(t *testing.T) {
	svc, _, _ := newTestService()

	reading, err := svc.RecordReading(context.Background(), "somnath", RecordReadingRequest{Count: 1000})
	require.NoError(t, err)
	assert.Equal(t, LevelLow, reading.Level)
	assert.Equal(t, SourceStaff, reading.Source)
	assert.False(t, reading.RecordedAt.IsZero())

	// somnath capacity is 8000
	require.NotNil(t, reading.CapacityPercentage)
	assert.InDelta(t, 12.5, *reading.CapacityPercentage, 0.001)
}

func TestRecordReadingCapacityPercentageClamped(t *testing.T) {
	svc, _, _ := newTestService()

	reading, err := svc.RecordReading(context.Background(), "pavagadh", RecordReadingRequest{Count: 10000})
	require.NoError(t, err)
	require.NotNil(t, reading.CapacityPercentage)
	assert.Equal(t, 100.0, *reading.CapacityPercentage)
}

func TestRecordReadingNegativeCountRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RecordReading(context.Background(), "somnath", RecordReadingRequest{Count: -5})
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestRecordReadingHighLevelDispatchesAlert(t *testing.T) {
	svc, _, dispatcher := newTestService()

	// somnath capacity is 8000, so 7500 buckets as high
	_, err := svc.RecordReading(context.Background(), "somnath", RecordReadingRequest{Count: 7500})
	require.NoError(t, err)

	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, notifications.TypeCrowdAlert, dispatcher.sent[0].Type)
	assert.Equal(t, notifications.PriorityHigh, dispatcher.sent[0].Priority)

	// A moderate reading does not alert
	_, err = svc.RecordReading(context.Background(), "somnath", RecordReadingRequest{Count: 4000})
	require.NoError(t, err)
	assert.Len(t, dispatcher.sent, 1)
}

func TestGetCurrentNilWhenNoReadings(t *testing.T) {
	svc, _, _ := newTestService()

	resp, err := svc.GetCurrent(context.Background(), "dwarka")
	require.NoError(t, err)
	assert.Equal(t, "dwarka", resp.TempleID)
	assert.Nil(t, resp.Current)
}

func TestGetCurrentPicksLatestWithIDTiebreak(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	ts := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &CrowdReading{TempleID: "ambaji", Count: 100, Level: LevelLow, Source: SourceStaff, RecordedAt: ts}))
	require.NoError(t, repo.Create(ctx, &CrowdReading{TempleID: "ambaji", Count: 900, Level: LevelLow, Source: SourceSensor, RecordedAt: ts}))
	require.NoError(t, repo.Create(ctx, &CrowdReading{TempleID: "ambaji", Count: 50, Level: LevelLow, Source: SourceStaff, RecordedAt: ts.Add(-time.Hour)}))

	resp, err := svc.GetCurrent(ctx, "ambaji")
	require.NoError(t, err)
	require.NotNil(t, resp.Current)

	// Same recorded_at: the higher id wins
	assert.Equal(t, 900, resp.Current.Count)
}

func TestGetPredictionsDeterministic(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.GetPredictions(ctx, "somnath", 5)
	require.NoError(t, err)
	second, err := svc.GetPredictions(ctx, "somnath", 5)
	require.NoError(t, err)

	assert.Equal(t, first.Predictions, second.Predictions)
	assert.Len(t, first.Predictions, 5)
}

func TestGetPredictionsTooFarRejected(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetPredictions(context.Background(), "somnath", 10)
	var verr *apperrors.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPredictShape(t *testing.T) {
	from := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC) // a Friday

	predictions := Predict("somnath", 2000, from, 7)
	require.Len(t, predictions, 7)

	prev := ""
	for _, p := range predictions {
		assert.Greater(t, p.Confidence, 0.0)
		assert.Less(t, p.Confidence, 1.0)
		assert.True(t, p.Date > prev, "dates must ascend")
		assert.True(t, p.PredictedLevel.IsValid())
		assert.LessOrEqual(t, p.PredictedCount, CapacityFor("somnath"))
		prev = p.Date
	}

	// Saturday and Sunday run above the Friday baseline
	assert.Greater(t, predictions[0].PredictedCount, 2000) // Saturday
	assert.Greater(t, predictions[1].PredictedCount, 2000) // Sunday
}

func TestPredictNoHistoryUsesBaseline(t *testing.T) {
	from := time.Date(2026, 4, 12, 0, 0, 0, 0, time.UTC) // a Sunday

	predictions := Predict("pavagadh", 0, from, 1)
	require.Len(t, predictions, 1)
	// Monday forecast: 35% of pavagadh's 4000 capacity at factor 1.0
	assert.Equal(t, 1400, predictions[0].PredictedCount)
}
