package logstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSet(createdAt time.Time, withAlert bool) ObservationSet {
	set := ObservationSet{
		Anomaly: AnomalyRecord{ID: "an-1", Timestamp: "2026-08-01T00:00:00Z", Value: 21500, Score: -0.22, IsAnomaly: true, CreatedAt: createdAt},
		Cluster: ClusterRecord{ID: "cl-1", Store: 12, Dept: 4, Cluster: 7, CreatedAt: createdAt},
		Risk:    RiskRecord{ID: "ri-1", Store: 12, Dept: 4, RiskScore: 70, RiskLevel: "HIGH", Anomaly: true, Cluster: 7, CreatedAt: createdAt},
	}
	if withAlert {
		set.Alert = &AlertRecord{ID: "al-1", Store: 12, Dept: 4, Message: "High risk detected", RiskScore: 70, CreatedAt: createdAt}
	}
	return set
}

func TestAppendObservationSetWritesAllKinds(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AppendObservationSet(ctx, testSet(time.Now(), true)))

	for _, kind := range Kinds() {
		n, err := s.Count(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "kind %s", kind)
	}
}

func TestAppendObservationSetWithoutAlert(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.AppendObservationSet(ctx, testSet(time.Now(), false)))

	n, err := s.Count(ctx, KindAlert)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestAppendObservationSetRejectsIncompleteSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	set := testSet(time.Now(), false)
	set.Risk.ID = ""
	err := s.AppendObservationSet(ctx, set)
	require.ErrorIs(t, err, ErrIncompleteSet)

	// Nothing from the rejected set may be visible.
	for _, kind := range Kinds() {
		n, err := s.Count(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	}
}

func TestDeleteOlderThanIsStrict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cutoff := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	old := testSet(cutoff.Add(-time.Hour), true)
	atCutoff := testSet(cutoff, true)
	fresh := testSet(cutoff.Add(time.Hour), true)
	require.NoError(t, s.AppendObservationSet(ctx, old))
	require.NoError(t, s.AppendObservationSet(ctx, atCutoff))
	require.NoError(t, s.AppendObservationSet(ctx, fresh))

	for _, kind := range Kinds() {
		deleted, err := s.DeleteOlderThan(ctx, kind, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted, "kind %s", kind)

		n, err := s.Count(ctx, kind)
		require.NoError(t, err)
		assert.Equal(t, 2, n, "records at or after cutoff must survive, kind %s", kind)
	}
}

func TestDeleteOlderThanSecondPassDeletesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	cutoff := time.Now().UTC()

	require.NoError(t, s.AppendObservationSet(ctx, testSet(cutoff.Add(-time.Hour), true)))

	for _, kind := range Kinds() {
		first, err := s.DeleteOlderThan(ctx, kind, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 1, first)

		second, err := s.DeleteOlderThan(ctx, kind, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 0, second)
	}
}

func TestAlertsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.AppendObservationSet(ctx, testSet(time.Now(), true)))

	alerts := s.Alerts()
	require.Len(t, alerts, 1)
	alerts[0].Message = "mutated"

	assert.Equal(t, "High risk detected", s.Alerts()[0].Message)
}
