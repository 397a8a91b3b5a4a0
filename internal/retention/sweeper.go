// Package retention deletes assessment logs past a configured age. The
// sweep runs once at startup and whenever an operator triggers the cleanup
// endpoint; it is idempotent and safe alongside live ingestion because the
// cutoff is always in the past.
package retention

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/organ-c/storepulse/internal/logstore"
	"github.com/organ-c/storepulse/internal/metrics"
)

const DefaultRetentionDays = 7

// Report summarizes one sweep. Errors carries per-kind delete failures;
// they are advisory and never fail the sweep itself.
type Report struct {
	AnomalyDeleted int       `json:"anomaly_logs_deleted"`
	ClusterDeleted int       `json:"cluster_logs_deleted"`
	RiskDeleted    int       `json:"risk_logs_deleted"`
	AlertsDeleted  int       `json:"alerts_deleted"`
	Cutoff         time.Time `json:"cutoff_date"`
	Errors         []string  `json:"errors,omitempty"`
}

func (r Report) TotalDeleted() int {
	return r.AnomalyDeleted + r.ClusterDeleted + r.RiskDeleted + r.AlertsDeleted
}

type Sweeper struct {
	store  logstore.Store
	logger *zap.Logger
	// now is swappable for tests.
	now func() time.Time
}

func NewSweeper(store logstore.Store, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Sweep deletes records of every kind created strictly before
// now - retentionDays. A non-positive retentionDays falls back to the
// default.
func (s *Sweeper) Sweep(ctx context.Context, retentionDays int) Report {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.now().AddDate(0, 0, -retentionDays)
	report := Report{Cutoff: cutoff}

	for _, kind := range logstore.Kinds() {
		n, err := s.store.DeleteOlderThan(ctx, kind, cutoff)
		if err != nil {
			s.logger.Error("retention delete failed",
				zap.String("kind", string(kind)),
				zap.Error(err))
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", kind, err))
			continue
		}
		metrics.LogsDeletedTotal.WithLabelValues(string(kind)).Add(float64(n))
		switch kind {
		case logstore.KindAnomaly:
			report.AnomalyDeleted = n
		case logstore.KindCluster:
			report.ClusterDeleted = n
		case logstore.KindRisk:
			report.RiskDeleted = n
		case logstore.KindAlert:
			report.AlertsDeleted = n
		}
	}

	if total := report.TotalDeleted(); total > 0 {
		s.logger.Info("cleaned up old log entries",
			zap.Int("deleted", total),
			zap.Int("retention_days", retentionDays),
			zap.Time("cutoff", cutoff))
	}
	return report
}

// Counts reports the current number of records per kind. Failures for one
// kind do not hide the others.
func (s *Sweeper) Counts(ctx context.Context) (map[logstore.Kind]int, error) {
	out := make(map[logstore.Kind]int, 4)
	for _, kind := range logstore.Kinds() {
		n, err := s.store.Count(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", kind, err)
		}
		out[kind] = n
	}
	return out, nil
}
