// Package ingest orchestrates one observation end to end: score it, derive
// its risk, persist the assessment trail, then notify live subscribers.
// Persistence strictly precedes broadcast.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/organ-c/storepulse/internal/logstore"
	"github.com/organ-c/storepulse/internal/metrics"
	"github.com/organ-c/storepulse/internal/notify"
	"github.com/organ-c/storepulse/internal/observation"
	"github.com/organ-c/storepulse/internal/oracle"
	"github.com/organ-c/storepulse/internal/risk"
	"github.com/organ-c/storepulse/internal/wire"
)

const alertMessage = "High risk detected from IoT update"

// Broadcaster is the slice of the subscriber registry the pipeline needs.
type Broadcaster interface {
	Broadcast(msg any)
}

// Summary is returned to the ingest caller whether or not any subscriber
// was live to receive the broadcast.
type Summary struct {
	IsAnomaly    bool    `json:"anomaly_detected"`
	AnomalyScore float64 `json:"anomaly_score"`
	Cluster      int     `json:"cluster"`
	RiskScore    int     `json:"risk_score"`
	RiskLevel    string  `json:"risk_level"`
}

type Pipeline struct {
	Oracle      oracle.Oracle
	Evaluator   *risk.Evaluator
	Store       logstore.Store
	Broadcaster Broadcaster
	Webhook     notify.AlertWebhook
	Logger      *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewPipeline(o oracle.Oracle, ev *risk.Evaluator, store logstore.Store, b Broadcaster, wh notify.AlertWebhook, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		Oracle:      o,
		Evaluator:   ev,
		Store:       store,
		Broadcaster: b,
		Webhook:     wh,
		Logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Process runs one observation through the full pipeline. Distinct
// observations may be processed concurrently; there is no ordering
// guarantee across them.
func (p *Pipeline) Process(ctx context.Context, obs observation.Observation) (Summary, error) {
	assessment, err := p.Oracle.Assess(ctx, obs)
	if err != nil {
		metrics.ObservationsTotal.WithLabelValues("oracle_error").Inc()
		p.Logger.Error("anomaly assessment failed",
			zap.Int("store", obs.Store), zap.Int("dept", obs.Dept), zap.Error(err))
		return Summary{}, &OracleError{Err: err}
	}

	clusterID, err := p.Oracle.Cluster(ctx, obs)
	if err != nil {
		metrics.ObservationsTotal.WithLabelValues("oracle_error").Inc()
		p.Logger.Error("cluster assignment failed",
			zap.Int("store", obs.Store), zap.Int("dept", obs.Dept), zap.Error(err))
		return Summary{}, &OracleError{Err: err}
	}

	result := p.Evaluator.Evaluate(assessment, clusterID)
	now := p.now()

	set := logstore.ObservationSet{
		Anomaly: logstore.AnomalyRecord{
			ID:        uuid.NewString(),
			Timestamp: obs.Timestamp,
			Value:     obs.WeeklySales,
			Score:     assessment.Score,
			IsAnomaly: assessment.IsAnomaly,
			CreatedAt: now,
		},
		Cluster: logstore.ClusterRecord{
			ID:        uuid.NewString(),
			Store:     obs.Store,
			Dept:      obs.Dept,
			Cluster:   clusterID,
			Features:  obs.FeatureMap(),
			CreatedAt: now,
		},
		Risk: logstore.RiskRecord{
			ID:        uuid.NewString(),
			Store:     obs.Store,
			Dept:      obs.Dept,
			RiskScore: result.Score,
			RiskLevel: string(result.Level),
			Anomaly:   assessment.IsAnomaly,
			Cluster:   clusterID,
			CreatedAt: now,
		},
	}
	if result.Level == risk.LevelHigh {
		set.Alert = &logstore.AlertRecord{
			ID:        uuid.NewString(),
			Store:     obs.Store,
			Dept:      obs.Dept,
			Message:   alertMessage,
			RiskScore: result.Score,
			CreatedAt: now,
		}
	}

	if err := p.Store.AppendObservationSet(ctx, set); err != nil {
		metrics.ObservationsTotal.WithLabelValues("persistence_error").Inc()
		p.Logger.Error("observation log write failed",
			zap.Int("store", obs.Store), zap.Int("dept", obs.Dept), zap.Error(err))
		return Summary{}, &PersistenceError{Err: err}
	}

	// The write set is durable; subscribers may now hear about it.
	p.Broadcaster.Broadcast(wire.NewIoTUpdate(
		wire.UpdateData{
			Store:       obs.Store,
			Dept:        obs.Dept,
			WeeklySales: obs.WeeklySales,
			Temperature: obs.Temperature,
			IsHoliday:   obs.IsHoliday,
		},
		wire.UpdateAnalysis{
			AnomalyDetected: assessment.IsAnomaly,
			AnomalyScore:    assessment.Score,
			RiskLevel:       string(result.Level),
			RiskScore:       result.Score,
			Cluster:         clusterID,
		},
	))

	if set.Alert != nil {
		metrics.AlertsTotal.Inc()
		p.Broadcaster.Broadcast(wire.NewAlert(obs.Store, obs.Dept, alertMessage, result.Score))
		p.Logger.Warn("high risk alert",
			zap.Int("store", obs.Store),
			zap.Int("dept", obs.Dept),
			zap.Int("risk_score", result.Score))
		if p.Webhook.Enabled() {
			payload := notify.AlertPayload{
				Store:     obs.Store,
				Dept:      obs.Dept,
				Message:   alertMessage,
				RiskScore: result.Score,
				RiskLevel: string(result.Level),
				CreatedAt: now.Format(time.RFC3339),
			}
			if err := p.Webhook.Send(ctx, payload); err != nil {
				p.Logger.Warn("alert webhook delivery failed", zap.Error(err))
			}
		}
	}

	metrics.ObservationsTotal.WithLabelValues("success").Inc()
	return Summary{
		IsAnomaly:    assessment.IsAnomaly,
		AnomalyScore: assessment.Score,
		Cluster:      clusterID,
		RiskScore:    result.Score,
		RiskLevel:    string(result.Level),
	}, nil
}
