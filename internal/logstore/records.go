// Package logstore persists the per-observation assessment trail: one
// anomaly, cluster, and risk record per observation, plus an alert when the
// risk level is HIGH. Records are immutable once written; the only mutation
// is age-based deletion.
package logstore

import "time"

type Kind string

const (
	KindAnomaly Kind = "anomaly"
	KindCluster Kind = "cluster"
	KindRisk    Kind = "risk"
	KindAlert   Kind = "alert"
)

// Kinds lists every record kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindAnomaly, KindCluster, KindRisk, KindAlert}
}

type AnomalyRecord struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Value     float64   `json:"value"`
	Score     float64   `json:"score"`
	IsAnomaly bool      `json:"is_anomaly"`
	CreatedAt time.Time `json:"created_at"`
}

type ClusterRecord struct {
	ID        string         `json:"id"`
	Store     int            `json:"store"`
	Dept      int            `json:"dept"`
	Cluster   int            `json:"cluster"`
	Features  map[string]any `json:"features"`
	CreatedAt time.Time      `json:"created_at"`
}

type RiskRecord struct {
	ID        string    `json:"id"`
	Store     int       `json:"store"`
	Dept      int       `json:"dept"`
	RiskScore int       `json:"risk_score"`
	RiskLevel string    `json:"risk_level"`
	Anomaly   bool      `json:"anomaly"`
	Cluster   int       `json:"cluster"`
	CreatedAt time.Time `json:"created_at"`
}

type AlertRecord struct {
	ID        string    `json:"id"`
	Store     int       `json:"store"`
	Dept      int       `json:"dept"`
	Message   string    `json:"message"`
	RiskScore int       `json:"risk_score"`
	CreatedAt time.Time `json:"created_at"`
}

// ObservationSet is the atomic unit of work for one observation. Alert is
// nil unless the observation landed at HIGH risk.
type ObservationSet struct {
	Anomaly AnomalyRecord
	Cluster ClusterRecord
	Risk    RiskRecord
	Alert   *AlertRecord
}
