package logstore

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps records in per-kind slices behind one mutex. The single
// critical section in AppendObservationSet is what makes the write set
// atomic relative to concurrent sweeps and counts.
type MemoryStore struct {
	mu      sync.RWMutex
	anomaly []AnomalyRecord
	cluster []ClusterRecord
	risk    []RiskRecord
	alerts  []AlertRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AppendObservationSet(_ context.Context, set ObservationSet) error {
	if err := validateSet(set); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomaly = append(s.anomaly, set.Anomaly)
	s.cluster = append(s.cluster, set.Cluster)
	s.risk = append(s.risk, set.Risk)
	if set.Alert != nil {
		s.alerts = append(s.alerts, *set.Alert)
	}
	return nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, kind Kind, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindAnomaly:
		kept := s.anomaly[:0]
		for _, r := range s.anomaly {
			if !r.CreatedAt.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		deleted := len(s.anomaly) - len(kept)
		s.anomaly = kept
		return deleted, nil
	case KindCluster:
		kept := s.cluster[:0]
		for _, r := range s.cluster {
			if !r.CreatedAt.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		deleted := len(s.cluster) - len(kept)
		s.cluster = kept
		return deleted, nil
	case KindRisk:
		kept := s.risk[:0]
		for _, r := range s.risk {
			if !r.CreatedAt.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		deleted := len(s.risk) - len(kept)
		s.risk = kept
		return deleted, nil
	case KindAlert:
		kept := s.alerts[:0]
		for _, r := range s.alerts {
			if !r.CreatedAt.Before(cutoff) {
				kept = append(kept, r)
			}
		}
		deleted := len(s.alerts) - len(kept)
		s.alerts = kept
		return deleted, nil
	}
	return 0, nil
}

func (s *MemoryStore) Count(_ context.Context, kind Kind) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch kind {
	case KindAnomaly:
		return len(s.anomaly), nil
	case KindCluster:
		return len(s.cluster), nil
	case KindRisk:
		return len(s.risk), nil
	case KindAlert:
		return len(s.alerts), nil
	}
	return 0, nil
}

// Alerts returns a copy of the stored alerts, newest last.
func (s *MemoryStore) Alerts() []AlertRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AlertRecord, len(s.alerts))
	copy(out, s.alerts)
	return out
}
