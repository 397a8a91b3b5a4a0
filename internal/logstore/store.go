package logstore

import (
	"context"
	"errors"
	"time"
)

var ErrIncompleteSet = errors.New("observation set is missing a record id")

type Store interface {
	// AppendObservationSet writes the three per-observation records and the
	// optional alert as one unit: all of them land, or none do.
	AppendObservationSet(ctx context.Context, set ObservationSet) error
	// DeleteOlderThan removes records of one kind created strictly before
	// cutoff. Records created at exactly cutoff are kept.
	DeleteOlderThan(ctx context.Context, kind Kind, cutoff time.Time) (int, error)
	Count(ctx context.Context, kind Kind) (int, error)
}

func validateSet(set ObservationSet) error {
	if set.Anomaly.ID == "" || set.Cluster.ID == "" || set.Risk.ID == "" {
		return ErrIncompleteSet
	}
	if set.Alert != nil && set.Alert.ID == "" {
		return ErrIncompleteSet
	}
	return nil
}
