package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/organ-c/storepulse/internal/observation"
	"github.com/organ-c/storepulse/internal/risk"
)

// HTTPOracle calls a model-serving endpoint. The feature vector is posted
// in the fixed column order the models were trained on; the anomaly verdict
// follows the isolation-forest convention where -1 marks an anomaly.
type HTTPOracle struct {
	BaseURL string
	HTTP    *http.Client
}

type featuresRequest struct {
	Features []float64 `json:"features"`
}

type assessResponse struct {
	Anomaly      int     `json:"anomaly"`
	AnomalyScore float64 `json:"anomaly_score"`
}

type clusterResponse struct {
	Cluster int `json:"cluster"`
}

func (o HTTPOracle) Assess(ctx context.Context, obs observation.Observation) (risk.Assessment, error) {
	var resp assessResponse
	if err := o.post(ctx, "/assess", featuresRequest{Features: obs.Features()}, &resp); err != nil {
		return risk.Assessment{}, err
	}
	if resp.Anomaly != -1 && resp.Anomaly != 1 {
		return risk.Assessment{}, fmt.Errorf("oracle returned invalid anomaly verdict %d", resp.Anomaly)
	}
	return risk.Assessment{IsAnomaly: resp.Anomaly == -1, Score: resp.AnomalyScore}, nil
}

func (o HTTPOracle) Cluster(ctx context.Context, obs observation.Observation) (int, error) {
	var resp clusterResponse
	if err := o.post(ctx, "/cluster", featuresRequest{Features: obs.Features()}, &resp); err != nil {
		return 0, err
	}
	if resp.Cluster < 0 {
		return 0, fmt.Errorf("oracle returned invalid cluster id %d", resp.Cluster)
	}
	return resp.Cluster, nil
}

func (o HTTPOracle) post(ctx context.Context, path string, in, out any) error {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		return fmt.Errorf("oracle base url not configured")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("oracle %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("oracle %s http %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("oracle %s: decode response: %w", path, err)
	}
	return nil
}
