package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/organ-c/storepulse/internal/risk"
)

type Config struct {
	ListenAddr string
	JWTSecret  []byte
	TokenTTL   time.Duration
	// AdminAPIKey is exchanged for a bearer token on the auth endpoint.
	AdminAPIKey string

	OracleBaseURL string
	OracleTimeout time.Duration

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RetentionDays   int
	AlertWebhookURL string

	// Risk rule tuning. Thresholds live here so the additive rule has no
	// magic literals at its call sites.
	RiskAnomalyWeight  int
	RiskScoreWeight    int
	RiskClusterWeight  int
	RiskScoreThreshold float64
	RiskHighAt         int
	RiskMediumAt       int
	HighRiskClusters   []int
}

func Load() (Config, error) {
	cfg := Config{
		ListenAddr:         getenv("STOREPULSE_LISTEN", ":8000"),
		JWTSecret:          []byte(getenv("STOREPULSE_JWT_SECRET", "dev-secret-change-me")),
		TokenTTL:           mustDuration(getenv("STOREPULSE_TOKEN_TTL", "24h")),
		AdminAPIKey:        getenv("STOREPULSE_ADMIN_API_KEY", ""),
		OracleBaseURL:      getenv("STOREPULSE_ORACLE_BASE_URL", "http://localhost:9000"),
		OracleTimeout:      mustDuration(getenv("STOREPULSE_ORACLE_TIMEOUT", "10s")),
		StoreBackend:       strings.ToLower(strings.TrimSpace(getenv("STOREPULSE_STORE_BACKEND", "memory"))),
		RedisAddr:          strings.TrimSpace(getenv("STOREPULSE_REDIS_ADDR", "")),
		RedisPassword:      getenv("STOREPULSE_REDIS_PASSWORD", ""),
		RedisDB:            mustInt(getenv("STOREPULSE_REDIS_DB", "0"), 0),
		RetentionDays:      mustInt(getenv("STOREPULSE_RETENTION_DAYS", "7"), 7),
		AlertWebhookURL:    strings.TrimSpace(getenv("STOREPULSE_ALERT_WEBHOOK_URL", "")),
		RiskAnomalyWeight:  mustInt(getenv("STOREPULSE_RISK_ANOMALY_WEIGHT", "40"), 40),
		RiskScoreWeight:    mustInt(getenv("STOREPULSE_RISK_SCORE_WEIGHT", "10"), 10),
		RiskClusterWeight:  mustInt(getenv("STOREPULSE_RISK_CLUSTER_WEIGHT", "20"), 20),
		RiskScoreThreshold: mustFloat(getenv("STOREPULSE_RISK_SCORE_THRESHOLD", "0.15"), 0.15),
		RiskHighAt:         mustInt(getenv("STOREPULSE_RISK_HIGH_AT", "60"), 60),
		RiskMediumAt:       mustInt(getenv("STOREPULSE_RISK_MEDIUM_AT", "30"), 30),
		HighRiskClusters:   mustIntList(getenv("STOREPULSE_HIGH_RISK_CLUSTERS", "6,7"), []int{6, 7}),
	}

	if len(cfg.JWTSecret) < 16 {
		return Config{}, errors.New("STOREPULSE_JWT_SECRET must be at least 16 bytes")
	}
	if cfg.RetentionDays <= 0 {
		return Config{}, errors.New("STOREPULSE_RETENTION_DAYS must be positive")
	}
	if cfg.StoreBackend == "redis" && cfg.RedisAddr == "" {
		return Config{}, errors.New("STOREPULSE_STORE_BACKEND=redis requires STOREPULSE_REDIS_ADDR")
	}

	return cfg, nil
}

// RiskWeights maps the flat config fields onto the evaluator's weights.
func (c Config) RiskWeights() risk.Weights {
	clusters := make(map[int]bool, len(c.HighRiskClusters))
	for _, id := range c.HighRiskClusters {
		clusters[id] = true
	}
	return risk.Weights{
		Anomaly:                 c.RiskAnomalyWeight,
		ScoreMagnitude:          c.RiskScoreWeight,
		Cluster:                 c.RiskClusterWeight,
		ScoreMagnitudeThreshold: c.RiskScoreThreshold,
		HighRiskClusters:        clusters,
		HighAt:                  c.RiskHighAt,
		MediumAt:                c.RiskMediumAt,
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}
	// Support seconds-only integer.
	if n, err2 := strconv.Atoi(v); err2 == nil {
		return time.Duration(n) * time.Second
	}
	return 24 * time.Hour
}

func mustInt(v string, def int) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func mustFloat(v string, def float64) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func mustIntList(v string, def []int) []int {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	var out []int
	for _, part := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return def
		}
		out = append(out, n)
	}
	return out
}
