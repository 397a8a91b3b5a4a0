// Package wire defines the fixed-shape messages exchanged with real-time
// subscribers. Every message carries a "type" discriminator so clients can
// switch on it exhaustively.
package wire

import "time"

const (
	TypeConnected  = "connected"
	TypeIoTUpdate  = "iot_update"
	TypeAlert      = "alert"
	TypePing       = "ping"
	TypePong       = "pong"
	TypeSubscribed = "subscribed"
	TypeError      = "error"

	// TypeSubscribe is inbound only: a client asking for channel filtering,
	// which is acknowledged but not enforced.
	TypeSubscribe = "subscribe"
)

// Connected is sent once to a subscriber right after its connection is
// accepted.
type Connected struct {
	Type              string `json:"type"`
	Message           string `json:"message"`
	ClientID          string `json:"client_id"`
	ActiveConnections int    `json:"active_connections"`
}

func NewConnected(clientID string, active int) Connected {
	return Connected{
		Type:              TypeConnected,
		Message:           "Connected to real-time alerts",
		ClientID:          clientID,
		ActiveConnections: active,
	}
}

// IoTUpdate carries one observation together with its full analysis result.
// Broadcast for every successfully persisted observation.
type IoTUpdate struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      UpdateData     `json:"data"`
	Analysis  UpdateAnalysis `json:"analysis"`
}

type UpdateData struct {
	Store       int     `json:"store"`
	Dept        int     `json:"dept"`
	WeeklySales float64 `json:"weekly_sales"`
	Temperature float64 `json:"temperature"`
	IsHoliday   int     `json:"is_holiday"`
}

type UpdateAnalysis struct {
	AnomalyDetected bool    `json:"anomaly_detected"`
	AnomalyScore    float64 `json:"anomaly_score"`
	RiskLevel       string  `json:"risk_level"`
	RiskScore       int     `json:"risk_score"`
	Cluster         int     `json:"cluster"`
}

func NewIoTUpdate(data UpdateData, analysis UpdateAnalysis) IoTUpdate {
	return IoTUpdate{
		Type:      TypeIoTUpdate,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
		Analysis:  analysis,
	}
}

// Alert is broadcast in addition to the IoTUpdate when an observation lands
// at HIGH risk.
type Alert struct {
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Timestamp string `json:"timestamp"`
	Store     int    `json:"store"`
	Dept      int    `json:"dept"`
	Message   string `json:"message"`
	RiskScore int    `json:"risk_score"`
}

func NewAlert(store, dept int, message string, riskScore int) Alert {
	return Alert{
		Type:      TypeAlert,
		Priority:  "HIGH",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     store,
		Dept:      dept,
		Message:   message,
		RiskScore: riskScore,
	}
}

// Ping is the keep-alive the server sends when a subscriber has been idle
// for a full receive-timeout cycle.
type Ping struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewPing() Ping {
	return Ping{Type: TypePing, Message: "keep-alive"}
}

// Pong answers a client ping, echoing whatever timestamp the client sent.
type Pong struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp,omitempty"`
}

func NewPong(timestamp string) Pong {
	return Pong{Type: TypePong, Timestamp: timestamp}
}

// Subscribed acknowledges a subscribe request. Channel filtering is not
// implemented; every subscriber receives every broadcast.
type Subscribed struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

func NewSubscribed(channels []string) Subscribed {
	if len(channels) == 0 {
		channels = []string{"all"}
	}
	return Subscribed{Type: TypeSubscribed, Channels: channels}
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(message string) Error {
	return Error{Type: TypeError, Message: message}
}

// Inbound is the envelope for messages received from subscribers.
type Inbound struct {
	Type      string   `json:"type"`
	Timestamp string   `json:"timestamp,omitempty"`
	Channels  []string `json:"channels,omitempty"`
}
