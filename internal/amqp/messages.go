package amqp

import (
	"encoding/json"
	"time"
)

// RefreshedMessage announces that a new dashboard snapshot was stored.
// Consumers fetch the payload from the snapshot store; the message carries
// only identifiers.
type RefreshedMessage struct {
	SnapshotID int64     `json:"snapshot_id"`
	FetchedAt  time.Time `json:"fetched_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewRefreshedMessage creates a refresh announcement for a stored snapshot.
func NewRefreshedMessage(snapshotID int64, fetchedAt time.Time) *RefreshedMessage {
	return &RefreshedMessage{
		SnapshotID: snapshotID,
		FetchedAt:  fetchedAt,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshedMessageFromJSON creates a message from JSON bytes
func RefreshedMessageFromJSON(data []byte) (*RefreshedMessage, error) {
	var msg RefreshedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
