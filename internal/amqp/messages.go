package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds understood by the mirror worker.
const (
	KindUpsert = "upsert"
	KindDelete = "delete"
)

// MirrorMessage tells the worker that a ledger row changed. It carries only
// the row ID; the worker fetches the current state from the database, so a
// message arriving after a later edit mirrors the latest version.
type MirrorMessage struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUpsertMessage creates a message for a created or updated transaction.
func NewUpsertMessage(id int64) *MirrorMessage {
	return &MirrorMessage{
		Kind:      KindUpsert,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a message for a deleted transaction.
func NewDeleteMessage(id int64) *MirrorMessage {
	return &MirrorMessage{
		Kind:      KindDelete,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *MirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MirrorMessageFromJSON creates a message from JSON bytes
func MirrorMessageFromJSON(data []byte) (*MirrorMessage, error) {
	var msg MirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case KindUpsert, KindDelete:
	default:
		return nil, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return &msg, nil
}
