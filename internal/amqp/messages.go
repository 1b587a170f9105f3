package amqp

import (
	"encoding/json"
	"time"
)

// StateSyncMessage asks the sync worker to mirror the local state
// document to the remote store. It carries only the user id and the
// local document version; the worker reads the latest document itself,
// so a burst of mutations collapses into whichever sync runs last.
type StateSyncMessage struct {
	UserID    string    `json:"userId"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStateSyncMessage builds a sync message for the given user and
// local document version.
func NewStateSyncMessage(userID string, version int64) *StateSyncMessage {
	return &StateSyncMessage{
		UserID:    userID,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *StateSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StateSyncMessageFromJSON parses a message from JSON bytes.
func StateSyncMessageFromJSON(data []byte) (*StateSyncMessage, error) {
	var msg StateSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
