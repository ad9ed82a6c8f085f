package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncOp says what the worker must do to the sheet.
type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

// RecipeSyncMessage asks the worker to mirror one local recipe change to
// Google Sheets. It carries only the row id and version; the worker loads
// the recipe from the database. Title is kept so deletes can be applied
// without reading the row back.
type RecipeSyncMessage struct {
	ID        int64     `json:"id"`
	Version   int64     `json:"version"`
	Op        SyncOp    `json:"op"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecipeSyncMessage(id, version int64, title string) *RecipeSyncMessage {
	return &RecipeSyncMessage{ID: id, Version: version, Op: OpUpsert, Title: title, Timestamp: time.Now()}
}

func NewRecipeDeleteMessage(id, version int64, title string) *RecipeSyncMessage {
	return &RecipeSyncMessage{ID: id, Version: version, Op: OpDelete, Title: title, Timestamp: time.Now()}
}

// ToJSON converts the message to JSON bytes
func (m *RecipeSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecipeSyncMessageFromJSON decodes a message. Messages without an op are
// upserts.
func RecipeSyncMessageFromJSON(data []byte) (*RecipeSyncMessage, error) {
	var msg RecipeSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Op {
	case "":
		msg.Op = OpUpsert
	case OpUpsert, OpDelete:
	default:
		return nil, fmt.Errorf("unknown sync op %q", msg.Op)
	}
	return &msg, nil
}
