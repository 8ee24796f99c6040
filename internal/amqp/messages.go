package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Collections known to the backup pipeline.
const (
	CollectionPurchases = "credit_purchases"
	CollectionLedger    = "ledger_entries"
)

// RecordSyncMessage asks the worker to export one record to the backup
// spreadsheet. It carries only the collection, id and version; the worker
// fetches the full record from the database so the message never goes
// stale.
type RecordSyncMessage struct {
	Collection string    `json:"collection"`
	ID         string    `json:"id"`
	Version    int64     `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(collection, id string, version int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		Collection: collection,
		ID:         id,
		Version:    version,
		Timestamp:  time.Now(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Collection != CollectionPurchases && msg.Collection != CollectionLedger {
		return nil, fmt.Errorf("unknown collection: %q", msg.Collection)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("message missing record id")
	}
	return &msg, nil
}
