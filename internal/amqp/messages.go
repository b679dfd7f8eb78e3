package amqp

import (
	"encoding/json"
	"time"

	"haushalt/internal/core"
)

// Event kinds published after successful ledger writes.
const (
	EventEntryUpserted  = "entry_upserted"
	EventEntryDeleted   = "entry_deleted"
	EventAccountChanged = "account_changed"
	EventImported       = "imported"
)

// LedgerEvent is a lightweight change notification. Consumers fetch
// whatever state they need themselves; the message only says that the
// ledger moved.
type LedgerEvent struct {
	Kind      string        `json:"kind"`
	EntryID   string        `json:"entryId,omitempty"`
	Category  core.Category `json:"category,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(kind, entryID string, category core.Category) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		EntryID:   entryID,
		Category:  category,
		Timestamp: time.Now(),
	}
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
