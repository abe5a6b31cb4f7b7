package realtime

import (
	"encoding/json"
	"log/slog"

	"timebridge/internal/storage"
)

const notifyChannel = "timebridge_changes"

// Notifier publishes changes through postgres so every process listening on
// the channel (including this one) sees them.
type Notifier struct {
	logger *slog.Logger
}

// Notify is best effort: the write it describes already committed, so a
// failed notification is logged rather than returned.
func (n *Notifier) Notify(collection string, operation Operation, id string) {
	payload, err := json.Marshal(Change{
		Collection: collection,
		Operation:  operation,
		ID:         id,
	})
	if err != nil {
		n.logger.Error("Failed to encode change notification", "error", err)
		return
	}

	if err := storage.GetDb().Exec("SELECT pg_notify(?, ?)", notifyChannel, string(payload)).Error; err != nil {
		n.logger.Warn("Failed to publish change notification",
			"collection", collection,
			"id", id,
			"error", err)
	}
}
