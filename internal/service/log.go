package service

import (
	"encoding/json"
	"log"
)

// logWarn emits a one-line JSON warning, matching the log shape used by the
// database migration. Used for non-fatal conditions: ledger clamping,
// best-effort blob deletions, activity write failures.
func logWarn(event string, fields map[string]any) {
	data := map[string]any{
		"component": "service",
		"level":     "warn",
		"event":     event,
	}
	for k, v := range fields {
		data[k] = v
	}
	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal warning log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
