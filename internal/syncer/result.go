package syncer

import "time"

// ErrorKind names the stage a sync failed in. Callers map kinds (or the
// stage-naming messages) to user-facing guidance; low-level error text
// stays in the logs.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindFetch      ErrorKind = "fetch"
	ErrorKindConversion ErrorKind = "conversion"
	ErrorKindWrite      ErrorKind = "write"
	ErrorKindInternal   ErrorKind = "internal"
)

// Result is the structured outcome of one page sync. No error ever
// escapes SyncPage; failures are always folded into this shape.
type Result struct {
	Success   bool      `json:"success"`
	PostID    int64     `json:"post_id,omitempty"`
	Created   bool      `json:"created,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func failure(kind ErrorKind, message string) Result {
	return Result{Success: false, ErrorKind: kind, Error: message}
}

// Status is the read-only sync state of one page.
type Status struct {
	IsSynced     bool       `json:"is_synced"`
	PostID       int64      `json:"post_id,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`
}
