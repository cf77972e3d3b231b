package model

import "time"

// SyncResult is what the Sync Store holds: the order set of the last
// committed sync and the moment it was committed.
// SyncedAt is nil when no sync has ever been committed.
type SyncResult struct {
	Orders   []OrderRecord `json:"orders"`
	SyncedAt *time.Time    `json:"lastSyncedAt"`
	SyncID   string        `json:"syncId,omitempty"`
}

// StopReason tells why a pagination pass ended.
type StopReason string

const (
	StopBeforeStart StopReason = "reached_start_date"
	StopEmptyPage   StopReason = "empty_page"
	StopMaxPages    StopReason = "max_pages"
	StopTransport   StopReason = "transport_error"
	StopMalformed   StopReason = "malformed_payload"
	StopNoCursor    StopReason = "missing_cursor"
)

// Truncated reports whether the pass ended before the source ran out of
// relevant pages.
func (r StopReason) Truncated() bool {
	switch r {
	case StopMaxPages, StopTransport, StopNoCursor:
		return true
	default:
		return false
	}
}

// FetchOutcome is the result of one pagination pass before it is committed.
type FetchOutcome struct {
	Orders     []OrderRecord
	Pages      int
	StopReason StopReason
}
