package client

import "github.com/kairix/todo/internal/types"

// Resource and request models shared with the server.
type (
	Task           = types.Task
	SearchTask     = types.SearchTask
	Tag            = types.Tag
	Reminder       = types.Reminder
	NewTask        = types.NewTask
	TaskPatch      = types.TaskPatch
	NewTag         = types.NewTag
	TagPatch       = types.TagPatch
	NewReminder    = types.NewReminder
	ReminderPatch  = types.ReminderPatch
	Date           = types.Date
	Timestamp      = types.Timestamp
	HealthResponse = types.HealthResponse
)

// Some returns a set, non-null patch field.
func Some[T any](v T) types.Optional[T] { return types.Some(v) }

// Null returns a set patch field holding JSON null, which clears it.
func Null[T any]() types.Optional[T] { return types.Null[T]() }

// SearchOptions are the optional task search filters. Zero values are not
// sent.
type SearchOptions struct {
	Query     string
	FromDate  *Date
	ToDate    *Date
	Completed *bool
	Limit     int
	Offset    int
}

// SearchResult is one page of matches plus the total before pagination.
type SearchResult struct {
	Tasks []SearchTask
	Total int64
}
