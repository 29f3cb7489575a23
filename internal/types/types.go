package types

import (
	"time"
)

// Task is a to-do item as returned by the API.
type Task struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Completed         bool      `json:"completed"`
	CreatedAt         time.Time `json:"created_at"`
	DueDate           *Date     `json:"due_date"`
	AdditionalDetails *string   `json:"additional_details"`
	Tags              []Tag     `json:"tags"`
}

// SearchTask is the search-result form of a Task, which also carries the
// task's reminders.
type SearchTask struct {
	Task
	Reminders []Reminder `json:"reminders"`
}

// Tag is a named label attachable to many tasks.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reminder is a scheduled alert tied to exactly one task.
type Reminder struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	RemindAt  time.Time `json:"remind_at"`
	Completed bool      `json:"completed"`
}

// --- Write models ---
//
// Each write model is an explicit allow-list of the fields a client may set.
// Keys outside the list (id, created_at, task_id, ...) are ignored on decode.

// NewTask is the body of a task create request.
type NewTask struct {
	Title             string   `json:"title" validate:"notblank,max=500"`
	Completed         bool     `json:"completed"`
	DueDate           *Date    `json:"due_date"`
	AdditionalDetails *string  `json:"additional_details" validate:"omitempty,max=10000"`
	Tags              []string `json:"tags" validate:"dive,notblank,max=100"`
}

// TaskPatch is a partial task update. Only fields present in the request
// body are applied; Tags, when present, replaces the whole tag set.
type TaskPatch struct {
	Title             Optional[string]   `json:"title"`
	Completed         Optional[bool]     `json:"completed"`
	DueDate           Optional[Date]     `json:"due_date"`
	AdditionalDetails Optional[string]   `json:"additional_details"`
	Tags              Optional[[]string] `json:"tags"`
}

// IsEmpty reports whether the patch touches no field.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Completed.Set && !p.DueDate.Set &&
		!p.AdditionalDetails.Set && !p.Tags.Set
}

// MarshalJSON emits only the fields that are set, so a patch survives a
// round trip through a client.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	return marshalSet(map[string]setField{
		"title":              p.Title,
		"completed":          p.Completed,
		"due_date":           p.DueDate,
		"additional_details": p.AdditionalDetails,
		"tags":               p.Tags,
	})
}

// NewTag is the body of a tag create request.
type NewTag struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// TagPatch is a partial tag update.
type TagPatch struct {
	Name Optional[string] `json:"name"`
}

// MarshalJSON emits only the fields that are set.
func (p TagPatch) MarshalJSON() ([]byte, error) {
	return marshalSet(map[string]setField{"name": p.Name})
}

// NewReminder is the body of a reminder create request. The task is taken
// from the URL, never from the body.
type NewReminder struct {
	RemindAt  *Timestamp `json:"remind_at" validate:"required"`
	Completed bool       `json:"completed"`
}

// ReminderPatch is a partial reminder update.
type ReminderPatch struct {
	RemindAt  Optional[Timestamp] `json:"remind_at"`
	Completed Optional[bool]      `json:"completed"`
}

// MarshalJSON emits only the fields that are set.
func (p ReminderPatch) MarshalJSON() ([]byte, error) {
	return marshalSet(map[string]setField{
		"remind_at": p.RemindAt,
		"completed": p.Completed,
	})
}

// --- Search ---

const (
	// DefaultSearchLimit is the page size used when a search gives none.
	DefaultSearchLimit = 100
	// MaxSearchLimit is the default ceiling applied to search page sizes.
	MaxSearchLimit = 1000
)

// SearchParams holds the optional filters of a task search.
// Nil pointers and the empty Query mean the filter is not applied.
type SearchParams struct {
	Query     string
	FromDate  *Date
	ToDate    *Date
	Completed *bool
	Limit     int
	Offset    int
}

// SearchResult is one page of matching tasks plus the number of matches
// before pagination.
type SearchResult struct {
	Tasks []SearchTask
	Total int64
}

// --- Service ---

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	TaskCount int64  `json:"task_count"`
}

// StoreStats holds row counts for the datastore.
type StoreStats struct {
	TaskCount     int64 `json:"task_count"`
	TagCount      int64 `json:"tag_count"`
	ReminderCount int64 `json:"reminder_count"`
}
