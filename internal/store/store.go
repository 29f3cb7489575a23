package store

import (
	"context"

	"github.com/kairix/todo/internal/types"
)

// Store defines the interface contract for all task, tag and reminder
// persistence. Every mutating method runs in a single transaction.
type Store interface {
	CreateTask(ctx context.Context, task types.NewTask) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context) ([]types.Task, error)
	UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error)
	CompleteTask(ctx context.Context, id string) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
	SearchTasks(ctx context.Context, params types.SearchParams) (*types.SearchResult, error)

	CreateTag(ctx context.Context, tag types.NewTag) (*types.Tag, error)
	GetTag(ctx context.Context, id string) (*types.Tag, error)
	ListTags(ctx context.Context) ([]types.Tag, error)
	UpdateTag(ctx context.Context, id string, patch types.TagPatch) (*types.Tag, error)
	DeleteTag(ctx context.Context, id string) error

	CreateReminder(ctx context.Context, taskID string, reminder types.NewReminder) (*types.Reminder, error)
	GetReminder(ctx context.Context, id string) (*types.Reminder, error)
	ListReminders(ctx context.Context, taskID string) ([]types.Reminder, error)
	UpdateReminder(ctx context.Context, id string, patch types.ReminderPatch) (*types.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
