package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kairix/todo/internal/types"
)

const reminderColumns = `r.id, r.task_id, r.remind_at, r.completed`

func scanReminder(r rowScanner) (types.Reminder, error) {
	var (
		rem      types.Reminder
		remindAt string
	)
	if err := r.Scan(&rem.ID, &rem.TaskID, &remindAt, &rem.Completed); err != nil {
		return rem, err
	}
	t, err := parseTime(remindAt)
	if err != nil {
		return rem, err
	}
	rem.RemindAt = t
	return rem, nil
}

// ListReminders returns the reminders of a task ordered by remind_at.
func (s *SQLStore) ListReminders(ctx context.Context, taskID string) ([]types.Reminder, error) {
	c := s.conn()
	if err := taskExists(ctx, c, taskID); err != nil {
		return nil, err
	}
	byTask, err := loadReminders(ctx, c, []string{taskID})
	if err != nil {
		return nil, err
	}
	if rems, ok := byTask[taskID]; ok {
		return rems, nil
	}
	return []types.Reminder{}, nil
}

// loadReminders returns the reminders of each task, ordered by remind_at.
func loadReminders(ctx context.Context, c dbtx, taskIDs []string) (map[string][]types.Reminder, error) {
	out := make(map[string][]types.Reminder, len(taskIDs))
	for start := 0; start < len(taskIDs); start += maxInArgs {
		chunk := taskIDs[start:min(start+maxInArgs, len(taskIDs))]

		rows, err := c.query(ctx, `
			SELECT `+reminderColumns+`
			FROM reminders r
			WHERE r.task_id IN (`+placeholders(len(chunk))+`)
			ORDER BY r.remind_at, r.id
		`, stringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("load reminders: %w", err)
		}

		for rows.Next() {
			rem, err := scanReminder(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan reminder: %w", err)
			}
			out[rem.TaskID] = append(out[rem.TaskID], rem)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate reminders: %w", err)
		}
	}
	return out, nil
}

// CreateReminder attaches a new reminder to an existing task.
func (s *SQLStore) CreateReminder(ctx context.Context, taskID string, nr types.NewReminder) (*types.Reminder, error) {
	if nr.RemindAt == nil {
		return nil, fmt.Errorf("%w: remind_at is required", ErrInvalidEntity)
	}
	id := s.newID()

	var rem *types.Reminder
	err := s.withTx(ctx, func(c dbtx) error {
		if err := taskExists(ctx, c, taskID); err != nil {
			return err
		}

		_, err := c.exec(ctx, `
			INSERT INTO reminders (id, task_id, remind_at, completed)
			VALUES (?, ?, ?, ?)
		`, id, taskID, formatTime(nr.RemindAt.Time), nr.Completed)
		if err != nil {
			return fmt.Errorf("insert reminder: %w", mapError(err))
		}

		rem, err = getReminder(ctx, c, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rem, nil
}

// GetReminder returns a reminder by id.
func (s *SQLStore) GetReminder(ctx context.Context, id string) (*types.Reminder, error) {
	return getReminder(ctx, s.conn(), id)
}

func getReminder(ctx context.Context, c dbtx, id string) (*types.Reminder, error) {
	row := c.queryRow(ctx, `SELECT `+reminderColumns+` FROM reminders r WHERE r.id = ?`, id)
	rem, err := scanReminder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reminder: %w", err)
	}
	return &rem, nil
}

// UpdateReminder applies the fields present in patch.
func (s *SQLStore) UpdateReminder(ctx context.Context, id string, patch types.ReminderPatch) (*types.Reminder, error) {
	var rem *types.Reminder
	err := s.withTx(ctx, func(c dbtx) error {
		if _, err := getReminder(ctx, c, id); err != nil {
			return err
		}

		var sets []string
		var args []any
		if patch.RemindAt.Set {
			sets = append(sets, "remind_at = ?")
			args = append(args, nullable(patch.RemindAt.Null, formatTime(patch.RemindAt.Value.Time)))
		}
		if patch.Completed.Set {
			sets = append(sets, "completed = ?")
			args = append(args, nullable(patch.Completed.Null, patch.Completed.Value))
		}

		if len(sets) > 0 {
			args = append(args, id)
			_, err := c.exec(ctx, `UPDATE reminders SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
			if err != nil {
				return fmt.Errorf("update reminder: %w", mapError(err))
			}
		}

		var err error
		rem, err = getReminder(ctx, c, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rem, nil
}

// DeleteReminder removes a reminder.
func (s *SQLStore) DeleteReminder(ctx context.Context, id string) error {
	return s.withTx(ctx, func(c dbtx) error {
		res, err := c.exec(ctx, `DELETE FROM reminders WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete reminder: %w", mapError(err))
		}
		return requireAffected(res, ErrReminderNotFound)
	})
}
