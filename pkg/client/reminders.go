package client

import (
	"context"
	"net/http"
	"time"
)

// ListReminders returns the reminders of a task ordered by remind_at.
func (c *Client) ListReminders(ctx context.Context, taskID string) ([]Reminder, error) {
	var out []Reminder
	if _, err := c.do(ctx, http.MethodGet, "/tasks/"+escape(taskID)+"/reminders", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateReminder schedules a reminder for a task.
func (c *Client) CreateReminder(ctx context.Context, taskID string, remindAt time.Time) (*Reminder, error) {
	var out Reminder
	body := NewReminder{RemindAt: &Timestamp{Time: remindAt}}
	if _, err := c.do(ctx, http.MethodPost, "/tasks/"+escape(taskID)+"/reminders", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetReminder returns one reminder.
func (c *Client) GetReminder(ctx context.Context, id string) (*Reminder, error) {
	var out Reminder
	if _, err := c.do(ctx, http.MethodGet, "/tasks/reminders/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateReminder applies the fields set in patch.
func (c *Client) UpdateReminder(ctx context.Context, id string, patch ReminderPatch) (*Reminder, error) {
	var out Reminder
	if _, err := c.do(ctx, http.MethodPatch, "/tasks/reminders/"+escape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteReminder deletes a reminder.
func (c *Client) DeleteReminder(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/tasks/reminders/"+escape(id), nil, nil, nil)
	return err
}
