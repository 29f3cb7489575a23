package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListTasks returns every task in creation order.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out []Task
	if _, err := c.do(ctx, http.MethodGet, "/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	var out Task
	if _, err := c.do(ctx, http.MethodPost, "/tasks", nil, nt, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask returns one task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if _, err := c.do(ctx, http.MethodGet, "/tasks/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTask applies the fields set in patch.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	var out Task
	if _, err := c.do(ctx, http.MethodPatch, "/tasks/"+escape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteTask marks a task completed.
func (c *Client) CompleteTask(ctx context.Context, id string) (*Task, error) {
	var out Task
	if _, err := c.do(ctx, http.MethodPatch, "/tasks/"+escape(id)+"/complete", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task and its reminders.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+escape(id), nil, nil, nil)
	return err
}

// SearchTasks returns one page of matching tasks with their reminders and
// the total number of matches.
func (c *Client) SearchTasks(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	var tasks []SearchTask
	h, err := c.do(ctx, http.MethodGet, "/tasks/search", opts.values(), nil, &tasks)
	if err != nil {
		return nil, err
	}
	total, err := parseTotal(h)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Tasks: tasks, Total: total}, nil
}

func (o SearchOptions) values() url.Values {
	q := url.Values{}
	if o.Query != "" {
		q.Set("q", o.Query)
	}
	if o.FromDate != nil {
		q.Set("from_date", o.FromDate.String())
	}
	if o.ToDate != nil {
		q.Set("to_date", o.ToDate.String())
	}
	if o.Completed != nil {
		q.Set("completed", strconv.FormatBool(*o.Completed))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}
