package client

import (
	"context"
	"net/http"
)

// ListTags returns every tag ordered by name.
func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	var out []Tag
	if _, err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTag creates a tag. A duplicate name is a 409 *APIError.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var out Tag
	if _, err := c.do(ctx, http.MethodPost, "/tags", nil, NewTag{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTag returns one tag.
func (c *Client) GetTag(ctx context.Context, id string) (*Tag, error) {
	var out Tag
	if _, err := c.do(ctx, http.MethodGet, "/tags/"+escape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameTag changes a tag's name.
func (c *Client) RenameTag(ctx context.Context, id, name string) (*Tag, error) {
	var out Tag
	patch := TagPatch{Name: Some(name)}
	if _, err := c.do(ctx, http.MethodPatch, "/tags/"+escape(id), nil, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTag deletes a tag and detaches it from every task.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/tags/"+escape(id), nil, nil, nil)
	return err
}
