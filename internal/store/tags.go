package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kairix/todo/internal/types"
)

// normalizeTagNames trims names, drops empties and collapses duplicates,
// keeping first-seen order.
func normalizeTagNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// resolveTags returns the Tag for every name, creating missing ones.
// It must run inside the caller's transaction.
func resolveTags(ctx context.Context, c dbtx, newID func() string, names []string) ([]types.Tag, error) {
	names = normalizeTagNames(names)
	if len(names) == 0 {
		return []types.Tag{}, nil
	}

	for _, name := range names {
		_, err := c.exec(ctx, `INSERT INTO tags (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`, newID(), name)
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", name, mapError(err))
		}
	}

	rows, err := c.query(ctx, `SELECT id, name FROM tags WHERE name IN (`+placeholders(len(names))+`) ORDER BY name`, stringArgs(names)...)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	defer rows.Close()

	tags, err := scanTags(rows)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(names) {
		return nil, fmt.Errorf("resolve tags: got %d of %d", len(tags), len(names))
	}
	return tags, nil
}

// replaceTaskTags sets the tag set of a task to exactly names.
func replaceTaskTags(ctx context.Context, c dbtx, newID func() string, taskID string, names []string) error {
	if _, err := c.exec(ctx, `DELETE FROM task_tags WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("clear task tags: %w", err)
	}

	tags, err := resolveTags(ctx, c, newID, names)
	if err != nil {
		return err
	}

	for _, tag := range tags {
		_, err := c.exec(ctx, `INSERT INTO task_tags (task_id, tag_id) VALUES (?, ?)`, taskID, tag.ID)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", tag.Name, mapError(err))
		}
	}
	return nil
}

func scanTags(rows *sql.Rows) ([]types.Tag, error) {
	tags := []types.Tag{}
	for rows.Next() {
		var tag types.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

// tagConflict maps a unique violation on tags.name to ErrDuplicateTag.
func tagConflict(err error) error {
	err = mapError(err)
	if errors.Is(err, ErrDuplicate) {
		return ErrDuplicateTag
	}
	return err
}

// ListTags returns all tags ordered by name.
func (s *SQLStore) ListTags(ctx context.Context) ([]types.Tag, error) {
	rows, err := s.conn().query(ctx, `SELECT id, name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()
	return scanTags(rows)
}

// CreateTag inserts a tag. The name is trimmed; an existing name yields
// ErrDuplicateTag.
func (s *SQLStore) CreateTag(ctx context.Context, nt types.NewTag) (*types.Tag, error) {
	tag := types.Tag{ID: s.newID(), Name: strings.TrimSpace(nt.Name)}

	err := s.withTx(ctx, func(c dbtx) error {
		_, err := c.exec(ctx, `INSERT INTO tags (id, name) VALUES (?, ?)`, tag.ID, tag.Name)
		if err != nil {
			return fmt.Errorf("insert tag: %w", tagConflict(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTag returns a tag by id.
func (s *SQLStore) GetTag(ctx context.Context, id string) (*types.Tag, error) {
	return getTag(ctx, s.conn(), id)
}

func getTag(ctx context.Context, c dbtx, id string) (*types.Tag, error) {
	var tag types.Tag
	err := c.queryRow(ctx, `SELECT id, name FROM tags WHERE id = ?`, id).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return &tag, nil
}

// UpdateTag renames a tag when the patch carries a name.
func (s *SQLStore) UpdateTag(ctx context.Context, id string, patch types.TagPatch) (*types.Tag, error) {
	var tag *types.Tag
	err := s.withTx(ctx, func(c dbtx) error {
		var err error
		if tag, err = getTag(ctx, c, id); err != nil {
			return err
		}
		if !patch.Name.Set {
			return nil
		}

		name := nullable(patch.Name.Null, strings.TrimSpace(patch.Name.Value))
		if _, err := c.exec(ctx, `UPDATE tags SET name = ? WHERE id = ?`, name, id); err != nil {
			return fmt.Errorf("update tag: %w", tagConflict(err))
		}
		tag.Name = strings.TrimSpace(patch.Name.Value)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

// DeleteTag removes a tag and detaches it from every task.
func (s *SQLStore) DeleteTag(ctx context.Context, id string) error {
	return s.withTx(ctx, func(c dbtx) error {
		res, err := c.exec(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete tag: %w", mapError(err))
		}
		return requireAffected(res, ErrTagNotFound)
	})
}
