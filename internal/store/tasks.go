package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kairix/todo/internal/types"
)

const taskColumns = `t.id, t.title, t.completed, t.created_at, t.due_date, t.additional_details`

// maxInArgs bounds the number of parameters in a single IN (...) list.
const maxInArgs = 500

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (types.Task, error) {
	var (
		task      types.Task
		createdAt string
		dueDate   sql.NullString
		details   sql.NullString
	)
	if err := r.Scan(&task.ID, &task.Title, &task.Completed, &createdAt, &dueDate, &details); err != nil {
		return task, err
	}

	var err error
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return task, err
	}
	if dueDate.Valid {
		d, err := types.ParseDate(dueDate.String)
		if err != nil {
			return task, fmt.Errorf("parse stored due date: %w", err)
		}
		task.DueDate = &d
	}
	if details.Valid {
		s := details.String
		task.AdditionalDetails = &s
	}
	task.Tags = []types.Tag{}
	return task, nil
}

// CreateTask inserts a task and resolves its tags in one transaction.
func (s *SQLStore) CreateTask(ctx context.Context, nt types.NewTask) (*types.Task, error) {
	id := s.newID()
	now := s.now()

	var task *types.Task
	err := s.withTx(ctx, func(c dbtx) error {
		_, err := c.exec(ctx, `
			INSERT INTO tasks (id, title, completed, created_at, due_date, additional_details)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, nt.Title, nt.Completed, formatTime(now), nullableDate(nt.DueDate), nullableString(nt.AdditionalDetails))
		if err != nil {
			return fmt.Errorf("insert task: %w", mapError(err))
		}

		if len(nt.Tags) > 0 {
			if err := replaceTaskTags(ctx, c, s.newID, id, nt.Tags); err != nil {
				return err
			}
		}

		task, err = getTask(ctx, c, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns a task with its tags.
func (s *SQLStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	return getTask(ctx, s.conn(), id)
}

func getTask(ctx context.Context, c dbtx, id string) (*types.Task, error) {
	row := c.queryRow(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	tags, err := loadTags(ctx, c, []string{id})
	if err != nil {
		return nil, err
	}
	if t, ok := tags[id]; ok {
		task.Tags = t
	}
	return &task, nil
}

// ListTasks returns every task ordered by creation time.
func (s *SQLStore) ListTasks(ctx context.Context) ([]types.Task, error) {
	c := s.conn()
	tasks, err := queryTasks(ctx, c, `SELECT `+taskColumns+` FROM tasks t ORDER BY t.created_at, t.id`)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, c, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// queryTasks runs a task SELECT and drains the rows before returning.
func queryTasks(ctx context.Context, c dbtx, query string, args ...any) ([]types.Task, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func attachTags(ctx context.Context, c dbtx, tasks []types.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	tags, err := loadTags(ctx, c, ids)
	if err != nil {
		return err
	}
	for i := range tasks {
		if t, ok := tags[tasks[i].ID]; ok {
			tasks[i].Tags = t
		}
	}
	return nil
}

// loadTags returns the tags of each task, ordered by name.
func loadTags(ctx context.Context, c dbtx, taskIDs []string) (map[string][]types.Tag, error) {
	out := make(map[string][]types.Tag, len(taskIDs))
	for start := 0; start < len(taskIDs); start += maxInArgs {
		chunk := taskIDs[start:min(start+maxInArgs, len(taskIDs))]

		rows, err := c.query(ctx, `
			SELECT tt.task_id, g.id, g.name
			FROM task_tags tt
			JOIN tags g ON g.id = tt.tag_id
			WHERE tt.task_id IN (`+placeholders(len(chunk))+`)
			ORDER BY g.name
		`, stringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("load task tags: %w", err)
		}

		for rows.Next() {
			var taskID string
			var tag types.Tag
			if err := rows.Scan(&taskID, &tag.ID, &tag.Name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan task tag: %w", err)
			}
			out[taskID] = append(out[taskID], tag)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterate task tags: %w", err)
		}
	}
	return out, nil
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// UpdateTask applies the fields present in patch. A present Tags field
// replaces the whole tag set.
func (s *SQLStore) UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error) {
	var task *types.Task
	err := s.withTx(ctx, func(c dbtx) error {
		if err := taskExists(ctx, c, id); err != nil {
			return err
		}

		sets, args := taskPatchColumns(patch)
		if len(sets) > 0 {
			args = append(args, id)
			_, err := c.exec(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
			if err != nil {
				return fmt.Errorf("update task: %w", mapError(err))
			}
		}

		if patch.Tags.Set {
			if err := replaceTaskTags(ctx, c, s.newID, id, patch.Tags.Value); err != nil {
				return err
			}
		}

		var err error
		task, err = getTask(ctx, c, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func taskPatchColumns(p types.TaskPatch) ([]string, []any) {
	var sets []string
	var args []any

	if p.Title.Set {
		sets = append(sets, "title = ?")
		args = append(args, nullable(p.Title.Null, p.Title.Value))
	}
	if p.Completed.Set {
		sets = append(sets, "completed = ?")
		args = append(args, nullable(p.Completed.Null, p.Completed.Value))
	}
	if p.DueDate.Set {
		sets = append(sets, "due_date = ?")
		args = append(args, nullable(p.DueDate.Null, p.DueDate.Value.String()))
	}
	if p.AdditionalDetails.Set {
		sets = append(sets, "additional_details = ?")
		args = append(args, nullable(p.AdditionalDetails.Null, p.AdditionalDetails.Value))
	}
	return sets, args
}

func nullable(isNull bool, v any) any {
	if isNull {
		return nil
	}
	return v
}

// CompleteTask marks a task as completed.
func (s *SQLStore) CompleteTask(ctx context.Context, id string) (*types.Task, error) {
	return s.UpdateTask(ctx, id, types.TaskPatch{Completed: types.Some(true)})
}

// DeleteTask removes a task. Its reminders and tag links go with it.
func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	return s.withTx(ctx, func(c dbtx) error {
		res, err := c.exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete task: %w", mapError(err))
		}
		return requireAffected(res, ErrTaskNotFound)
	})
}

func taskExists(ctx context.Context, c dbtx, id string) error {
	var one int
	err := c.queryRow(ctx, `SELECT 1 FROM tasks WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTaskNotFound
	}
	if err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	return nil
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
