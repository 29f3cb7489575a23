package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	"modernc.org/sqlite"

	"github.com/kairix/todo/internal/types"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQLite's LOWER only folds ASCII; search folds both sides with Go's
// Unicode case mapping instead.
const sqliteLowerFunc = "kairix_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(sqliteLowerFunc, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register %s: %v", sqliteLowerFunc, err))
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// lowerFunc names the case-folding SQL function for dialect.
func lowerFunc(dialect Dialect) string {
	if dialect == DialectSQLite {
		return sqliteLowerFunc
	}
	return "LOWER"
}

// SearchTasks runs params against the tasks table.
func (s *SQLStore) SearchTasks(ctx context.Context, params types.SearchParams) (*types.SearchResult, error) {
	return SearchTasks(ctx, s.db, s.dialect, params)
}

// SearchTasks returns one page of tasks matching every filter set in
// params, ordered by creation time, together with the total match count.
// Each task carries its tags and reminders.
func SearchTasks(ctx context.Context, q Querier, dialect Dialect, params types.SearchParams) (*types.SearchResult, error) {
	if params.Limit < 0 || params.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidEntity)
	}
	c := dbtx{q: q, dialect: dialect}
	where, args := searchFilter(dialect, params)

	var total int64
	if err := c.queryRow(ctx, `SELECT COUNT(*) FROM tasks t`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count search results: %w", err)
	}

	result := &types.SearchResult{Tasks: []types.SearchTask{}, Total: total}
	if params.Limit == 0 || int64(params.Offset) >= total {
		return result, nil
	}

	pageArgs := append(append([]any{}, args...), params.Limit, params.Offset)
	tasks, err := queryTasks(ctx, c,
		`SELECT `+taskColumns+` FROM tasks t`+where+` ORDER BY t.created_at, t.id LIMIT ? OFFSET ?`,
		pageArgs...)
	if err != nil {
		return nil, err
	}
	if err := attachTags(ctx, c, tasks); err != nil {
		return nil, err
	}

	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}
	reminders, err := loadReminders(ctx, c, ids)
	if err != nil {
		return nil, err
	}

	for _, task := range tasks {
		rems, ok := reminders[task.ID]
		if !ok {
			rems = []types.Reminder{}
		}
		result.Tasks = append(result.Tasks, types.SearchTask{Task: task, Reminders: rems})
	}
	return result, nil
}

// searchFilter builds the WHERE clause shared by the count and page queries.
func searchFilter(dialect Dialect, p types.SearchParams) (string, []any) {
	var conds []string
	var args []any

	if p.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(p.Query)) + "%"
		lower := lowerFunc(dialect)
		conds = append(conds, `(`+lower+`(t.title) LIKE ? ESCAPE '\' OR `+lower+`(COALESCE(t.additional_details, '')) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if p.FromDate != nil {
		conds = append(conds, "t.due_date >= ?")
		args = append(args, p.FromDate.String())
	}
	if p.ToDate != nil {
		conds = append(conds, "t.due_date <= ?")
		args = append(args, p.ToDate.String())
	}
	if p.Completed != nil {
		conds = append(conds, "t.completed = ?")
		args = append(args, *p.Completed)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
