package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/kairix/todo/internal/store"
	"github.com/kairix/todo/internal/types"
	"github.com/spf13/cobra"
)

var (
	tasksJSONOutput bool

	searchQuery     string
	searchFrom      string
	searchTo        string
	searchCompleted string
	searchLimit     int
	searchOffset    int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect tasks",
	Long:  "List and search tasks directly in the database without running the server.",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search tasks",
	Long: "Search tasks by text in title or details, due date range and completion. " +
		"Filters combine with AND.",
	Args: cobra.NoArgs,
	RunE: runTasksSearch,
}

func init() {
	tasksCmd.PersistentFlags().BoolVar(&tasksJSONOutput, "json", false, "Output in JSON format")

	f := tasksSearchCmd.Flags()
	f.StringVar(&searchQuery, "q", "", "Case-insensitive text to find in title or details")
	f.StringVar(&searchFrom, "from", "", "Earliest due date (YYYY-MM-DD)")
	f.StringVar(&searchTo, "to", "", "Latest due date (YYYY-MM-DD)")
	f.StringVar(&searchCompleted, "completed", "", "Only completed (true) or open (false) tasks")
	f.IntVar(&searchLimit, "limit", types.DefaultSearchLimit, "Maximum number of tasks to return")
	f.IntVar(&searchOffset, "offset", 0, "Number of matching tasks to skip")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksSearchCmd)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tasks, err := db.ListTasks(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if tasksJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"tasks": tasks,
			"total": len(tasks),
		})
	}

	if len(tasks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
		return nil
	}
	return writeTaskTable(cmd.OutOrStdout(), tasks)
}

// searchParamsFromFlags validates the search flags the same way the HTTP
// query string is validated.
func searchParamsFromFlags() (types.SearchParams, error) {
	params := types.SearchParams{
		Query:  searchQuery,
		Limit:  searchLimit,
		Offset: searchOffset,
	}
	if searchFrom != "" {
		d, err := types.ParseDate(searchFrom)
		if err != nil {
			return params, fmt.Errorf("--from: %w", err)
		}
		params.FromDate = &d
	}
	if searchTo != "" {
		d, err := types.ParseDate(searchTo)
		if err != nil {
			return params, fmt.Errorf("--to: %w", err)
		}
		params.ToDate = &d
	}
	if searchCompleted != "" {
		b, err := strconv.ParseBool(searchCompleted)
		if err != nil {
			return params, errors.New("--completed: must be a boolean")
		}
		params.Completed = &b
	}
	if params.Limit < 0 || params.Offset < 0 {
		return params, errors.New("--limit and --offset must be non-negative")
	}
	return params, nil
}

func runTasksSearch(cmd *cobra.Command, args []string) error {
	params, err := searchParamsFromFlags()
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params.Limit = min(params.Limit, cfg.Search.MaxLimit)

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := store.SearchTasks(cmd.Context(), db.DB(), db.Dialect(), params)
	if err != nil {
		return fmt.Errorf("search tasks: %w", err)
	}

	if tasksJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"tasks": result.Tasks,
			"total": result.Total,
		})
	}

	tasks := make([]types.Task, len(result.Tasks))
	for i, st := range result.Tasks {
		tasks[i] = st.Task
	}
	if len(tasks) > 0 {
		if err := writeTaskTable(cmd.OutOrStdout(), tasks); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d matching tasks\n", len(tasks), result.Total)
	return nil
}

func writeTaskTable(out io.Writer, tasks []types.Task) error {
	w := newTabWriter(out)
	fmt.Fprintln(w, "ID\tTITLE\tDONE\tDUE\tTAGS")
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			t.Title,
			doneString(t.Completed),
			orDash(dueString(t.DueDate)),
			orDash(joinTagNames(t.Tags)),
		)
	}
	return w.Flush()
}
