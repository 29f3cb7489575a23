package main

import (
	"encoding/json"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kairix/todo/internal/types"
)

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// orDash renders empty values as "-" in table output.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinTagNames(tags []types.Tag) string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return strings.Join(names, ",")
}

func dueString(d *types.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func doneString(completed bool) string {
	if completed {
		return "yes"
	}
	return "no"
}
