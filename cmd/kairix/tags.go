package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsJSONOutput bool

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Inspect tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tags",
	Args:  cobra.NoArgs,
	RunE:  runTagsList,
}

func init() {
	tagsCmd.PersistentFlags().BoolVar(&tagsJSONOutput, "json", false, "Output in JSON format")
	tagsCmd.AddCommand(tagsListCmd)
}

func runTagsList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	tags, err := db.ListTags(cmd.Context())
	if err != nil {
		return fmt.Errorf("list tags: %w", err)
	}

	if tagsJSONOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"tags":  tags,
			"total": len(tags),
		})
	}

	if len(tags) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tags found.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "ID\tNAME")
	for _, t := range tags {
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
	return w.Flush()
}
