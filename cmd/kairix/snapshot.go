package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kairix/todo/internal/snapshot"
	"github.com/spf13/cobra"
)

var (
	snapshotOut    string
	snapshotUpload bool
)

// newUploader is swapped in tests.
var newUploader = snapshot.NewUploader

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Write a consistent copy of the SQLite database",
	Long: "Write a self-contained copy of the SQLite database that is safe to take while the " +
		"server is running. With --upload the copy is sent to the configured S3-compatible " +
		"bucket and a pre-signed download URL is printed.",
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "",
		"Destination file (default: kairix-<UTC timestamp>.db in the current directory)")
	snapshotCmd.Flags().BoolVar(&snapshotUpload, "upload", false,
		"Upload the snapshot to the configured bucket")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve the uploader first so a bad storage config fails before any work.
	var uploader snapshot.Uploader
	if snapshotUpload {
		uploader, err = newUploader(cfg.Snapshot)
		if err != nil {
			return err
		}
		if _, ok := uploader.(snapshot.NoopUploader); ok {
			return errors.New("--upload needs snapshot.bucket or KAIRIX_SNAPSHOT_BUCKET")
		}
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	out := snapshotOut
	if out == "" {
		out = "kairix-" + time.Now().UTC().Format("20060102T150405Z") + ".db"
	}

	if err := db.Snapshot(cmd.Context(), out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Snapshot written to %s\n", out)

	if uploader == nil {
		return nil
	}

	key, err := uploader.Upload(cmd.Context(), filepath.Base(out), out)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded to %s/%s\n", cfg.Snapshot.Bucket, key)

	link, expiry, err := uploader.PresignedURL(cmd.Context(), key)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Download URL (expires %s):\n%s\n", expiry.UTC().Format(time.RFC3339), link)
	return nil
}
