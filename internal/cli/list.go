package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/reelsubs/internal/config"
	"github.com/mgpai22/reelsubs/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the subtitle artifacts stored in the bucket",
	Long: `List the objects under subs/ in the remote bucket.

Examples:
  reelsubs list --bucket my-bucket
  REMOTION_S3_BUCKET_NAME=my-bucket reelsubs list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().
		StringP("bucket", "b", "", "Bucket to list (or set REMOTION_S3_BUCKET_NAME)")
	listCmd.Flags().
		String("prefix", storage.ArtifactPrefix, "Key prefix to list")
}

func runList(cmd *cobra.Command, args []string) error {
	bucket, _ := cmd.Flags().GetString("bucket")
	prefix, _ := cmd.Flags().GetString("prefix")

	cfg, err := loadConfig(cmd, config.WithBucket(bucket))
	if err != nil {
		return err
	}
	if cfg.AWS.Bucket == "" {
		return fmt.Errorf("no bucket configured: pass --bucket or set REMOTION_S3_BUCKET_NAME")
	}

	_, store, err := newRemote(cfg)
	if err != nil {
		return err
	}

	objects, err := store.List(context.Background(), cfg.AWS.Bucket, prefix)
	if err != nil {
		return err
	}
	log().Debugw("Listed bucket", "bucket", cfg.AWS.Bucket, "prefix", prefix, "objects", len(objects))

	if len(objects) == 0 {
		fmt.Printf("No artifacts under s3://%s/%s\n", cfg.AWS.Bucket, prefix)
		return nil
	}
	fmt.Println(renderTable(
		[]string{"Key", "Size", "Modified"},
		objectRows(objects),
		[]columnAlignment{alignLeft, alignRight, alignLeft},
	))
	return nil
}

func objectRows(objects []storage.Object) [][]string {
	rows := make([][]string, 0, len(objects))
	for _, o := range objects {
		modified := "-"
		if !o.LastModified.IsZero() {
			modified = o.LastModified.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{o.Key, strconv.FormatInt(o.Size, 10), modified})
	}
	return rows
}
