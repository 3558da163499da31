package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akave-ai/protokoll/internal/logfile"
	"github.com/akave-ai/protokoll/internal/storage"
)

var (
	archiveDate string
	archiveAll  bool
	archiveList bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Upload gzipped day files to Akave O3",
	Long: `Compress day files and upload them to the S3-compatible bucket configured
with PROTOKOLL_STORAGE_O3_*. Local files are left in place.

Examples:
  protokoll archive --date 2024-01-15
  protokoll archive --all
  protokoll archive --list`,
	Args: cobra.NoArgs,
	RunE: runArchive,
}

func init() {
	archiveCmd.Flags().StringVar(&archiveDate, "date", "", "day to archive as YYYY-MM-DD (default: today, UTC)")
	archiveCmd.Flags().BoolVar(&archiveAll, "all", false, "archive every day file")
	archiveCmd.Flags().BoolVar(&archiveList, "list", false, "list archived objects instead of uploading")
	archiveCmd.MarkFlagsMutuallyExclusive("date", "all", "list")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := storage.NewO3Client(cfg.Storage.O3)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if archiveList {
		objects, err := client.ListArchives(ctx)
		if err != nil {
			return fmt.Errorf("list archives: %w", err)
		}
		for _, o := range objects {
			fmt.Fprintf(out, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format("2006-01-02T15:04:05Z07:00"))
		}
		return nil
	}

	if err := client.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}

	days, err := selectDays(cfg.Logs.Dir, archiveDate, archiveAll)
	if err != nil {
		return err
	}
	reader := logfile.NewReader(cfg.Logs.Dir)
	for _, day := range days {
		path := reader.Path(day)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		key, err := client.ArchiveDay(ctx, day, logfile.FileName(day), content)
		if err != nil {
			return err
		}
		log.Info().Str("file", path).Str("key", key).Int("bytes", len(content)).Msg("archived")
		fmt.Fprintln(out, key)
	}
	return nil
}
