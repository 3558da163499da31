package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akave-ai/protokoll/internal/logfile"
	"github.com/akave-ai/protokoll/internal/model"
	"github.com/akave-ai/protokoll/internal/output"
)

var (
	showDate   string
	showAll    bool
	showFollow bool
	outputFmt  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print decoded entries of a day file",
	Long: `Decode a day file the same way GET /api/logs/file does and print it.

Examples:
  protokoll show
  protokoll show --date 2024-01-15 --output json
  protokoll show --all
  protokoll show --follow`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&showDate, "date", "", "day to show as YYYY-MM-DD (default: today, UTC)")
	showCmd.Flags().BoolVar(&showAll, "all", false, "show every day file, oldest first")
	showCmd.Flags().BoolVarP(&showFollow, "follow", "f", false, "keep printing entries appended to today's file")
	showCmd.Flags().StringVarP(&outputFmt, "output", "o", "text", "output format: text, json")
	showCmd.MarkFlagsMutuallyExclusive("date", "all")
	showCmd.MarkFlagsMutuallyExclusive("follow", "all")
	showCmd.MarkFlagsMutuallyExclusive("follow", "date")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	renderer, err := output.New(outputFmt, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	days, err := selectDays(cfg.Logs.Dir, showDate, showAll)
	if err != nil {
		return err
	}

	var follower *logfile.Follower
	if showFollow {
		// Watch before reading: an append racing the read may print twice but is
		// never missed.
		follower, err = logfile.NewFollower(cfg.Logs.Dir, nil, log)
		if err != nil {
			return err
		}
	}

	reader := logfile.NewReader(cfg.Logs.Dir)
	for _, day := range days {
		res, err := reader.Read(day)
		if errors.Is(err, logfile.ErrNotFound) && (showFollow || showAll) {
			continue
		}
		if err != nil {
			return err
		}
		for _, e := range res.Entries {
			if err := renderer.Render(e); err != nil {
				return err
			}
		}
	}

	if follower == nil {
		return nil
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return follower.Run(ctx, func(e model.Entry) {
		if err := renderer.Render(e); err != nil {
			log.Warn().Err(err).Msg("render failed")
		}
	})
}

// selectDays resolves --date/--all into the list of days to read.
func selectDays(dir, date string, all bool) ([]time.Time, error) {
	switch {
	case all:
		return logfile.ListDays(dir)
	case date != "":
		day, err := logfile.ParseDay(date)
		if err != nil {
			return nil, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		return []time.Time{day}, nil
	default:
		return []time.Time{time.Now().UTC()}, nil
	}
}
