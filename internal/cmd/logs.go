package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/onelane/onelane/internal/config"
	"github.com/onelane/onelane/internal/logging"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect a run's log file",
	Long: `Read, filter, and export the structured log a run wrote.

By default the file named by logging.file in the config is read. Each
entry is printed on one line; filters combine with AND.

Examples:
  # Last 50 entries of the configured log file
  onelane logs

  # Everything the bridge logged about one car
  onelane logs --component bridge --car "car 07" -n 0

  # Warnings and errors from the last ten minutes
  onelane logs --level warn --since 10m

  # Stream new entries while a watch session runs in another terminal
  onelane logs -f

  # Export every admission to CSV
  onelane logs --contains admitted --export admissions.csv --format csv`,
	RunE: runLogs,
}

var (
	logsFile      string // log file to read, defaults to logging.file
	logsTail      int    // show only the newest N entries, 0 = all
	logsFollow    bool   // stream entries as they are appended
	logsLevel     string // minimum level to show
	logsComponent string // only entries from this component
	logsCar       string // only entries about this car
	logsContains  string // only messages containing this text
	logsSince     string // only entries newer than this duration ago
	logsExport    string // write matches to a file instead of stdout
	logsFormat    string // export format
)

func init() {
	logsCmd.Flags().StringVar(&logsFile, "file", "", "log file to read (default: logging.file from config)")
	logsCmd.Flags().IntVarP(&logsTail, "tail", "n", 50, "number of entries to show (0 for all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "stream new entries as they are written")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "minimum level to show (debug/info/warn/error)")
	logsCmd.Flags().StringVar(&logsComponent, "component", "", "only entries from this component (bridge, sim)")
	logsCmd.Flags().StringVar(&logsCar, "car", "", "only entries about this car (e.g. \"car 07\")")
	logsCmd.Flags().StringVar(&logsContains, "contains", "", "only entries whose message contains this text")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "only entries newer than this duration ago (e.g. 1h, 30m)")
	logsCmd.Flags().StringVar(&logsExport, "export", "", "write matching entries to this file instead of stdout")
	logsCmd.Flags().StringVar(&logsFormat, "format", "json", "export format: json, text, or csv")
	logsCmd.MarkFlagsMutuallyExclusive("follow", "export")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := logsFile
	if path == "" {
		path = cfg.Logging.File
	}
	if path == "" {
		return errors.New("no log file to read: set logging.file in the config or pass --file")
	}

	filter, err := buildLogFilter()
	if err != nil {
		return err
	}

	if logsFollow {
		return followLogs(cmd.Context(), cmd.OutOrStdout(), path, filter)
	}

	entries, err := logging.ReadLogFile(path)
	if err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	entries = logging.FilterEntries(entries, filter)

	if logsExport != "" {
		if err := logging.ExportEntries(entries, logsExport, logsFormat); err != nil {
			return fmt.Errorf("failed to export log entries: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(entries), logsExport)
		return nil
	}

	if logsTail > 0 && len(entries) > logsTail {
		entries = entries[len(entries)-logsTail:]
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no matching log entries")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintln(cmd.OutOrStdout(), logging.FormatEntry(entry))
	}
	return nil
}

// buildLogFilter turns the logs flags into a LogFilter.
func buildLogFilter() (logging.LogFilter, error) {
	filter := logging.LogFilter{
		Level:           logsLevel,
		Component:       logsComponent,
		Car:             logsCar,
		MessageContains: logsContains,
	}
	if logsSince != "" {
		d, err := time.ParseDuration(logsSince)
		if err != nil {
			return logging.LogFilter{}, fmt.Errorf("invalid --since duration: %w", err)
		}
		filter.Since = time.Now().Add(-d)
	}
	return filter, nil
}

// followLogs streams entries appended to the log file until the context
// is cancelled, like tail -f.
func followLogs(ctx context.Context, out io.Writer, path string, filter logging.LogFilter) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	// Only new entries: history is what the non-follow mode is for.
	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}

	fmt.Fprintf(out, "following %s (ctrl+c to stop)\n", path)

	reader := bufio.NewReader(file)
	var pending strings.Builder
	for {
		chunk, err := reader.ReadString('\n')
		// A write can land mid-line, so hold partial reads until the
		// newline shows up.
		pending.WriteString(chunk)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("failed to read log file: %w", err)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		line := strings.TrimSpace(pending.String())
		pending.Reset()
		if line == "" {
			continue
		}
		entry, err := logging.ParseEntry(line)
		if err != nil {
			continue
		}
		if filter.Matches(entry) {
			fmt.Fprintln(out, logging.FormatEntry(entry))
		}
	}
}
