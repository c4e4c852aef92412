package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/foxtrapper121/timewarp/internal/player"
)

var (
	watchLogFile  string
	watchLogLevel string
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Mirror the Spotify player's state",
	Long: `Poll the Spotify player and print the track and play state whenever
they change.

The watcher will:
- Poll the player once per second (configurable via poll_interval_ms)
- Stop cleanly when the stored credential expires or is cleared
- Halt after two consecutive poll failures rather than hammer the API
- Handle graceful shutdown on SIGINT/SIGTERM`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Log file path (default: stderr)")
	watchCmd.Flags().StringVar(&watchLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := setupLogger(watchLogFile, watchLogLevel)

	sess, err := openSession(logger)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.requireCredential(); err != nil {
		return err
	}

	interval := time.Duration(sess.cfg.PollIntervalMs) * time.Millisecond
	state := player.NewState()
	poller := player.NewPoller(sess.spotify, sess.creds, state, interval, logger)

	// Print the mirrored state whenever it changes.
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last string
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				line := describeSnapshot(state.Snapshot())
				if line != last {
					fmt.Println(line)
					last = line
				}
			}
		}
	}()

	err = poller.Run(ctx)

	// The poller clears the in-memory credential when Spotify reports it
	// expired; mirror that to disk so the next command re-authorizes.
	if sess.creds.Get() == nil {
		_ = sess.db.DeleteCredential()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, player.ErrHalted):
		return fmt.Errorf("stopped watching: %w", err)
	default:
		return err
	}
}

// describeSnapshot renders one line of player state.
func describeSnapshot(snap player.Snapshot) string {
	if snap.Track == nil {
		return "Nothing playing"
	}

	artist := ""
	if len(snap.Track.Artists) > 0 {
		artist = snap.Track.Artists[0].Name
	}

	verb := "Paused"
	if snap.IsPlaying {
		verb = "Playing"
	}
	return fmt.Sprintf("%s: %s - %s", verb, artist, snap.Track.Name)
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
