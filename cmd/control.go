package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/foxtrapper121/timewarp/internal/player"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play [track-uri]",
	Short: "Resume playback on Spotify",
	Long: `Resume playback on Spotify. If paused, resumes the current track.

With a track URI argument (spotify:track:...), starts that track from
the beginning on the first available device.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

// pauseCmd represents the pause command
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback on Spotify",
	Long:  `Pause playback on Spotify. Pauses the currently playing track.`,
	RunE:  runPause,
}

// playpauseCmd represents the playpause command
var playpauseCmd = &cobra.Command{
	Use:   "playpause",
	Short: "Toggle play/pause on Spotify",
	Long:  `Toggle between play and pause states on Spotify. If playing, pauses. If paused, resumes.`,
	RunE:  runPlayPause,
}

// nextCmd represents the next command
var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track on Spotify",
	Long:  `Skip to the next track on Spotify. Advances to the next track in the current queue.`,
	RunE:  runNext,
}

// prevCmd represents the prev command
var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track on Spotify",
	Long:  `Go to the previous track on Spotify. Returns to the previous track in the current queue.`,
	RunE:  runPrev,
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(playpauseCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(prevCmd)
}

// withController runs one playback command against a fresh controller.
func withController(fn func(ctx context.Context, ctrl *player.Controller, state *player.State, sess *session) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger := setupLogger("", "error")

	sess, err := openSession(logger)
	if err != nil {
		return err
	}
	defer sess.close()

	if err := sess.requireCredential(); err != nil {
		return err
	}

	state := player.NewState()
	ctrl := player.NewController(sess.spotify, sess.creds, state, logger)

	return fn(ctx, ctrl, state, sess)
}

func runPlay(cmd *cobra.Command, args []string) error {
	return withController(func(ctx context.Context, ctrl *player.Controller, _ *player.State, _ *session) error {
		if len(args) == 1 {
			if err := ctrl.PlayTrack(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to play track: %w", err)
			}
			return nil
		}
		if err := ctrl.Play(ctx); err != nil {
			return fmt.Errorf("failed to play: %w", err)
		}
		return nil
	})
}

func runPause(cmd *cobra.Command, args []string) error {
	return withController(func(ctx context.Context, ctrl *player.Controller, _ *player.State, _ *session) error {
		if err := ctrl.Pause(ctx); err != nil {
			return fmt.Errorf("failed to pause: %w", err)
		}
		return nil
	})
}

func runPlayPause(cmd *cobra.Command, args []string) error {
	return withController(func(ctx context.Context, ctrl *player.Controller, state *player.State, sess *session) error {
		// The toggle needs the real remote state to flip from; a fresh
		// process has no poller keeping it warm.
		cred := sess.creds.Get()
		remote, err := sess.spotify.CurrentlyPlaying(ctx, cred.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to get playback state: %w", err)
		}
		if remote != nil {
			state.Set(remote.Item, remote.IsPlaying, remote.ProgressMs)
		}

		if err := ctrl.PlayPause(ctx); err != nil {
			return fmt.Errorf("failed to playpause: %w", err)
		}
		return nil
	})
}

func runNext(cmd *cobra.Command, args []string) error {
	return withController(func(ctx context.Context, ctrl *player.Controller, _ *player.State, _ *session) error {
		if err := ctrl.Next(ctx); err != nil {
			return fmt.Errorf("failed to skip to next track: %w", err)
		}
		return nil
	})
}

func runPrev(cmd *cobra.Command, args []string) error {
	return withController(func(ctx context.Context, ctrl *player.Controller, _ *player.State, _ *session) error {
		if err := ctrl.Previous(ctx); err != nil {
			return fmt.Errorf("failed to go to previous track: %w", err)
		}
		return nil
	})
}
