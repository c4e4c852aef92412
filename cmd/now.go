/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// nowCmd represents the now command
var nowCmd = &cobra.Command{
	Use:   "now",
	Short: "Display the currently playing Spotify track",
	Long: `Query Spotify and display the currently playing track.

The output format can be customized in ~/.config/timewarp/config.yaml
using a Go template. Available fields: .Name, .Artist, .Album, .Duration, .Position

Exit codes:
  0 - Track is currently playing
  1 - Nothing playing, paused, or not authenticated`,
	RunE: runNow,
}

func init() {
	rootCmd.AddCommand(nowCmd)

	// Add format flag to override config
	nowCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	nowCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	// Add marquee flag to enable scrolling
	nowCmd.Flags().Bool("marquee", false, "Enable marquee scrolling for long text (overrides config)")
}

// nowPlaying is the template context for the output format.
type nowPlaying struct {
	Name     string
	Artist   string
	Album    string
	Duration string
	Position string
}

func runNow(cmd *cobra.Command, args []string) error {
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

	// Check for format flag override
	formatFlag, _ := cmd.Flags().GetString("format")
	if formatFlag != "" {
		sess.cfg.OutputFormat = formatFlag
	}

	cred := sess.creds.Get()
	state, err := sess.spotify.CurrentlyPlaying(ctx, cred.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to get current track: %w", err)
	}

	// If nothing is playing or paused, exit with code 1
	if state == nil || state.Item == nil || !state.IsPlaying {
		os.Exit(1)
		return nil
	}

	artist := ""
	if len(state.Item.Artists) > 0 {
		artist = state.Item.Artists[0].Name
	}
	playing := nowPlaying{
		Name:     state.Item.Name,
		Artist:   artist,
		Album:    state.Item.Album.Name,
		Duration: formatMs(state.Item.DurationMs),
		Position: formatMs(state.ProgressMs),
	}

	// Format and print output
	output, err := formatNowPlaying(playing, sess.cfg.OutputFormat)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	// Apply width padding/marquee if requested
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = sess.cfg.OutputWidth
	}

	marquee, _ := cmd.Flags().GetBool("marquee")
	if !marquee && !cmd.Flags().Changed("marquee") {
		// Flag not set, use config default
		marquee = sess.cfg.MarqueeEnabled
	}

	if width > 0 {
		if marquee {
			output = marqueeText(output, width, sess.cfg.MarqueeSpeed, sess.cfg.MarqueeSeparator)
		} else {
			output = padToWidth(output, width)
		}
	}

	fmt.Println(output)
	return nil
}

// formatNowPlaying applies the template to the track data
func formatNowPlaying(playing nowPlaying, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, playing); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// formatMs renders a millisecond duration as m:ss.
func formatMs(ms int) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
// If text is shorter than width, pads with spaces.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text // no padding requested
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		// Truncate with "..." suffix
		// We need to manually truncate and add "..." then pad if needed
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			// If width is too small, just return ellipsis truncated to width
			return runewidth.Truncate(ellipsis, width, "")
		}

		// Truncate to (width - ellipsisWidth) and add ellipsis
		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Ensure we're exactly at the target width (in case truncate was imprecise)
		resultWidth := runewidth.StringWidth(result)
		if resultWidth < width {
			padding := strings.Repeat(" ", width-resultWidth)
			return result + padding
		} else if resultWidth > width {
			// Shouldn't happen, but handle it just in case
			return runewidth.Truncate(result, width, "")
		}
		return result
	} else if currentWidth < width {
		// Pad with spaces
		padding := strings.Repeat(" ", width-currentWidth)
		return text + padding
	}

	return text // exactly the right width
}

// marqueeText creates a scrolling marquee effect for text that exceeds the target width.
// If text fits within width, returns static padded text.
// If text is longer, creates a scrolling window using timestamp-based positioning.
//
// Algorithm:
// 1. Create extended text: "original{separator}original" for continuous looping
// 2. Calculate scroll position: time.Now().Unix() * speed % len(extended)
//   - speed is in characters per second
//   - position wraps around to create infinite loop
//   - deterministic: same timestamp = same output (important for testing)
//
// 3. Extract a window of exactly 'width' display columns starting at position
// 4. Pad with spaces if needed to ensure exact width
//
// Interaction with tmux:
// - tmux refreshes status bar at discrete intervals (status-interval, typically 5s)
// - Each refresh calls this function with a new timestamp
// - Creates step-animation effect (not smooth scrolling)
// - Example: speed=2, interval=5s → advances 10 chars per visual update
// - Users can tune speed based on their tmux interval for optimal readability
//
// Edge cases:
// - Short text (fits in width): returns static padded text (no scrolling)
// - Very long text: will eventually cycle through entire text
// - Unicode/emoji: handled correctly using runewidth for display column calculation
func marqueeText(text string, width int, speed int, separator string) string {
	if width <= 0 {
		return text
	}

	textWidth := runewidth.StringWidth(text)

	// If text fits, just pad normally (no scrolling needed)
	if textWidth <= width {
		return padToWidth(text, width)
	}

	// Create extended text: "original + separator + original"
	// This creates a continuous loop
	extended := text + separator + text
	extendedRunes := []rune(extended)

	// Calculate scroll position based on current time
	// This creates a deterministic, timestamp-based scroll position that:
	// - Advances continuously over time (speed chars/second)
	// - Wraps around to create infinite loop (modulo totalChars)
	// - Is stateless (no need to persist position between calls)
	// - Is testable (can mock time.Now for unit tests)
	now := time.Now().Unix()
	totalChars := len(extendedRunes)
	// Position = (current_unix_time * chars_per_second) % total_chars
	// Example: speed=2, time=10s → position = 20 % totalChars
	position := int(now*int64(speed)) % totalChars

	// Build the window starting at position
	var result []rune
	resultWidth := 0

	for i := 0; i < totalChars && resultWidth < width; i++ {
		idx := (position + i) % totalChars
		r := extendedRunes[idx]
		rw := runewidth.RuneWidth(r)

		// Don't exceed target width
		if resultWidth+rw <= width {
			result = append(result, r)
			resultWidth += rw
		} else {
			break
		}
	}

	// Pad with spaces if needed to reach exact width
	if resultWidth < width {
		padding := strings.Repeat(" ", width-resultWidth)
		return string(result) + padding
	}

	return string(result)
}
