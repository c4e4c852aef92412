package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/foxtrapper121/timewarp/internal/config"
	"github.com/foxtrapper121/timewarp/internal/spotify"
	"github.com/foxtrapper121/timewarp/internal/timeline"
	"github.com/foxtrapper121/timewarp/pkg/lastfm"
)

var (
	historyUser     string
	historyPages    int
	historyPageSize int
	historyArtwork  bool
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the top track of each month",
	Long: `Walk a Last.fm listener's history backward one calendar month at a
time and print the most played track of each month, newest first.

The walk starts at the month before the listener's latest charted week
and continues back to the month after their account registration.
Months without listening activity are shown as blank.

Results are fetched in pages of 14 months; use --pages to stop after a
number of pages instead of walking the full history.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyUser, "user", "u", "", "Last.fm username (overrides config)")
	historyCmd.Flags().IntVar(&historyPages, "pages", 0, "Number of pages to fetch (0 = all)")
	historyCmd.Flags().IntVar(&historyPageSize, "page-size", 0, "Months per page (default from config)")
	historyCmd.Flags().BoolVar(&historyArtwork, "artwork", false, "Look up Spotify artwork URLs for each track")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	username := historyUser
	if username == "" {
		username = cfg.Username
	}
	if username == "" {
		return fmt.Errorf("no Last.fm username. Use --user or set username in %s/config.yaml", config.GetConfigDir())
	}
	if cfg.LastFM.APIKey == "" {
		return fmt.Errorf("Last.fm API key not configured. Set lastfm.api_key in %s/config.yaml", config.GetConfigDir())
	}

	logger := setupLogger("", "error")

	client, err := lastfm.NewClient(lastfm.Config{
		APIKey: cfg.LastFM.APIKey,
		Logger: lastfmLogger{logger},
	})
	if err != nil {
		return fmt.Errorf("failed to create Last.fm client: %w", err)
	}

	user, err := client.User().GetInfo(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	charts, err := client.User().GetWeeklyChartList(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to fetch chart list: %w", err)
	}
	if len(charts) == 0 {
		fmt.Printf("%s has no charted listening history yet.\n", user.Name)
		return nil
	}

	latest := charts[len(charts)-1].To
	windows := timeline.Windows(user.Registered.Unix(), latest)
	if len(windows) == 0 {
		fmt.Printf("%s has no complete months of history yet.\n", user.Name)
		return nil
	}

	pageSize := historyPageSize
	if pageSize == 0 {
		pageSize = cfg.PageSize
	}

	var searcher *artworkSearcher
	if historyArtwork {
		searcher, err = newArtworkSearcher(ctx, cfg)
		if err != nil {
			return err
		}
	}

	agg := timeline.NewAggregator(client.User(), username, windows, pageSize, logger)

	fmt.Printf("Top track per month for %s (%d months)\n\n", user.Name, len(windows))

	fetched := 0
	for next := 0; ; {
		result, err := agg.FetchPage(ctx, next)
		if err != nil {
			return err
		}

		for _, month := range result.Data {
			printMonth(ctx, month, searcher)
		}

		fetched++
		if result.Next == nil || (historyPages > 0 && fetched >= historyPages) {
			break
		}
		next = *result.Next
	}

	return nil
}

func printMonth(ctx context.Context, month timeline.FetchedMonth, searcher *artworkSearcher) {
	label := month.Window.Start().Format("Jan 2006")
	if month.TopTrack == nil {
		fmt.Printf("%-9s\n", label)
		return
	}

	track := fmt.Sprintf("%s - %s", month.TopTrack.Artist, month.TopTrack.Name)
	fmt.Printf("%-9s %s (%d plays)", label, padToWidth(track, 50), month.TopTrack.PlayCount)

	if searcher != nil {
		if url := searcher.artworkURL(ctx, month.TopTrack.Name, month.TopTrack.Artist); url != "" {
			fmt.Printf("  %s", url)
		}
	}
	fmt.Println()
}

// lastfmLogger adapts zerolog to the lastfm package's Logger interface.
type lastfmLogger struct {
	logger zerolog.Logger
}

func (l lastfmLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// artworkSearcher decorates history rows with Spotify artwork. It uses
// an app-level token so it works before the user has authorized.
type artworkSearcher struct {
	client *spotify.Client
	token  string
}

func newArtworkSearcher(ctx context.Context, cfg *config.Config) (*artworkSearcher, error) {
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return nil, fmt.Errorf("artwork lookup needs spotify.client_id and spotify.client_secret in %s/config.yaml", config.GetConfigDir())
	}

	client := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
	})

	token, err := client.AppToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain Spotify app token: %w", err)
	}

	return &artworkSearcher{client: client, token: token}, nil
}

func (s *artworkSearcher) artworkURL(ctx context.Context, name, artist string) string {
	track, err := s.client.SearchTrack(ctx, s.token, name, artist)
	if err != nil || track == nil || len(track.Album.Images) == 0 {
		return ""
	}
	return track.Album.Images[0].URL
}
