package cmd

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/foxtrapper121/timewarp/internal/auth"
	"github.com/foxtrapper121/timewarp/internal/config"
	"github.com/foxtrapper121/timewarp/internal/spotify"
	"github.com/foxtrapper121/timewarp/internal/store"
)

// session bundles the pieces most commands need: configuration, the
// on-disk store, the in-memory credential store seeded from it, and a
// Spotify client.
type session struct {
	cfg     *config.Config
	db      *store.DB
	creds   *auth.Store
	spotify *spotify.Client
	logger  zerolog.Logger
}

// openSession loads configuration, opens the local database, and
// restores any persisted credential into the in-memory store.
func openSession(logger zerolog.Logger) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Spotify.ClientID == "" {
		return nil, fmt.Errorf("Spotify client ID not configured. Set spotify.client_id in %s/config.yaml", config.GetConfigDir())
	}

	db, err := store.Open(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	creds := auth.NewStore()
	cred, err := db.LoadCredential()
	if err != nil {
		db.Close()
		return nil, err
	}
	if cred != nil {
		creds.Set(*cred)
	}

	client := spotify.NewClient(spotify.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURI:  cfg.Spotify.RedirectURI,
		Logger:       logger,
	})

	return &session{
		cfg:     cfg,
		db:      db,
		creds:   creds,
		spotify: client,
		logger:  logger,
	}, nil
}

// requireCredential fails with a uniform message when no credential is
// available.
func (s *session) requireCredential() error {
	if s.creds.Get() == nil {
		return fmt.Errorf("not authenticated with Spotify. Run 'timewarp auth' first")
	}
	return nil
}

// close releases the session's resources.
func (s *session) close() {
	_ = s.db.Close()
}
