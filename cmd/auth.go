package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/foxtrapper121/timewarp/internal/auth"
)

var authFlowFlag string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize with Spotify",
	Long: `Authorize timewarp with Spotify so it can control playback.

This command will guide you through the Spotify authorization process:
1. An authorization URL is printed for you to open in a browser
2. After you approve, Spotify redirects to a local callback server
3. The resulting access token is saved for the other commands

Two flow variants are supported:
  pkce     - Authorization code with PKCE (default, supports refresh)
  implicit - Implicit grant (token in the redirect fragment, expires in 1h)

The Spotify app's client ID and redirect URI must be configured in
~/.config/timewarp/config.yaml first. Register the redirect URI with
your Spotify app at https://developer.spotify.com/dashboard`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.Flags().StringVar(&authFlowFlag, "flow", "", "Authorization flow: pkce or implicit (overrides config)")
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := setupLogger("", "info")

	sess, err := openSession(logger)
	if err != nil {
		return err
	}
	defer sess.close()

	flowName := sess.cfg.AuthFlow
	if authFlowFlag != "" {
		flowName = authFlowFlag
	}

	// A fresh authorization starts from a clean handshake state.
	if err := sess.db.ClearSession(); err != nil {
		return err
	}

	flow, err := buildFlow(flowName, sess, logger)
	if err != nil {
		return err
	}

	authorizeURL, err := flow.AuthorizeURL()
	if err != nil {
		return fmt.Errorf("failed to build authorization URL: %w", err)
	}

	fmt.Println("Spotify Authorization")
	fmt.Println("=====================")
	fmt.Println()
	fmt.Println("Please visit this URL to authorize timewarp:")
	fmt.Printf("\n  %s\n\n", authorizeURL)
	fmt.Println("Waiting for the redirect... (Ctrl-C to abort)")

	server, err := auth.NewCallbackServer(flow, sess.cfg.Spotify.RedirectURI, logger)
	if err != nil {
		return err
	}

	cred, err := server.Listen(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if err := sess.db.SaveCredential(*cred); err != nil {
		return err
	}

	fmt.Printf("\n✓ Authorization successful (%s flow)\n", flow.Name())
	fmt.Printf("✓ Credential saved, valid until %s\n", cred.ExpiresAt.Local().Format("15:04:05"))
	fmt.Println("\nYou can now use 'timewarp history' and the playback commands.")

	return nil
}

// buildFlow constructs the configured flow variant.
func buildFlow(name string, sess *session, logger zerolog.Logger) (auth.Flow, error) {
	switch name {
	case "pkce", "":
		cfg := sess.spotify.OAuthConfig(auth.Scopes)
		return auth.NewPKCEFlow(cfg, sess.db, sess.creds, logger), nil
	case "implicit":
		return auth.NewImplicitFlow(
			sess.spotify.AuthorizeURL(),
			sess.cfg.Spotify.ClientID,
			sess.cfg.Spotify.RedirectURI,
			sess.creds,
			logger,
		), nil
	default:
		return nil, fmt.Errorf("unknown auth flow %q (must be pkce or implicit)", name)
	}
}
