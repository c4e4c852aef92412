/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timewarp",
	Short: "Monthly Last.fm top tracks with Spotify playback",
	Long: `timewarp walks a Last.fm listener's history one calendar month at a
time, surfacing the most played track of each month back to the
account's registration.

It authorizes against Spotify so those tracks can be played directly,
and provides playback commands (play, pause, next, prev) plus a watch
mode that mirrors the remote player's state.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
