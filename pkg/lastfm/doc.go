// Package lastfm provides a read-only client for the Last.fm API 2.0.
//
// This package implements the subset of the Last.fm API needed to walk a
// listener's charted history: user info, the weekly chart list, and weekly
// track charts. It is designed to be used as a standalone SDK.
//
// All requests go over HTTPS with JSON responses. Transient network failures
// and server errors are retried up to three times with linearly increasing
// backoff before being surfaced to the caller.
//
// Example usage:
//
//	import "github.com/foxtrapper121/timewarp/pkg/lastfm"
//
//	client, err := lastfm.NewClient(lastfm.Config{
//	    APIKey: "your-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	user, err := client.User().GetInfo(ctx, "foxtrapper121")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("registered:", user.Registered)
package lastfm
