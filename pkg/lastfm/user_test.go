package lastfm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestUserService_GetInfo tests the GetInfo method.
func TestUserService_GetInfo(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		statusCode     int
		wantName       string
		wantRegistered time.Time
		wantErr        bool
		errContains    string
	}{
		{
			name: "success",
			response: `{"user":{"name":"foxtrapper121","realname":"","url":"https://www.last.fm/user/foxtrapper121",` +
				`"playcount":"54321","registered":{"unixtime":"1579046400","#text":1579046400}}}`,
			statusCode:     http.StatusOK,
			wantName:       "foxtrapper121",
			wantRegistered: time.Date(2020, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:        "api error - user not found",
			response:    `{"error":6,"message":"User not found"}`,
			statusCode:  http.StatusNotFound,
			wantErr:     true,
			errContains: "error 6",
		},
		{
			name:        "api error envelope with 200 status",
			response:    `{"error":10,"message":"Invalid API key"}`,
			statusCode:  http.StatusOK,
			wantErr:     true,
			errContains: "error 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != "GET" {
					t.Errorf("expected GET request, got %s", r.Method)
				}

				q := r.URL.Query()
				if method := q.Get("method"); method != "user.getInfo" {
					t.Errorf("expected method user.getInfo, got %s", method)
				}
				if apiKey := q.Get("api_key"); apiKey != "test-api-key" {
					t.Errorf("expected api_key test-api-key, got %s", apiKey)
				}
				if format := q.Get("format"); format != "json" {
					t.Errorf("expected format json, got %s", format)
				}
				if user := q.Get("user"); user != "foxtrapper121" {
					t.Errorf("expected user foxtrapper121, got %s", user)
				}

				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.response)); err != nil {
					t.Fatalf("failed to write response body: %v", err)
				}
			}))
			defer server.Close()

			client, err := NewClient(Config{
				APIKey:  "test-api-key",
				BaseURL: server.URL,
			})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			ctx := context.Background()
			user, err := client.User().GetInfo(ctx, "foxtrapper121")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error to contain %q, got %q", tt.errContains, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if user.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, user.Name)
			}
			if !user.Registered.Equal(tt.wantRegistered) {
				t.Errorf("expected registered %v, got %v", tt.wantRegistered, user.Registered)
			}
		})
	}
}

// TestUserService_GetWeeklyChartList tests parsing of the chart list.
func TestUserService_GetWeeklyChartList(t *testing.T) {
	response := `{"weeklychartlist":{"chart":[` +
		`{"#text":"","from":"1108296000","to":"1108900800"},` +
		`{"#text":"","from":"1108900800","to":"1109505600"}` +
		`],"@attr":{"user":"foxtrapper121"}}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if method := r.URL.Query().Get("method"); method != "user.getWeeklyChartList" {
			t.Errorf("expected method user.getWeeklyChartList, got %s", method)
		}
		if _, err := w.Write([]byte(response)); err != nil {
			t.Fatalf("failed to write response body: %v", err)
		}
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	charts, err := client.User().GetWeeklyChartList(context.Background(), "foxtrapper121")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(charts) != 2 {
		t.Fatalf("expected 2 charts, got %d", len(charts))
	}
	if charts[0].From != 1108296000 || charts[0].To != 1108900800 {
		t.Errorf("unexpected first chart window: %+v", charts[0])
	}
	if charts[1].To != 1109505600 {
		t.Errorf("unexpected last chart window: %+v", charts[1])
	}
}

// TestUserService_TopTrackForWindow tests top-track extraction including
// the empty-month case.
func TestUserService_TopTrackForWindow(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantTrack  string
		wantArtist string
		wantAbsent bool
	}{
		{
			name: "month with activity",
			response: `{"weeklytrackchart":{"track":[` +
				`{"name":"Paranoid Android","url":"https://www.last.fm/music/Radiohead/_/Paranoid+Android",` +
				`"artist":{"#text":"Radiohead","mbid":""},"playcount":"42",` +
				`"image":[{"size":"small","#text":"https://example.com/s.png"}],"@attr":{"rank":"1"}},` +
				`{"name":"Karma Police","url":"","artist":{"#text":"Radiohead"},"playcount":"30","@attr":{"rank":"2"}}` +
				`],"@attr":{"user":"foxtrapper121","from":"1714521600","to":"1717200001"}}}`,
			wantTrack:  "Paranoid Android",
			wantArtist: "Radiohead",
		},
		{
			name:       "month with no activity is absent, not an error",
			response:   `{"weeklytrackchart":{"track":[],"@attr":{"user":"foxtrapper121","from":"1714521600","to":"1717200001"}}}`,
			wantAbsent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if method := q.Get("method"); method != "user.getWeeklyTrackChart" {
					t.Errorf("expected method user.getWeeklyTrackChart, got %s", method)
				}
				if from := q.Get("from"); from != "1714521600" {
					t.Errorf("expected from 1714521600, got %s", from)
				}
				if to := q.Get("to"); to != "1717200001" {
					t.Errorf("expected to 1717200001, got %s", to)
				}
				if _, err := w.Write([]byte(tt.response)); err != nil {
					t.Fatalf("failed to write response body: %v", err)
				}
			}))
			defer server.Close()

			client, err := NewClient(Config{APIKey: "test-api-key", BaseURL: server.URL})
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}

			track, err := client.User().TopTrackForWindow(context.Background(), "foxtrapper121", 1714521600, 1717200001)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantAbsent {
				if track != nil {
					t.Fatalf("expected absent track, got %+v", track)
				}
				return
			}

			if track == nil {
				t.Fatal("expected a track, got nil")
			}
			if track.Name != tt.wantTrack {
				t.Errorf("expected track %q, got %q", tt.wantTrack, track.Name)
			}
			if track.Artist != tt.wantArtist {
				t.Errorf("expected artist %q, got %q", tt.wantArtist, track.Artist)
			}
			if track.Rank != 1 {
				t.Errorf("expected rank 1, got %d", track.Rank)
			}
			if track.PlayCount != 42 {
				t.Errorf("expected playcount 42, got %d", track.PlayCount)
			}
		})
	}
}
