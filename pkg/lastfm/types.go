package lastfm

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// User represents a Last.fm user profile.
type User struct {
	Name       string    // Last.fm username
	RealName   string    // Display name, may be empty
	URL        string    // Profile URL
	Registered time.Time // Account registration time
	PlayCount  int64     // Lifetime scrobble count
}

// WeeklyChart identifies one of the service's 7-day chart windows.
// From and To are epoch seconds.
type WeeklyChart struct {
	From int64
	To   int64
}

// Image is a sized artwork URL.
type Image struct {
	Size string // small, medium, large, extralarge
	URL  string
}

// ChartTrack is a ranked track from a weekly track chart.
type ChartTrack struct {
	Rank      int
	Name      string
	Artist    string
	URL       string
	PlayCount int
	Images    []Image
}

// WeeklyTrackChart is the chart of tracks played within one window.
// Tracks are ordered by rank; the slice is empty for months with no
// listening activity, which is a valid result rather than an error.
type WeeklyTrackChart struct {
	From   int64
	To     int64
	Tracks []ChartTrack
}

// flexInt decodes the quoted integers the Last.fm JSON API emits
// ("playcount": "42"). Bare numbers are accepted too.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// Wire-format structs. Public types above are mapped from these in the
// service methods so callers never see the API's quoting quirks.

type rawImage struct {
	Size string `json:"size"`
	URL  string `json:"#text"`
}

func (r rawImage) toImage() Image {
	return Image{Size: r.Size, URL: r.URL}
}

type rawUserResponse struct {
	User struct {
		Name       string `json:"name"`
		RealName   string `json:"realname"`
		URL        string `json:"url"`
		PlayCount  flexInt `json:"playcount"`
		Registered struct {
			UnixTime flexInt `json:"unixtime"`
		} `json:"registered"`
	} `json:"user"`
}

type rawChartListResponse struct {
	WeeklyChartList struct {
		Chart []struct {
			From flexInt `json:"from"`
			To   flexInt `json:"to"`
		} `json:"chart"`
	} `json:"weeklychartlist"`
}

type rawTrackChartResponse struct {
	WeeklyTrackChart struct {
		Track []rawChartTrack `json:"track"`
		Attr  struct {
			From flexInt `json:"from"`
			To   flexInt `json:"to"`
		} `json:"@attr"`
	} `json:"weeklytrackchart"`
}

type rawChartTrack struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Artist struct {
		Name string `json:"#text"`
	} `json:"artist"`
	PlayCount flexInt    `json:"playcount"`
	Images    []rawImage `json:"image"`
	Attr      struct {
		Rank flexInt `json:"rank"`
	} `json:"@attr"`
}

func (r rawChartTrack) toChartTrack() ChartTrack {
	t := ChartTrack{
		Rank:      int(r.Attr.Rank),
		Name:      r.Name,
		Artist:    r.Artist.Name,
		URL:       r.URL,
		PlayCount: int(r.PlayCount),
	}
	for _, img := range r.Images {
		t.Images = append(t.Images, img.toImage())
	}
	return t
}

// unmarshal is a small helper shared by the services.
func unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
