package provider

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/oggyb/vibecheck/internal/config"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

const (
	SearchArtist = "artist"
	SearchTrack  = "track"

	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
)

type SpotifyArtist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
	URL        string   `json:"url"`
	ImageURL   string   `json:"imageUrl,omitempty"`
}

type SpotifyTrack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	PreviewURL string   `json:"previewUrl,omitempty"`
	URL        string   `json:"url"`
}

type SpotifySearch struct {
	Artists []SpotifyArtist `json:"artists"`
	Tracks  []SpotifyTrack  `json:"tracks"`
}

// wire format subset of GET /v1/search
type spotifySearchResponse struct {
	Artists struct {
		Items []struct {
			ID           string            `json:"id"`
			Name         string            `json:"name"`
			Genres       []string          `json:"genres"`
			Popularity   int               `json:"popularity"`
			ExternalURLs map[string]string `json:"external_urls"`
			Images       []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"items"`
	} `json:"artists"`
	Tracks struct {
		Items []struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			PreviewURL string `json:"preview_url"`
			Artists    []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			ExternalURLs map[string]string `json:"external_urls"`
		} `json:"items"`
	} `json:"tracks"`
}

// Spotify searches the Spotify Web API catalog.
type Spotify struct {
	c *client
}

func NewSpotify(cfg config.ProvidersConfig, log *slog.Logger) *Spotify {
	return &Spotify{c: newClient("spotify", cfg.SpotifyURL, cfg.SpotifyToken, cfg.Timeout, log)}
}

// Search looks up artists or tracks matching q. kind is SearchArtist or
// SearchTrack.
func (s *Spotify) Search(ctx context.Context, q, kind string, limit int) (*SpotifySearch, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, svcErr.InvalidArgument("q is required")
	}
	if kind == "" {
		kind = SearchArtist
	}
	if kind != SearchArtist && kind != SearchTrack {
		return nil, svcErr.InvalidArgument("type must be artist or track")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = min(limit, MaxSearchLimit)

	var resp spotifySearchResponse
	err := s.c.get(ctx, "/v1/search", url.Values{
		"q":     {q},
		"type":  {kind},
		"limit": {strconv.Itoa(limit)},
	}, &resp)
	if err != nil {
		return nil, err
	}

	out := &SpotifySearch{Artists: []SpotifyArtist{}, Tracks: []SpotifyTrack{}}
	for _, a := range resp.Artists.Items {
		artist := SpotifyArtist{
			ID:         a.ID,
			Name:       a.Name,
			Genres:     a.Genres,
			Popularity: a.Popularity,
			URL:        a.ExternalURLs["spotify"],
		}
		if artist.Genres == nil {
			artist.Genres = []string{}
		}
		if len(a.Images) > 0 {
			artist.ImageURL = a.Images[0].URL
		}
		out.Artists = append(out.Artists, artist)
	}
	for _, t := range resp.Tracks.Items {
		track := SpotifyTrack{
			ID:         t.ID,
			Name:       t.Name,
			Album:      t.Album.Name,
			PreviewURL: t.PreviewURL,
			URL:        t.ExternalURLs["spotify"],
			Artists:    make([]string, 0, len(t.Artists)),
		}
		for _, a := range t.Artists {
			track.Artists = append(track.Artists, a.Name)
		}
		out.Tracks = append(out.Tracks, track)
	}
	return out, nil
}
