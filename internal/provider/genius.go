package provider

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/oggyb/vibecheck/internal/config"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
)

type GeniusSong struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	FullTitle    string `json:"fullTitle"`
	Artist       string `json:"artist"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// wire format subset of GET /search
type geniusSearchResponse struct {
	Response struct {
		Hits []struct {
			Type   string `json:"type"`
			Result struct {
				ID            int64  `json:"id"`
				Title         string `json:"title"`
				FullTitle     string `json:"full_title"`
				URL           string `json:"url"`
				Thumbnail     string `json:"song_art_image_thumbnail_url"`
				PrimaryArtist struct {
					Name string `json:"name"`
				} `json:"primary_artist"`
			} `json:"result"`
		} `json:"hits"`
	} `json:"response"`
}

// Genius searches songs on the Genius API.
type Genius struct {
	c *client
}

func NewGenius(cfg config.ProvidersConfig, log *slog.Logger) *Genius {
	return &Genius{c: newClient("genius", cfg.GeniusURL, cfg.GeniusToken, cfg.Timeout, log)}
}

// Search returns songs matching q. Non-song hits are skipped.
func (g *Genius) Search(ctx context.Context, q string) ([]GeniusSong, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, svcErr.InvalidArgument("q is required")
	}

	var resp geniusSearchResponse
	if err := g.c.get(ctx, "/search", url.Values{"q": {q}}, &resp); err != nil {
		return nil, err
	}

	out := make([]GeniusSong, 0, len(resp.Response.Hits))
	for _, h := range resp.Response.Hits {
		if h.Type != "" && h.Type != "song" {
			continue
		}
		out = append(out, GeniusSong{
			ID:           h.Result.ID,
			Title:        h.Result.Title,
			FullTitle:    h.Result.FullTitle,
			Artist:       h.Result.PrimaryArtist.Name,
			URL:          h.Result.URL,
			ThumbnailURL: h.Result.Thumbnail,
		})
	}
	return out, nil
}
