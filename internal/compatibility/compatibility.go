// Package compatibility scores how well two users' music tastes line up.
//
// The score blends three overlap ratios (genres, artists, songs) and is then
// lifted to a presentation floor. The floor is a product decision, kept in
// MinScore and DefaultScore so it can change without touching the math.
package compatibility

import (
	"math"

	"github.com/oggyb/vibecheck/internal/db"
)

const (
	// MinScore is the lowest score shown once any dimension had data on both sides.
	MinScore = 60
	// DefaultScore is used when no dimension had data on both sides.
	DefaultScore = 75
	// MaxScore caps the result.
	MaxScore = 100

	GenreWeight  = 40
	ArtistWeight = 40
	SongWeight   = 20

	// MaxSharedInterests bounds SharedInterests.
	MaxSharedInterests = 3
	maxSharedArtists   = 2
)

// Taste is the part of a user profile the scorer looks at.
// Nil and empty slices are equivalent.
type Taste struct {
	Genres  []string
	Artists []string
	Songs   []string
}

// TasteOf extracts the taste vectors of u. A nil user has an empty taste.
func TasteOf(u *db.User) Taste {
	if u == nil {
		return Taste{}
	}
	return Taste{
		Genres:  u.FavoriteGenres,
		Artists: u.FavoriteArtists,
		Songs:   u.FavoriteSongs,
	}
}

// Score returns the compatibility of a and b in [MinScore, MaxScore], or
// DefaultScore when there was nothing to compare. Symmetric and pure.
func Score(a, b Taste) int {
	var (
		total   float64
		hasData bool
	)

	dims := []struct {
		a, b   []string
		weight float64
	}{
		{a.Genres, b.Genres, GenreWeight},
		{a.Artists, b.Artists, ArtistWeight},
		{a.Songs, b.Songs, SongWeight},
	}

	for _, d := range dims {
		if len(d.a) == 0 || len(d.b) == 0 {
			continue
		}
		hasData = true
		overlap := len(intersect(d.a, d.b))
		size := max(distinctCount(d.a), distinctCount(d.b))
		total += float64(overlap) / float64(size) * d.weight
	}

	if !hasData {
		return DefaultScore
	}

	score := max(MinScore, int(math.Round(total)))
	return min(score, MaxScore)
}

// SharedInterests lists overlapping genres first, then up to two overlapping
// artists, truncated to MaxSharedInterests entries.
func SharedInterests(a, b Taste) []string {
	out := SharedGenres(a, b)

	artists := SharedArtists(a, b)
	if len(artists) > maxSharedArtists {
		artists = artists[:maxSharedArtists]
	}
	out = append(out, artists...)

	if len(out) > MaxSharedInterests {
		out = out[:MaxSharedInterests]
	}
	return out
}

// SharedGenres returns every genre present in both tastes, in a's order.
func SharedGenres(a, b Taste) []string {
	return intersect(a.Genres, b.Genres)
}

// SharedArtists returns every artist present in both tastes, in a's order.
func SharedArtists(a, b Taste) []string {
	return intersect(a.Artists, b.Artists)
}

// intersect returns the distinct values of a that also appear in b, keeping
// a's order. Matching is exact and case-sensitive.
func intersect(a, b []string) []string {
	out := []string{}
	if len(a) == 0 || len(b) == 0 {
		return out
	}

	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}

	seen := make(map[string]struct{}, len(a))
	for _, v := range a {
		if _, ok := inB[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func distinctCount(values []string) int {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return len(set)
}
