package compatibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/oggyb/vibecheck/internal/compatibility"
	"github.com/oggyb/vibecheck/internal/db"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		a, b compatibility.Taste
		want int
	}{
		{
			name: "no data on either side uses the default",
			want: compatibility.DefaultScore,
		},
		{
			name: "data on one side only uses the default",
			a:    compatibility.Taste{Genres: []string{"Indie"}, Artists: []string{"Tame Impala"}},
			want: compatibility.DefaultScore,
		},
		{
			name: "disjoint vectors hit the floor",
			a:    compatibility.Taste{Genres: []string{"Jazz"}, Artists: []string{"Miles Davis"}, Songs: []string{"So What"}},
			b:    compatibility.Taste{Genres: []string{"Metal"}, Artists: []string{"Slayer"}, Songs: []string{"Raining Blood"}},
			want: compatibility.MinScore,
		},
		{
			name: "genres and artists fully shared",
			a:    compatibility.Taste{Genres: []string{"Indie", "Lo-fi"}, Artists: []string{"Tame Impala"}},
			b:    compatibility.Taste{Genres: []string{"Indie", "Lo-fi"}, Artists: []string{"Tame Impala"}},
			want: 80,
		},
		{
			name: "all three dimensions fully shared",
			a:    compatibility.Taste{Genres: []string{"Pop"}, Artists: []string{"Robyn"}, Songs: []string{"Dancing On My Own"}},
			b:    compatibility.Taste{Genres: []string{"Pop"}, Artists: []string{"Robyn"}, Songs: []string{"Dancing On My Own"}},
			want: 100,
		},
		{
			name: "identical genres only reflects the genre weight lifted to the floor",
			a:    compatibility.Taste{Genres: []string{"Rock", "Blues"}},
			b:    compatibility.Taste{Genres: []string{"Blues", "Rock"}},
			want: compatibility.MinScore,
		},
		{
			name: "partial overlap uses the larger vector as denominator",
			a:    compatibility.Taste{Genres: []string{"Rock", "Pop", "Jazz", "Funk"}, Artists: []string{"A", "B"}, Songs: []string{"x"}},
			b:    compatibility.Taste{Genres: []string{"Rock", "Pop"}, Artists: []string{"A", "B"}, Songs: []string{"x"}},
			// 2/4*40 + 2/2*40 + 1/1*20 = 80
			want: 80,
		},
		{
			name: "rounding to nearest",
			a:    compatibility.Taste{Genres: []string{"a", "b", "c"}, Artists: []string{"x"}, Songs: []string{"s", "t", "u"}},
			b:    compatibility.Taste{Genres: []string{"a", "b", "c"}, Artists: []string{"x"}, Songs: []string{"s"}},
			// 40 + 40 + 1/3*20 = 86.67
			want: 87,
		},
		{
			name: "matching is case sensitive",
			a:    compatibility.Taste{Genres: []string{"indie"}, Artists: []string{"tame impala"}},
			b:    compatibility.Taste{Genres: []string{"Indie"}, Artists: []string{"Tame Impala"}},
			want: compatibility.MinScore,
		},
		{
			name: "duplicates count once",
			a:    compatibility.Taste{Genres: []string{"Indie", "Indie"}, Artists: []string{"X", "X"}},
			b:    compatibility.Taste{Genres: []string{"Indie"}, Artists: []string{"X"}},
			want: 80,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, compatibility.Score(tc.a, tc.b))
			assert.Equal(t, tc.want, compatibility.Score(tc.b, tc.a), "score must be symmetric")
		})
	}
}

func TestScore_Bounds(t *testing.T) {
	tastes := []compatibility.Taste{
		{},
		{Genres: []string{"Indie"}},
		{Genres: []string{"Indie", "Rock"}, Artists: []string{"Wilco"}},
		{Artists: []string{"Wilco", "Spoon"}, Songs: []string{"Jesus, Etc."}},
		{Genres: []string{"Rock"}, Artists: []string{"Spoon"}, Songs: []string{"The Underdog", "Jesus, Etc."}},
	}

	for _, a := range tastes {
		for _, b := range tastes {
			got := compatibility.Score(a, b)
			assert.GreaterOrEqual(t, got, compatibility.MinScore)
			assert.LessOrEqual(t, got, compatibility.MaxScore)
			assert.Equal(t, got, compatibility.Score(a, b), "score must be deterministic")
			assert.Equal(t, got, compatibility.Score(b, a))
		}
	}
}

func TestSharedInterests(t *testing.T) {
	t.Run("empty when nothing overlaps", func(t *testing.T) {
		got := compatibility.SharedInterests(compatibility.Taste{}, compatibility.Taste{Genres: []string{"Indie"}})
		assert.Empty(t, got)
	})

	t.Run("genres first then artists", func(t *testing.T) {
		a := compatibility.Taste{Genres: []string{"Indie"}, Artists: []string{"Tame Impala", "MGMT"}}
		b := compatibility.Taste{Genres: []string{"Indie"}, Artists: []string{"MGMT", "Tame Impala"}}
		assert.Equal(t, []string{"Indie", "Tame Impala", "MGMT"}, compatibility.SharedInterests(a, b))
	})

	t.Run("at most two artists", func(t *testing.T) {
		a := compatibility.Taste{Artists: []string{"A", "B", "C"}}
		b := compatibility.Taste{Artists: []string{"A", "B", "C"}}
		assert.Equal(t, []string{"A", "B"}, compatibility.SharedInterests(a, b))
	})

	t.Run("truncated to three keeping genres", func(t *testing.T) {
		a := compatibility.Taste{Genres: []string{"g1", "g2", "g3", "g4"}, Artists: []string{"A"}}
		b := compatibility.Taste{Genres: []string{"g1", "g2", "g3", "g4"}, Artists: []string{"A"}}
		assert.Equal(t, []string{"g1", "g2", "g3"}, compatibility.SharedInterests(a, b))
	})

	t.Run("never includes items missing from either side", func(t *testing.T) {
		a := compatibility.Taste{Genres: []string{"Indie", "Rock"}, Artists: []string{"X", "Y"}, Songs: []string{"S"}}
		b := compatibility.Taste{Genres: []string{"Rock", "Pop"}, Artists: []string{"Y"}, Songs: []string{"S"}}
		got := compatibility.SharedInterests(a, b)
		require.LessOrEqual(t, len(got), compatibility.MaxSharedInterests)
		assert.Equal(t, []string{"Rock", "Y"}, got)
	})
}

func TestTasteOf(t *testing.T) {
	assert.Equal(t, compatibility.Taste{}, compatibility.TasteOf(nil))

	u := &db.User{
		FavoriteGenres:  datatypes.JSONSlice[string]{"Indie", "Lo-fi"},
		FavoriteArtists: datatypes.JSONSlice[string]{"Tame Impala"},
	}
	got := compatibility.TasteOf(u)
	assert.Equal(t, []string{"Indie", "Lo-fi"}, got.Genres)
	assert.Equal(t, []string{"Tame Impala"}, got.Artists)
	assert.Empty(t, got.Songs)

	// the scenario from the product brief
	assert.Equal(t, 80, compatibility.Score(got, got))
}
