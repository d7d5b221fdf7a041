// Package seed fills a ProfileStore with demo profiles, swipes and matches.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/oggyb/vibecheck/internal/compatibility"
	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/repository"
)

// DemoPassword is the password of every seeded user.
const DemoPassword = "password"

var (
	genres = []string{
		"Indie", "Jazz", "Hip-Hop", "Techno", "Soul", "Metal", "Folk", "House",
		"Punk", "Afrobeat", "Ambient", "R&B",
	}
	artists = []string{
		"Radiohead", "Khruangbin", "Kendrick Lamar", "Bonobo", "Little Simz",
		"Nina Simone", "Fela Kuti", "Bon Iver", "Four Tet", "Slowdive",
		"Erykah Badu", "Gojira", "Floating Points", "Big Thief",
	}
	songs = []string{
		"Weird Fishes", "Time (You and I)", "Alright", "Kerala", "Venom",
		"Feeling Good", "Water No Get Enemy", "Holocene", "Baby", "When the Sun Hits",
		"On & On", "Flying Whales", "LesAlpx", "Not",
	}
	cities = []string{"London", "Berlin", "Lisbon", "Manchester", "Amsterdam"}
)

// Options tunes Run.
type Options struct {
	Users int
	// SwipesPerUser is how many other users each user swipes on.
	SwipesPerUser int
	// Rand drives every random choice; pass a seeded one for repeatable data.
	Rand *rand.Rand
	Log  *slog.Logger
}

// Stats summarises what Run wrote.
type Stats struct {
	Users   int
	Swipes  int
	Matches int
}

// Run creates Options.Users profiles named user1..userN with random tastes
// and DemoPassword, then has every user swipe on SwipesPerUser others:
// about 70% likes, and every third swipe is made mutual so the demo always
// has matches.
func Run(ctx context.Context, store repository.ProfileStore, opts Options) (*Stats, error) {
	if opts.Users <= 0 {
		opts.Users = 20
	}
	if opts.SwipesPerUser <= 0 {
		opts.SwipesPerUser = 12
	}
	opts.SwipesPerUser = min(opts.SwipesPerUser, opts.Users-1)
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(42))
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	r := opts.Rand

	// one hash for everyone; bcrypt is slow on purpose
	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	stats := &Stats{}
	users := make([]*db.User, 0, opts.Users)
	for i := 1; i <= opts.Users; i++ {
		email := fmt.Sprintf("user%d@example.com", i)
		u := &db.User{
			Username:        fmt.Sprintf("user%d", i),
			Email:           &email,
			PasswordHash:    string(hash),
			Name:            fmt.Sprintf("Demo User %d", i),
			Age:             20 + r.Intn(20),
			Bio:             "Here for the music.",
			Location:        cities[r.Intn(len(cities))],
			FavoriteGenres:  pick(r, genres, 2, 4),
			FavoriteArtists: pick(r, artists, 2, 5),
			FavoriteSongs:   pick(r, songs, 0, 4),
			Photos:          datatypes.JSONSlice[string]{},
			Active:          true,
		}
		if err := store.CreateUser(ctx, u); err != nil {
			return stats, fmt.Errorf("failed to seed user %s: %w", u.Username, err)
		}
		users = append(users, u)
		stats.Users++
	}
	opts.Log.Info("seeded users", "count", stats.Users)

	counter := 0
	for _, actor := range users {
		for _, j := range r.Perm(len(users))[:opts.SwipesPerUser+1] {
			target := users[j]
			if target.ID == actor.ID {
				continue
			}

			dir := db.DirectionLeft
			if r.Intn(100) < 70 {
				dir = db.DirectionRight
				if r.Intn(10) == 0 {
					dir = db.DirectionSuper
				}
			}
			mutual := counter%3 == 0
			if mutual && !dir.IsLike() {
				dir = db.DirectionRight
			}
			counter++

			if err := store.CreateSwipe(ctx, &db.Swipe{SwiperID: actor.ID, TargetID: target.ID, Direction: dir}); err != nil {
				return stats, fmt.Errorf("failed to seed swipe: %w", err)
			}
			stats.Swipes++

			if mutual {
				back := &db.Swipe{SwiperID: target.ID, TargetID: actor.ID, Direction: db.DirectionRight}
				if err := store.CreateSwipe(ctx, back); err != nil {
					return stats, fmt.Errorf("failed to seed swipe: %w", err)
				}
				stats.Swipes++
			}

			if !dir.IsLike() {
				continue
			}
			liked, err := store.HasLiked(ctx, target.ID, actor.ID)
			if err != nil {
				return stats, fmt.Errorf("failed to check like: %w", err)
			}
			if !liked {
				continue
			}
			score := compatibility.Score(compatibility.TasteOf(actor), compatibility.TasteOf(target))
			created, err := store.CreateMatch(ctx, db.NewMatch(actor.ID, target.ID, score))
			if err != nil {
				return stats, fmt.Errorf("failed to seed match: %w", err)
			}
			if created {
				stats.Matches++
			}
		}
	}

	opts.Log.Info("seeded swipes and matches", "swipes", stats.Swipes, "matches", stats.Matches)
	return stats, nil
}

// pick returns between lo and hi distinct values of pool, in pool order.
func pick(r *rand.Rand, pool []string, lo, hi int) datatypes.JSONSlice[string] {
	n := lo + r.Intn(hi-lo+1)
	idx := r.Perm(len(pool))[:n]

	chosen := make(map[int]bool, n)
	for _, i := range idx {
		chosen[i] = true
	}
	out := make(datatypes.JSONSlice[string], 0, n)
	for i, v := range pool {
		if chosen[i] {
			out = append(out, v)
		}
	}
	return out
}
