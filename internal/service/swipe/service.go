package swipe

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/compatibility"
	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/metrics"
	"github.com/oggyb/vibecheck/internal/repository"
)

const (
	DefaultDiscoverLimit = 20
	MaxDiscoverLimit     = 100
	// discoverBatch is how many candidates Discover reads from the store at a time.
	discoverBatch = 200

	AdmirerPageSize = 20
)

// Service is the swipe/match engine plus the read models built on it
// (discovery feed, matches, admirers).
type Service struct {
	appCtx *app.AppContext
	store  repository.ProfileStore
}

// NewService creates a new swipe service with dependencies from AppContext.
// Dependencies include:
//   - the ProfileStore (relational or in-memory)
//   - RedisCache for admirer counters, when configured
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		store:  appCtx.Store,
	}
}

type Request struct {
	SwiperID  uint64
	TargetID  uint64
	Direction db.Direction
}

type Result struct {
	SwipeID uint64
	Matched bool
	MatchID uint64
}

// Swipe records a swipe and returns whether it completed a match.
//
// Behavior:
//   - Validates ids (non-zero, different) and the direction.
//   - Appends the swipe; earlier swipes on the pair are kept.
//   - Drops the cached admirer counts the swipe can change.
//   - On a like, checks whether the target already liked the swiper. If so a
//     Match is created with the pair's compatibility score, or the existing
//     one is returned when the pair matched before.
//   - Matching is best effort: a failure after the swipe is stored is logged
//     and reported as matched=false.
//
// Example:
//
//	svc.Swipe(ctx, swipe.Request{SwiperID: 2, TargetID: 1, Direction: db.DirectionRight})
func (s *Service) Swipe(ctx context.Context, req Request) (*Result, error) {
	log := s.appCtx.Logger.With("swiper", req.SwiperID, "target", req.TargetID, "direction", req.Direction)
	log.Debug("Swipe called")

	if req.SwiperID == 0 || req.TargetID == 0 {
		return nil, svcErr.InvalidArgument("swiperId and targetId are required")
	}
	if req.SwiperID == req.TargetID {
		return nil, svcErr.InvalidArgument("cannot swipe on yourself")
	}
	if !req.Direction.Valid() {
		return nil, svcErr.InvalidArgument("direction must be left, right or super")
	}

	sw := &db.Swipe{SwiperID: req.SwiperID, TargetID: req.TargetID, Direction: req.Direction}
	if err := s.store.CreateSwipe(ctx, sw); err != nil {
		log.Error("CreateSwipe failed", "err", err)
		return nil, svcErr.Map(err)
	}
	metrics.SwipesTotal.WithLabelValues(string(req.Direction)).Inc()

	s.invalidateCounts(ctx, req)

	res := &Result{SwipeID: sw.ID}
	if !req.Direction.IsLike() {
		return res, nil
	}

	// check if target also liked swiper → mutual
	mutual, err := s.store.HasLiked(ctx, req.TargetID, req.SwiperID)
	if err != nil {
		log.Warn("reciprocal like lookup failed", "err", err)
		metrics.MatchFailures.Inc()
		return res, nil
	}
	if !mutual {
		return res, nil
	}

	m, err := s.createMatch(ctx, req.SwiperID, req.TargetID)
	if err != nil {
		log.Warn("match not created", "err", err)
		metrics.MatchFailures.Inc()
		return res, nil
	}

	res.Matched = true
	res.MatchID = m.ID
	log.Debug("Swipe matched", "match_id", m.ID, "score", m.CompatibilityScore)
	return res, nil
}

func (s *Service) createMatch(ctx context.Context, a, b uint64) (*db.Match, error) {
	userA, err := s.store.UserByID(ctx, a)
	if err != nil {
		return nil, err
	}
	userB, err := s.store.UserByID(ctx, b)
	if err != nil {
		return nil, err
	}

	score := compatibility.Score(compatibility.TasteOf(userA), compatibility.TasteOf(userB))
	m := db.NewMatch(a, b, score)
	created, err := s.store.CreateMatch(ctx, m)
	if err != nil {
		return nil, err
	}
	if created {
		metrics.MatchesCreated.Inc()
		metrics.CompatibilityScores.Observe(float64(score))
	}
	return m, nil
}

// invalidateCounts drops cached admirer counts a swipe may have changed:
// a like changes the target's count, a pass may hide an admirer of the swiper.
func (s *Service) invalidateCounts(ctx context.Context, req Request) {
	if !s.appCtx.HasCache() {
		return
	}
	userID := req.TargetID
	if req.Direction == db.DirectionLeft {
		userID = req.SwiperID
	}
	if err := s.appCtx.RedisCache.InvalidateAdmirerCount(ctx, userID); err != nil {
		s.appCtx.Logger.Warn("admirer count invalidation failed", "user", userID, "err", err)
	}
}

// Candidate is a discovery feed entry.
type Candidate struct {
	User               db.User
	CompatibilityScore int
	SharedGenres       []string
	SharedArtists      []string
	SharedInterests    []string
}

// Discover returns profiles the user has not swiped on yet, best match first.
//
// Behavior:
//   - Scores every unseen active candidate, reading them from the store in
//     id-ordered batches of discoverBatch and keeping only the best limit.
//   - Orders by compatibility score (desc), ties broken by user id (asc).
//   - limit <= 0 means DefaultDiscoverLimit; values above MaxDiscoverLimit are capped.
func (s *Service) Discover(ctx context.Context, userID uint64, limit int) ([]Candidate, error) {
	s.appCtx.Logger.Debug("Discover called", "user", userID, "limit", limit)

	if userID == 0 {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	if limit <= 0 {
		limit = DefaultDiscoverLimit
	}
	limit = min(limit, MaxDiscoverLimit)

	me, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	mine := compatibility.TasteOf(me)
	best := make([]Candidate, 0, limit+discoverBatch)
	var after uint64
	for {
		users, err := s.store.ListCandidates(ctx, userID, after, discoverBatch)
		if err != nil {
			s.appCtx.Logger.Error("ListCandidates failed", "user", userID, "after", after, "err", err)
			return nil, svcErr.Map(err)
		}

		for _, u := range users {
			theirs := compatibility.TasteOf(&u)
			best = append(best, Candidate{
				User:               u,
				CompatibilityScore: compatibility.Score(mine, theirs),
				SharedGenres:       compatibility.SharedGenres(mine, theirs),
				SharedArtists:      compatibility.SharedArtists(mine, theirs),
				SharedInterests:    compatibility.SharedInterests(mine, theirs),
			})
		}
		slices.SortStableFunc(best, rankCandidates)
		if len(best) > limit {
			best = best[:limit]
		}

		if len(users) < discoverBatch {
			return best, nil
		}
		after = users[len(users)-1].ID
	}
}

func rankCandidates(a, b Candidate) int {
	if c := cmp.Compare(b.CompatibilityScore, a.CompatibilityScore); c != 0 {
		return c
	}
	return cmp.Compare(a.User.ID, b.User.ID)
}

// MatchView is a match as seen by one of its participants.
type MatchView struct {
	Match       db.Match
	Partner     db.User
	LastMessage *db.Message
}

// ListMatches returns the user's matches with the partner profile and the
// latest message, newest match first. Matches whose partner no longer
// exists are skipped.
func (s *Service) ListMatches(ctx context.Context, userID uint64) ([]MatchView, error) {
	s.appCtx.Logger.Debug("ListMatches called", "user", userID)

	if userID == 0 {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	if _, err := s.store.UserByID(ctx, userID); err != nil {
		return nil, svcErr.Map(err)
	}

	matches, err := s.store.ListMatches(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	out := make([]MatchView, 0, len(matches))
	for _, m := range matches {
		partnerID, _ := m.PartnerOf(userID)
		partner, err := s.store.UserByID(ctx, partnerID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, svcErr.Map(err)
		}

		view := MatchView{Match: m, Partner: *partner}
		last, err := s.store.LastMessage(ctx, m.ID)
		switch {
		case err == nil:
			view.LastMessage = last
		case !errors.Is(err, repository.ErrNotFound):
			return nil, svcErr.Map(err)
		}
		out = append(out, view)
	}
	return out, nil
}

// Admirer is someone who liked the user.
type Admirer struct {
	User      db.User
	Direction db.Direction
	LikedAt   time.Time
}

// ListAdmirers returns users who liked the given user.
//
// Behavior:
//   - One entry per admirer, their latest like.
//   - Excludes users that the recipient explicitly passed.
//   - Supports cursor-based pagination with token.
//
// Example:
//
//	svc.ListAdmirers(ctx, 42, nil)
func (s *Service) ListAdmirers(ctx context.Context, userID uint64, token *string) ([]Admirer, *string, error) {
	s.appCtx.Logger.Debug("ListAdmirers called", "user", userID, "token", token != nil)

	if userID == 0 {
		return nil, nil, svcErr.InvalidArgument("userId is required")
	}

	swipes, next, err := s.store.ListAdmirers(ctx, userID, token, AdmirerPageSize)
	if err != nil {
		s.appCtx.Logger.Error("ListAdmirers failed", "err", err)
		return nil, nil, svcErr.Map(err)
	}

	out := make([]Admirer, 0, len(swipes))
	for _, sw := range swipes {
		u, err := s.store.UserByID(ctx, sw.SwiperID)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, svcErr.Map(err)
		}
		out = append(out, Admirer{User: *u, Direction: sw.Direction, LikedAt: sw.CreatedAt})
	}

	s.appCtx.Logger.Debug("ListAdmirers result", "count", len(out), "has_next", next != nil)
	return out, next, nil
}

// CountAdmirers returns how many users liked the given user.
// Cache-first strategy:
//  1. Attempts to read from Redis (admirers:count:userID).
//  2. If cache miss, falls back to the store.
//  3. On store fetch, updates Redis with a 1h TTL.
//
// Without a cache (demo mode) the store is always asked.
func (s *Service) CountAdmirers(ctx context.Context, userID uint64) (int64, error) {
	s.appCtx.Logger.Debug("CountAdmirers called", "user", userID)

	if userID == 0 {
		return 0, svcErr.InvalidArgument("userId is required")
	}

	refill := false
	var version int64
	if s.appCtx.HasCache() {
		n, ok, err := s.appCtx.RedisCache.AdmirerCount(ctx, userID)
		if err != nil {
			s.appCtx.Logger.Warn("admirer count cache read failed", "err", err)
		}
		if ok {
			metrics.CacheHits.WithLabelValues("admirer_count").Inc()
			return n, nil
		}
		metrics.CacheMisses.WithLabelValues("admirer_count").Inc()

		// the version must be read before the store so a concurrent
		// invalidation makes the refill below a no-op
		version, err = s.appCtx.RedisCache.AdmirerCountVersion(ctx, userID)
		refill = err == nil
	}

	// fallback: store
	count, err := s.store.CountAdmirers(ctx, userID)
	if err != nil {
		return 0, svcErr.Map(err)
	}

	if refill {
		_, _ = s.appCtx.RedisCache.SetAdmirerCount(ctx, userID, count, version)
	}
	return count, nil
}
