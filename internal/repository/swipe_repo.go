package repository

import (
	"context"

	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/utils/pagination"
)

// passedOnBy excludes admirers the target has explicitly passed on.
const passedOnBy = `
	NOT EXISTS (
		SELECT 1 FROM swipes p
		WHERE p.swiper_id = ?
		  AND p.target_id = s.swiper_id
		  AND p.direction = ?
	)`

// latestLike keeps one row per admirer: their most recent like on the target.
const latestLike = `
	s.id = (
		SELECT MAX(l.id) FROM swipes l
		WHERE l.swiper_id = s.swiper_id
		  AND l.target_id = s.target_id
		  AND l.direction IN ?
	)`

// CreateSwipe appends a swipe made by swiper on target.
//
// Behavior:
//   - Every call inserts a new row; earlier swipes on the same pair stay.
//   - The latest swipe is what the UI shows, but match detection only asks
//     whether any like exists (see HasLiked).
func (r *GormStore) CreateSwipe(ctx context.Context, s *db.Swipe) error {
	return translate(r.db.WithContext(ctx).Create(s).Error)
}

// HasLiked checks whether swiper has liked target.
//
// Behavior:
//   - Returns true if there exists any swipe row where swiper_id = X,
//     target_id = Y and direction is right or super.
//   - Used for the reciprocal check when a like comes in.
//
// Example:
//
//	repo.HasLiked(ctx, 1, 2) // -> true if user 1 liked user 2
func (r *GormStore) HasLiked(ctx context.Context, swiperID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("swiper_id = ? AND target_id = ? AND direction IN ?", swiperID, targetID, db.LikeDirections).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// ListAdmirers returns users who liked the given target.
//
// Behavior:
//   - One row per admirer: their latest like on the target.
//   - Excludes users that the target explicitly passed (left swipe).
//   - Ordered by created_at DESC, id DESC.
//   - Supports cursor-based pagination via token.
//
// Example:
//
//	repo.ListAdmirers(ctx, 42, nil, 20) // first 20 people who liked user 42
func (r *GormStore) ListAdmirers(ctx context.Context, targetID uint64, token *string, limit int) ([]db.Swipe, *string, error) {
	cursor, err := pagination.Decode(getString(token))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.direction IN ?", targetID, db.LikeDirections).
		Where(latestLike, db.LikeDirections).
		Where(passedOnBy, targetID, db.DirectionLeft).
		Order("s.created_at DESC, s.id DESC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(s.created_at < ? OR (s.created_at = ? AND s.id < ?))",
			ts, ts, cursor.ID,
		)
	}

	var swipes []db.Swipe
	if err := query.Find(&swipes).Error; err != nil {
		return nil, nil, err
	}

	page, next := pagination.Page(swipes, limit, func(s db.Swipe) pagination.Cursor {
		return pagination.At(s.ID, s.CreatedAt)
	})
	return page, next, nil
}

// CountAdmirers returns how many distinct users liked the target.
//
// Behavior:
//   - Same filter as ListAdmirers.
//   - Used in conjunction with Redis cache (DB is fallback).
func (r *GormStore) CountAdmirers(ctx context.Context, targetID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("swipes s").
		Where("s.target_id = ? AND s.direction IN ?", targetID, db.LikeDirections).
		Where(passedOnBy, targetID, db.DirectionLeft).
		Distinct("s.swiper_id").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
