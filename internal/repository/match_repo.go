package repository

import (
	"context"

	"gorm.io/gorm/clause"

	"github.com/oggyb/vibecheck/internal/db"
)

// CreateMatch inserts m unless its pair already matched.
//
// Behavior:
//   - The pair is stored in canonical order (lower id first).
//   - Two swipes racing to create the same match both land here; the unique
//     pair index lets exactly one insert win and the loser reads the winner.
//   - On return m always holds the stored row.
func (r *GormStore) CreateMatch(ctx context.Context, m *db.Match) (bool, error) {
	if m.UserAID > m.UserBID {
		m.UserAID, m.UserBID = m.UserBID, m.UserAID
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var existing db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", m.UserAID, m.UserBID).
		First(&existing).Error
	if err != nil {
		return false, translate(err)
	}
	*m = existing
	return false, nil
}

func (r *GormStore) MatchByID(ctx context.Context, id uint64) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// ListMatches returns every match the user is part of, newest first.
func (r *GormStore) ListMatches(ctx context.Context, userID uint64) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}
