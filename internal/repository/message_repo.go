package repository

import (
	"context"

	"github.com/oggyb/vibecheck/internal/db"
	"github.com/oggyb/vibecheck/internal/utils/pagination"
)

func (r *GormStore) CreateMessage(ctx context.Context, m *db.Message) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// ListMessages returns the conversation of a match in the order it was written.
//
// Behavior:
//   - Ordered by created_at ASC, id ASC.
//   - The token continues after the last message of the previous page.
func (r *GormStore) ListMessages(ctx context.Context, matchID uint64, token *string, limit int) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(getString(token))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(created_at > ? OR (created_at = ? AND id > ?))",
			ts, ts, cursor.ID,
		)
	}

	var messages []db.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	page, next := pagination.Page(messages, limit, func(m db.Message) pagination.Cursor {
		return pagination.At(m.ID, m.CreatedAt)
	})
	return page, next, nil
}

func (r *GormStore) LastMessage(ctx context.Context, matchID uint64) (*db.Message, error) {
	var m db.Message
	err := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}
