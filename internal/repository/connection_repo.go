package repository

import (
	"context"

	"github.com/oggyb/vibecheck/internal/db"
)

func (r *GormStore) CreateConnection(ctx context.Context, c *db.SocialConnection) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *GormStore) ConnectionByID(ctx context.Context, id uint64) (*db.SocialConnection, error) {
	var c db.SocialConnection
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormStore) PendingConnection(ctx context.Context, a, b uint64) (*db.SocialConnection, error) {
	var c db.SocialConnection
	err := r.db.WithContext(ctx).
		Where("status = ?", db.ConnectionPending).
		Where("((requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?))", a, b, b, a).
		First(&c).Error
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *GormStore) UpdateConnection(ctx context.Context, c *db.SocialConnection) error {
	if _, err := r.ConnectionByID(ctx, c.ID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Save(c).Error)
}

// ListConnections returns connections where the user is either party.
// A nil status lists all of them.
func (r *GormStore) ListConnections(ctx context.Context, userID uint64, status *db.ConnectionStatus) ([]db.SocialConnection, error) {
	query := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Order("created_at DESC, id DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var conns []db.SocialConnection
	if err := query.Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}
