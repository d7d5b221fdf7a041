package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/oggyb/vibecheck/internal/db"
)

// GormStore is the relational ProfileStore. It works with any gorm dialector
// (MySQL in production, SQLite for local runs and tests, Postgres).
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new store bound to the given DB connection.
func NewGormStore(database *gorm.DB) *GormStore {
	return &GormStore{db: database}
}

var _ ProfileStore = (*GormStore)(nil)

// translate maps gorm errors onto the store sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}

func (r *GormStore) CreateUser(ctx context.Context, u *db.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *GormStore) UserByID(ctx context.Context, id uint64) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *GormStore) UserByUsername(ctx context.Context, username string) (*db.User, error) {
	var u db.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UpdateUser overwrites every column of an existing user.
func (r *GormStore) UpdateUser(ctx context.Context, u *db.User) error {
	if _, err := r.UserByID(ctx, u.ID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

// DeleteUser removes the user and everything that references them in one
// transaction.
func (r *GormStore) DeleteUser(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&db.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		matchIDs := tx.Model(&db.Match{}).Select("id").
			Where("user_a_id = ? OR user_b_id = ?", id, id)
		if err := tx.Where("match_id IN (?)", matchIDs).Delete(&db.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", id, id).Delete(&db.Match{}).Error; err != nil {
			return err
		}
		if err := tx.Where("swiper_id = ? OR target_id = ?", id, id).Delete(&db.Swipe{}).Error; err != nil {
			return err
		}
		return tx.Where("requester_id = ? OR receiver_id = ?", id, id).Delete(&db.SocialConnection{}).Error
	})
}

// ListCandidates returns active users the caller has not swiped on, keyed by id.
//
// Example:
//
//	repo.ListCandidates(ctx, 42, 0, 200)   // first batch for user 42's feed
//	repo.ListCandidates(ctx, 42, 317, 200) // next batch after id 317
func (r *GormStore) ListCandidates(ctx context.Context, userID, afterID uint64, limit int) ([]db.User, error) {
	tx := r.db.WithContext(ctx)
	swiped := tx.Model(&db.Swipe{}).Select("target_id").Where("swiper_id = ?", userID)

	var users []db.User
	err := tx.
		Where("id <> ? AND active = ? AND id > ?", userID, true, afterID).
		Where("id NOT IN (?)", swiped).
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
