package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/storage/photos"
)

// PhotoSigner issues upload URLs for profile photos.
type PhotoSigner interface {
	Enabled() bool
	PresignUpload(ctx context.Context, key, contentType string) (*photos.PresignedURL, error)
}

// allowed photo content types and the extension stored with the key
var photoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type Service struct {
	appCtx *app.AppContext
	store  repository.ProfileStore
	photos PhotoSigner
}

// NewService creates the profile service. signer may be nil when photo
// storage is not configured.
func NewService(appCtx *app.AppContext, signer PhotoSigner) *Service {
	return &Service{appCtx: appCtx, store: appCtx.Store, photos: signer}
}

// Input is a full profile as submitted on creation.
type Input struct {
	Username        string
	Email           *string
	Name            string
	Age             int
	Bio             string
	Location        string
	FavoriteGenres  []string
	FavoriteArtists []string
	FavoriteSongs   []string
}

// Patch holds the fields to change; nil fields are left alone.
type Patch struct {
	Name            *string
	Age             *int
	Bio             *string
	Location        *string
	FavoriteGenres  *[]string
	FavoriteArtists *[]string
	FavoriteSongs   *[]string
	Photos          *[]string
	Active          *bool
}

// NewUser builds the db record for in. Shared with registration.
func NewUser(in Input) *db.User {
	return &db.User{
		Username:        strings.TrimSpace(in.Username),
		Email:           in.Email,
		Name:            strings.TrimSpace(in.Name),
		Age:             in.Age,
		Bio:             in.Bio,
		Location:        in.Location,
		FavoriteGenres:  cleanList(in.FavoriteGenres),
		FavoriteArtists: cleanList(in.FavoriteArtists),
		FavoriteSongs:   cleanList(in.FavoriteSongs),
		Photos:          datatypes.JSONSlice[string]{},
		Active:          true,
	}
}

// Create stores a new profile without credentials (demo and imported users).
func (s *Service) Create(ctx context.Context, in Input) (*db.User, error) {
	s.appCtx.Logger.Debug("Create called", "username", in.Username)

	u := NewUser(in)
	if u.Username == "" {
		return nil, svcErr.InvalidArgument("username is required")
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, svcErr.AlreadyExists("username or email already taken")
		}
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*db.User, error) {
	if id == 0 {
		return nil, svcErr.InvalidArgument("id is required")
	}
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, svcErr.InvalidArgument("username is required")
	}
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// Update applies p to the profile. Photo keys must belong to the user.
func (s *Service) Update(ctx context.Context, id uint64, p Patch) (*db.User, error) {
	s.appCtx.Logger.Debug("Update called", "user", id)

	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.FavoriteGenres != nil {
		u.FavoriteGenres = cleanList(*p.FavoriteGenres)
	}
	if p.FavoriteArtists != nil {
		u.FavoriteArtists = cleanList(*p.FavoriteArtists)
	}
	if p.FavoriteSongs != nil {
		u.FavoriteSongs = cleanList(*p.FavoriteSongs)
	}
	if p.Photos != nil {
		prefix := photoPrefix(id)
		for _, key := range *p.Photos {
			if !strings.HasPrefix(key, prefix) {
				return nil, svcErr.InvalidArgument(fmt.Sprintf("photo %q does not belong to this profile", key))
			}
		}
		u.Photos = cleanList(*p.Photos)
	}
	if p.Active != nil {
		u.Active = *p.Active
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, svcErr.Map(err)
	}
	return u, nil
}

// Delete removes the profile with its swipes, matches, messages and connections.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	s.appCtx.Logger.Info("deleting profile", "user", id)

	if id == 0 {
		return svcErr.InvalidArgument("id is required")
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

// PhotoUpload is what a client needs to upload one photo.
type PhotoUpload struct {
	Key    string
	Upload *photos.PresignedURL
}

// PresignPhoto returns a signed upload URL for a new profile photo under
// profile-photos/<userID>/<uuid><ext>, the extension following the content
// type. The key becomes part of the profile once the client adds it through
// Update.
func (s *Service) PresignPhoto(ctx context.Context, userID uint64, fileName, contentType string) (*PhotoUpload, error) {
	s.appCtx.Logger.Debug("PresignPhoto called", "user", userID, "file", fileName, "type", contentType)

	if s.photos == nil || !s.photos.Enabled() {
		return nil, svcErr.Unavailable("photo storage is not configured")
	}

	ext, ok := photoTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, svcErr.InvalidArgument("contentType must be image/jpeg, image/png or image/webp")
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	key := photoPrefix(userID) + uuid.NewString() + ext
	signed, err := s.photos.PresignUpload(ctx, key, strings.ToLower(contentType))
	if err != nil {
		s.appCtx.Logger.Error("presign failed", "user", userID, "err", err)
		return nil, svcErr.Unavailable("could not sign photo upload")
	}
	return &PhotoUpload{Key: key, Upload: signed}, nil
}

func photoPrefix(userID uint64) string {
	return fmt.Sprintf("profile-photos/%d/", userID)
}

// cleanList trims entries and drops blanks and exact duplicates, keeping order.
func cleanList(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
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
