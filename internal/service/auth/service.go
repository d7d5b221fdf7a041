// Package auth registers users, logs them in and resolves bearer tokens to
// server-side sessions.
//
// A login creates a Session (user id, username, expiry) stored under a
// random id, and returns an HS256 token whose jti is that id. Logging out
// deletes the session, which invalidates the token before it expires.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/config"
	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/metrics"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/service/profile"
	"github.com/oggyb/vibecheck/internal/utils/redact"
)

const (
	MinPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	MaxPasswordLength = 72
)

type Service struct {
	appCtx   *app.AppContext
	store    repository.ProfileStore
	sessions SessionStore
	cfg      config.AuthConfig
	now      func() time.Time
}

func NewService(appCtx *app.AppContext, sessions SessionStore) *Service {
	return &Service{
		appCtx:   appCtx,
		store:    appCtx.Store,
		sessions: sessions,
		cfg:      appCtx.Config.Auth,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Login is the result of a successful login.
type Login struct {
	Token   string
	Session *Session
}

// Register creates a user with a password and logs them in.
func (s *Service) Register(ctx context.Context, in profile.Input, password string) (*db.User, *Login, error) {
	log := s.appCtx.Logger.With("username", in.Username)
	if in.Email != nil {
		log = log.With("email", redact.Email(*in.Email))
	}
	log.Debug("Register called")

	if err := validatePassword(password); err != nil {
		return nil, nil, err
	}

	u := profile.NewUser(in)
	if u.Username == "" {
		return nil, nil, svcErr.InvalidArgument("username is required")
	}
	if u.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &email
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("password hashing failed", "err", err)
		return nil, nil, svcErr.Map(err)
	}
	u.PasswordHash = string(hash)

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, nil, svcErr.AlreadyExists("username or email already taken")
		}
		return nil, nil, svcErr.Map(err)
	}

	login, err := s.startSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	log.Info("user registered", "user", u.ID)
	return u, login, nil
}

// Login checks username and password and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (*Login, error) {
	log := s.appCtx.Logger.With("username", username, "password", redact.Password())
	log.Debug("Login called")

	u, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, svcErr.Map(err)
	}
	if u == nil || u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		log.Info("login rejected")
		return nil, svcErr.Unauthenticated("invalid username or password")
	}

	now := s.now()
	u.LastLoginAt = &now
	if err := s.store.UpdateUser(ctx, u); err != nil {
		log.Warn("last login not recorded", "err", err)
	}

	login, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return login, nil
}

func (s *Service) startSession(ctx context.Context, u *db.User) (*Login, error) {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		Username:  u.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.signToken(sess)
	if err != nil {
		s.appCtx.Logger.Error("token signing failed", "err", err)
		return nil, svcErr.Map(err)
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		s.appCtx.Logger.Error("session store failed", "err", err)
		return nil, svcErr.Unavailable("session store unavailable")
	}
	return &Login{Token: token, Session: sess}, nil
}

// Authenticate resolves a bearer token to its live session. A session whose
// user has been deleted is dropped and rejected.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	id, uid, err := s.parseToken(token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, svcErr.Unauthenticated("token expired")
		}
		return nil, svcErr.Unauthenticated("invalid token")
	}

	sess, err := s.sessions.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, svcErr.Unauthenticated("session expired or revoked")
	}
	if err != nil {
		s.appCtx.Logger.Error("session lookup failed", "token", redact.Token(token), "err", err)
		return nil, svcErr.Unavailable("session store unavailable")
	}
	if sess.UserID != uid {
		return nil, svcErr.Unauthenticated("invalid token")
	}

	if _, err := s.store.UserByID(ctx, sess.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if err := s.sessions.Delete(ctx, sess.ID); err != nil {
				s.appCtx.Logger.Warn("orphan session not dropped", "user", sess.UserID, "err", err)
			}
			return nil, svcErr.Unauthenticated("user no longer exists")
		}
		s.appCtx.Logger.Error("session user lookup failed", "user", sess.UserID, "err", err)
		return nil, svcErr.Map(err)
	}
	return sess, nil
}

// Logout revokes the session behind token.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		return svcErr.Unavailable("session store unavailable")
	}
	s.appCtx.Logger.Debug("session closed", "user", sess.UserID)
	return nil
}

func validatePassword(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLength {
		return svcErr.InvalidArgument("password must be at least 8 characters")
	}
	if len(p) > MaxPasswordLength {
		return svcErr.InvalidArgument("password must be at most 72 bytes")
	}
	return nil
}
