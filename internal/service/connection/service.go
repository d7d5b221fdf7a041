package connection

import (
	"context"
	"errors"

	"github.com/oggyb/vibecheck/internal/app"
	"github.com/oggyb/vibecheck/internal/db"
	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/repository"
)

// Service manages social connections (friend, music buddy, event buddy,
// dating). Independent of swipes and matches.
type Service struct {
	appCtx *app.AppContext
	store  repository.ProfileStore
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx, store: appCtx.Store}
}

// ValidType reports whether t is a known connection type.
func ValidType(t db.ConnectionType) bool {
	switch t {
	case db.ConnectionFriend, db.ConnectionMusicBuddy, db.ConnectionEventBuddy, db.ConnectionDating:
		return true
	}
	return false
}

// ValidStatus reports whether st is a known connection status.
func ValidStatus(st db.ConnectionStatus) bool {
	switch st {
	case db.ConnectionPending, db.ConnectionAccepted, db.ConnectionDeclined, db.ConnectionBlocked:
		return true
	}
	return false
}

// CanTransition reports whether a connection may move from one status to
// another. accepted and declined are only reachable from pending; blocked
// from pending or accepted.
func CanTransition(from, to db.ConnectionStatus) bool {
	switch to {
	case db.ConnectionAccepted, db.ConnectionDeclined:
		return from == db.ConnectionPending
	case db.ConnectionBlocked:
		return from == db.ConnectionPending || from == db.ConnectionAccepted
	}
	return false
}

// Request creates a pending connection from requester to receiver.
//
// Behavior:
//   - Both users must exist and differ.
//   - Only one pending request may exist between two users, whichever of
//     them sent it.
func (s *Service) Request(ctx context.Context, requesterID, receiverID uint64, typ db.ConnectionType) (*db.SocialConnection, error) {
	log := s.appCtx.Logger.With("requester", requesterID, "receiver", receiverID, "type", typ)
	log.Debug("Request called")

	if requesterID == 0 || receiverID == 0 {
		return nil, svcErr.InvalidArgument("requesterId and receiverId are required")
	}
	if requesterID == receiverID {
		return nil, svcErr.InvalidArgument("cannot connect with yourself")
	}
	if !ValidType(typ) {
		return nil, svcErr.InvalidArgument("connectionType must be friend, music_buddy, event_buddy or dating")
	}

	for _, id := range []uint64{requesterID, receiverID} {
		if _, err := s.store.UserByID(ctx, id); err != nil {
			return nil, svcErr.Map(err)
		}
	}

	_, err := s.store.PendingConnection(ctx, requesterID, receiverID)
	switch {
	case err == nil:
		return nil, svcErr.AlreadyExists("a pending request already exists between these users")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, svcErr.Map(err)
	}

	c := &db.SocialConnection{
		RequesterID:    requesterID,
		ReceiverID:     receiverID,
		Status:         db.ConnectionPending,
		ConnectionType: typ,
	}
	if err := s.store.CreateConnection(ctx, c); err != nil {
		log.Error("CreateConnection failed", "err", err)
		return nil, svcErr.Map(err)
	}
	return c, nil
}

// Respond moves a connection to a new status on behalf of its receiver.
func (s *Service) Respond(ctx context.Context, connectionID, actorID uint64, to db.ConnectionStatus) (*db.SocialConnection, error) {
	s.appCtx.Logger.Debug("Respond called", "connection", connectionID, "actor", actorID, "status", to)

	if connectionID == 0 || actorID == 0 {
		return nil, svcErr.InvalidArgument("connection id and userId are required")
	}
	if !ValidStatus(to) || to == db.ConnectionPending {
		return nil, svcErr.InvalidArgument("status must be accepted, declined or blocked")
	}

	c, err := s.store.ConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if c.ReceiverID != actorID {
		return nil, svcErr.PermissionDenied("only the receiver may respond to a connection request")
	}
	if !CanTransition(c.Status, to) {
		return nil, svcErr.FailedPrecondition("cannot move connection from " + string(c.Status) + " to " + string(to))
	}

	c.Status = to
	if err := s.store.UpdateConnection(ctx, c); err != nil {
		return nil, svcErr.Map(err)
	}
	return c, nil
}

// List returns connections where the user is either party, optionally
// filtered by status.
func (s *Service) List(ctx context.Context, userID uint64, st *db.ConnectionStatus) ([]db.SocialConnection, error) {
	if userID == 0 {
		return nil, svcErr.InvalidArgument("userId is required")
	}
	if st != nil && !ValidStatus(*st) {
		return nil, svcErr.InvalidArgument("unknown status " + string(*st))
	}

	conns, err := s.store.ListConnections(ctx, userID, st)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return conns, nil
}
