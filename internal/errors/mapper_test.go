package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	svcErr "github.com/oggyb/vibecheck/internal/errors"
	"github.com/oggyb/vibecheck/internal/repository"
	"github.com/oggyb/vibecheck/internal/utils/pagination"
)

func TestMap(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want codes.Code
	}{
		{"store not found", repository.ErrNotFound, codes.NotFound},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound},
		{"wrapped not found", fmt.Errorf("load user: %w", repository.ErrNotFound), codes.NotFound},
		{"conflict", repository.ErrConflict, codes.AlreadyExists},
		{"gorm duplicate", gorm.ErrDuplicatedKey, codes.AlreadyExists},
		{"bad token", pagination.ErrInvalidToken, codes.InvalidArgument},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"anything else", errors.New("connection refused"), codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, status.Code(svcErr.Map(tc.in)))
		})
	}
}

func TestMap_Nil(t *testing.T) {
	assert.NoError(t, svcErr.Map(nil))
}

func TestMap_KeepsStatusErrors(t *testing.T) {
	in := svcErr.PermissionDenied("not a participant")
	out := svcErr.Map(in)
	assert.Equal(t, codes.PermissionDenied, status.Code(out))
	assert.Equal(t, "not a participant", status.Convert(out).Message())
}

func TestMap_HidesInternalDetails(t *testing.T) {
	out := svcErr.Map(errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	assert.NotContains(t, status.Convert(out).Message(), "10.0.0.3")
}

func TestConstructors(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, status.Code(svcErr.InvalidArgument("x")))
	assert.Equal(t, codes.AlreadyExists, status.Code(svcErr.AlreadyExists("x")))
	assert.Equal(t, codes.NotFound, status.Code(svcErr.NotFound("x")))
	assert.Equal(t, codes.FailedPrecondition, status.Code(svcErr.FailedPrecondition("x")))
	assert.Equal(t, codes.Unauthenticated, status.Code(svcErr.Unauthenticated("x")))
	assert.Equal(t, codes.Unavailable, status.Code(svcErr.Unavailable("x")))
}
