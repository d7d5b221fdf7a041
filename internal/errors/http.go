package errors

import (
	"net/http"

	"github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusClientClosedRequest is the non-standard "client went away" status.
const StatusClientClosedRequest = 499

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

// APIError is the body every failed HTTP call returns.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP converts a status error into an HTTP status and envelope.
// Non-status errors and nil become 500 without details. Client-side codes
// keep the service message; server-side codes get a fixed one.
func ToHTTP(err error) (int, ErrorResponse) {
	internal := ErrorResponse{Error: APIError{Code: "internal", Message: "internal error"}}
	if err == nil {
		return http.StatusInternalServerError, internal
	}

	st, ok := status.FromError(Map(err))
	if !ok {
		return http.StatusInternalServerError, internal
	}

	httpStatus, code, msg := fromGRPC(st.Code())
	if httpStatus < http.StatusInternalServerError || st.Code() == codes.Unavailable {
		if m := st.Message(); m != "" {
			msg = m
		}
	}
	return httpStatus, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError writes the envelope for err, tagged with the request id.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code, resp := ToHTTP(err)
	if rid := r.Header.Get(RequestIDHeader); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func fromGRPC(c codes.Code) (int, string, string) {
	switch c {
	case codes.InvalidArgument:
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case codes.NotFound:
		return http.StatusNotFound, "not_found", "not found"
	case codes.AlreadyExists:
		return http.StatusConflict, "already_exists", "already exists"
	case codes.FailedPrecondition:
		return http.StatusPreconditionFailed, "failed_precondition", "failed precondition"
	case codes.Unauthenticated:
		return http.StatusUnauthorized, "unauthenticated", "unauthenticated"
	case codes.PermissionDenied:
		return http.StatusForbidden, "permission_denied", "permission denied"
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests, "resource_exhausted", "resource exhausted"
	case codes.Aborted:
		return http.StatusConflict, "aborted", "aborted"
	case codes.Canceled:
		return StatusClientClosedRequest, "canceled", "canceled"
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case codes.Unavailable:
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case codes.Unimplemented:
		return http.StatusNotImplemented, "unimplemented", "unimplemented"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
