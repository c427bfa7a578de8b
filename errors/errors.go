package errors

import (
	stderrors "errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic           = fmt.Errorf("worker panic")
	ErrAuthentication        = fmt.Errorf("authentication failed")
	ErrAuthorization         = fmt.Errorf("host authorization failed")
	ErrSessionExpired        = fmt.Errorf("session expired")
	ErrSessionNotFound       = fmt.Errorf("session not found")
	ErrPersistence           = fmt.Errorf("persistence failed")
	ErrInvalidPayload        = fmt.Errorf("invalid payload")
	ErrRateLimited           = fmt.Errorf("rate limited")
	ErrNotInRoom             = fmt.Errorf("connection is not in room")
	ErrUnsupportedAttachment = fmt.Errorf("unsupported attachment type")
	ErrUnknownCommand        = fmt.Errorf("unknown command")
)

// Wire codes carried in error frames.
const (
	CodeUnauthenticated   = "UNAUTHENTICATED"
	CodeForbidden         = "FORBIDDEN"
	CodeSessionExpired    = "SESSION_EXPIRED"
	CodeNotFound          = "NOT_FOUND"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeResourceExhausted = "RESOURCE_EXHAUSTED"
	CodeInternal          = "INTERNAL"
)

func New(text string) error                  { return stderrors.New(text) }
func Is(err, target error) bool              { return stderrors.Is(err, target) }
func As(err error, target any) bool          { return stderrors.As(err, target) }
func Join(errs ...error) error               { return stderrors.Join(errs...) }
func Unwrap(err error) error                 { return stderrors.Unwrap(err) }
func Wrap(sentinel error, cause error) error { return fmt.Errorf("%w: %w", sentinel, cause) }

// Code maps an error to the code sent back to clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrAuthentication):
		return CodeUnauthenticated
	case Is(err, ErrAuthorization):
		return CodeForbidden
	case Is(err, ErrSessionExpired):
		return CodeSessionExpired
	case Is(err, ErrSessionNotFound):
		return CodeNotFound
	case Is(err, ErrPersistence):
		return CodePersistenceFailed
	case Is(err, ErrInvalidPayload), Is(err, ErrUnsupportedAttachment),
		Is(err, ErrUnknownCommand), Is(err, ErrNotInRoom):
		return CodeInvalidArgument
	case Is(err, ErrRateLimited):
		return CodeResourceExhausted
	default:
		return CodeInternal
	}
}

// PublicMessage is the text of err safe to send to clients. Storage and
// internal causes are replaced by a generic message.
func PublicMessage(err error) string {
	switch Code(err) {
	case CodeInternal:
		return "internal error"
	case CodePersistenceFailed:
		return ErrPersistence.Error()
	default:
		return err.Error()
	}
}

// MapToGRPCError converts a domain error into a gRPC status error.
func MapToGRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch Code(err) {
	case CodeUnauthenticated:
		return status.Error(codes.Unauthenticated, PublicMessage(err))
	case CodeForbidden:
		return status.Error(codes.PermissionDenied, PublicMessage(err))
	case CodeSessionExpired:
		return status.Error(codes.FailedPrecondition, PublicMessage(err))
	case CodeNotFound:
		return status.Error(codes.NotFound, PublicMessage(err))
	case CodeInvalidArgument:
		return status.Error(codes.InvalidArgument, PublicMessage(err))
	case CodeResourceExhausted:
		return status.Error(codes.ResourceExhausted, PublicMessage(err))
	case CodePersistenceFailed:
		return status.Error(codes.Unavailable, PublicMessage(err))
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
