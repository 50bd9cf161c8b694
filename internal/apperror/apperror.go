package apperror

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage"
)

// FallbackMessage is used when nothing readable can be extracted from a failure.
const FallbackMessage = "une erreur inattendue est survenue"

// Error is the single error type leaving the data layer.
type Error struct {
	Kind    Kind
	Op      string // e.g. "produits.create"
	Message string
	Code    string // SQLSTATE when the failure came from PostgreSQL
	Err     error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(op, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func NotFound(op, entity, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf("%s %s introuvable", entity, id)}
}

func Conflict(op, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. Already classified errors pass through untouched so
// wrapping twice keeps the innermost Op.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	e := &Error{Kind: KindStorage, Op: op, Message: Message(err), Err: err}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Code = pgErr.Code
		switch pgErr.Code {
		case "23505": // unique_violation
			e.Kind = KindConflict
		case "23503", "23502", "23514", "22P02", "22003": // fk, not null, check, invalid text, out of range
			e.Kind = KindValidation
		}
	}
	return e
}

// Message extracts a human readable message: the PostgreSQL message when
// present, then the error text, then FallbackMessage.
func Message(err error) string {
	if err == nil {
		return FallbackMessage
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}

func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindStorage
}

func IsValidation(err error) bool { return err != nil && KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return err != nil && KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return err != nil && KindOf(err) == KindConflict }

// GRPCStatus maps err onto a gRPC status for transport front-ends.
func GRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	msg := Message(err)
	switch KindOf(err) {
	case KindValidation:
		return status.New(codes.InvalidArgument, msg)
	case KindNotFound:
		return status.New(codes.NotFound, msg)
	case KindConflict:
		return status.New(codes.AlreadyExists, msg)
	default:
		return status.New(codes.Internal, msg)
	}
}
