package esi

import (
	"errors"
	"fmt"

	"structwatch/internal/platform/models"
)

// FetchError wraps a failed gateway call with its classified kind.
type FetchError struct {
	Kind models.ErrorKind
	Op   string
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("esi: %s: %s: %v", e.Op, e.Kind.FriendlyMessage(), e.Err)
	}
	return fmt.Sprintf("esi: %s: %s", e.Op, e.Kind.FriendlyMessage())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf classifies any error into an ErrorKind. Non-gateway errors map
// to Unknown.
func KindOf(err error) models.ErrorKind {
	if err == nil {
		return models.ErrorNone
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return models.ErrorUnknown
}

func newError(kind models.ErrorKind, op string, err error) *FetchError {
	return &FetchError{Kind: kind, Op: op, Err: err}
}
