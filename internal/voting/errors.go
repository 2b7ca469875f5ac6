package voting

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/fragmede/hackers/internal/api"
)

// Kind classifies why a vote failed.
type Kind int

const (
	KindNone Kind = iota
	KindUnauthenticated
	KindNetwork
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// Error is a failed vote on a single item.
type Error struct {
	Kind   Kind
	ItemID int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("upvote %d failed (%s): %v", e.ItemID, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Classify maps a submission error to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, api.ErrUnauthenticated) {
		return KindUnauthenticated
	}
	if errors.Is(err, api.ErrNetwork) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindNetwork
	}
	return KindUnknown
}
