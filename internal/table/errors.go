package table

import "github.com/pkg/errors"

// One-time facts re-delivered by the server.
var (
	ErrSelfIDAssigned = errors.New("self id already assigned")
	ErrSeatsAssigned  = errors.New("seats already assigned")
	ErrHandAssigned   = errors.New("hand already assigned")
)

// Local model disagrees with the server.
var (
	ErrCardNotInHand = errors.New("card not in hand")
	ErrUnknownPlayer = errors.New("unknown player")
)

var ErrEmptySeatOrder = errors.New("empty seat order")

// IsRedundant reports whether err is a re-delivered one-time fact.
func IsRedundant(err error) bool {
	return errors.Is(err, ErrSelfIDAssigned) ||
		errors.Is(err, ErrSeatsAssigned) ||
		errors.Is(err, ErrHandAssigned)
}

// IsDesync reports whether err refers to a card or player the local model
// does not know about.
func IsDesync(err error) bool {
	return errors.Is(err, ErrCardNotInHand) || errors.Is(err, ErrUnknownPlayer)
}
