package market

import "errors"

// Every engine error is recoverable by the caller: the action is rejected
// before any state changes and the user may simply try again.
var (
	// ErrInsufficientFunds means the buying side cannot cover
	// price x quantity at match time.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAlreadyMatched means the offer was taken by someone else first.
	ErrAlreadyMatched = errors.New("offer already matched")

	// ErrNoOpenPosition means a close was requested for a ticker the
	// account holds no open quantity in.
	ErrNoOpenPosition = errors.New("no open position")

	// ErrSelfMatch means an account tried to accept its own offer.
	ErrSelfMatch = errors.New("cannot accept own offer")

	// ErrOfferNotFound means no offer exists with the given id.
	ErrOfferNotFound = errors.New("offer not found")

	// ErrNotAuthorized means a privileged action was attempted by a
	// non-admin account.
	ErrNotAuthorized = errors.New("not authorized")
)
