package entity

import "errors"

// Error taxonomy shared by the gateways and the portfolio service. Callers
// classify failures with errors.Is; gateway implementations wrap these with
// call-site detail via fmt.Errorf and %w.
var (
	// ErrInvalidAddress means the wallet address is not a valid base58 public key.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrInvalidInput means a required identifier was missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited means the upstream answered 429. Surfaced distinctly so
	// callers can tell throttling apart from a generic upstream failure.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrNotFound means the identifier is unknown to the upstream. Non-fatal
	// for metadata enrichment: the holding keeps its fallback fields.
	ErrNotFound = errors.New("not found")

	// ErrUpstream covers any other non-success upstream response.
	ErrUpstream = errors.New("upstream request failed")

	// ErrReadFailed means the ledger RPC could not be reached or answered badly.
	ErrReadFailed = errors.New("balance read failed")
)
