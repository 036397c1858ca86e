package leaguedomain

import "errors"

// Domain errors surfaced to callers of the league engine. Infrastructure
// conditions (capacity races, missing rows) live in the repository layer
// and are handled before reaching here.
var (
	// ErrUnknownTier rejects a join against a tier absent from the catalog.
	ErrUnknownTier = errors.New("tier not found in catalog")

	// ErrStaleEpoch rejects a join or credit aimed at an epoch older than
	// the currently open one. Callers should re-derive the current key and
	// retry.
	ErrStaleEpoch = errors.New("epoch is closed, rejoin the current week")

	// ErrInvalidDelta rejects a non-positive point credit. Accumulation
	// only ever adds; corrections are not this engine's business.
	ErrInvalidDelta = errors.New("point delta must be positive")
)
