package leaguedomain

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID identifies a user in the surrounding fitness backend.
type UserID string

// RoomID identifies a competition room.
type RoomID = uuid.UUID

// TierName is the catalog-facing name of a competitive tier.
type TierName string

// Points is the in-room score unit. Custom type to keep arithmetic integral.
type Points int64

// Result is the per-user outcome of a finalized epoch.
type Result string

const (
	ResultPromoted Result = "promoted"
	ResultDemoted  Result = "demoted"
	ResultStayed   Result = "stayed"
)

// ParseResult converts a persisted wire string back into a Result.
func ParseResult(s string) (Result, error) {
	switch Result(s) {
	case ResultPromoted, ResultDemoted, ResultStayed:
		return Result(s), nil
	}
	return "", fmt.Errorf("unknown outcome result %q", s)
}

func (r Result) String() string {
	return string(r)
}
