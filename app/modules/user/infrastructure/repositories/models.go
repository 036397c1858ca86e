package userdb

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the fitness profile aggregate. The league engine only ever
// touches CurrentTier; everything else belongs to onboarding and the
// activity modules.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string `bun:"id,pk"`
	DisplayName string `bun:"display_name,notnull"`
	CurrentTier string `bun:"current_tier,notnull"`
	// IANA timezone the user's daily activity windows are evaluated in.
	Timezone string `bun:"timezone,notnull,default:'Europe/Istanbul'"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// UserUpdateFields carries the mutable profile fields for partial updates.
// Nil pointers leave the column untouched.
type UserUpdateFields struct {
	DisplayName *string
	Timezone    *string
}
