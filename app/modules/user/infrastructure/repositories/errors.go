package userdb

import "errors"

var (
	ErrNotFound       = errors.New("user not found")
	ErrNoRowsAffected = errors.New("no rows affected")
)
