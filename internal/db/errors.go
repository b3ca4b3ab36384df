package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrCallNotFound  = errors.New("call not found")
	ErrDuplicateCall = errors.New("call already recorded")
)
