package database

import "errors"

// ErrNotStarted indicates the database system was used before Start.
var ErrNotStarted = errors.New("database system not started")
