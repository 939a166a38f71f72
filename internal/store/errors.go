package store

import "strings"

// isBusyError reports SQLITE_BUSY or "database is locked", the two forms of
// SQLite write contention that are worth retrying.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
