package bridge

import "errors"

// Error taxonomy. Controller and bus adapters wrap their failures with these
// so callers can classify them with errors.Is.
var (
	// ErrConnection means the controller or the bus could not be reached.
	ErrConnection = errors.New("connection error")

	// ErrNotFound means a command targeted an id the controller does not know.
	ErrNotFound = errors.New("entity not found")

	// ErrParse means a command topic or payload was malformed.
	ErrParse = errors.New("parse error")

	// ErrWrite means the controller rejected a write.
	ErrWrite = errors.New("write rejected")
)
