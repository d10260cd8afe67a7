package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrBadCorpusRoot     = errors.New("corpus root missing or unreadable")
	ErrMalformedDocument = errors.New("document is not well-formed XML-TEI")
	ErrMalformedRow      = errors.New("malformed review row")
	ErrDuplicateRow      = errors.New("duplicate review row")
	ErrInvalidConfig     = errors.New("invalid configuration")
)
