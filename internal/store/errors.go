package store

import (
	"errors"

	"github.com/lib/pq"
	"github.com/tasklane/apiserver/internal/result"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// codeNoData is the SQLSTATE reported for a lookup, update or delete that
// matched no row (no_data_found).
const codeNoData = "P0002"

// Classify reports whether err is a recognized store error: a server-side
// PostgreSQL error or ErrNotFound. Connection failures, scan errors and
// cancelled contexts are not classified.
func Classify(err error) (result.StoreError, bool) {
	if errors.Is(err, ErrNotFound) {
		return result.StoreError{Message: "record not found", Code: codeNoData}, true
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return result.StoreError{}, false
	}

	classified := result.StoreError{
		Message: pqErr.Message,
		Code:    string(pqErr.Code),
	}
	switch {
	case pqErr.Column != "":
		classified.Meta = &result.StoreErrorMeta{Target: []string{pqErr.Column}}
	case pqErr.Constraint != "":
		classified.Meta = &result.StoreErrorMeta{Target: []string{pqErr.Constraint}}
	}
	return classified, true
}
