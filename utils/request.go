package utils

import (
	"net/http"
	"regexp"
	"strconv"

	"outings/globals"
)

// GetUserIDFromRequest returns the acting principal's id, or "" when the
// request is unauthenticated.
func GetUserIDFromRequest(r *http.Request) string {
	id, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

var numericSuffixRE = regexp.MustCompile(`-(\d+)$`)

// NumericID derives the external numeric id from an internal "family-N" id.
// Unparsable ids map to 0.
func NumericID(id string) int {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	if m := numericSuffixRE.FindStringSubmatch(id); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}
