package near

import "regexp"

const (
	MinAccountIDLength = 2
	MaxAccountIDLength = 64
)

var accountIDPattern = regexp.MustCompile(`^(([a-z\d]+[-_])*[a-z\d]+\.)*([a-z\d]+[-_])*[a-z\d]+$`)

// ValidateAccountID reports whether id is a well formed account ID.
func ValidateAccountID(id string) bool {
	return len(id) >= MinAccountIDLength &&
		len(id) <= MaxAccountIDLength &&
		accountIDPattern.MatchString(id)
}

// ValidateAccountIDs reports whether every id is valid. An empty list is valid.
func ValidateAccountIDs(ids []string) bool {
	for _, id := range ids {
		if !ValidateAccountID(id) {
			return false
		}
	}
	return true
}
