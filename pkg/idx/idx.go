// Package idx generates the identifiers the bank hands out: ULIDs for rows
// and requests, numeric account numbers for customers.
package idx

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a ULID in its canonical 26 character form. IDs minted by one
// process sort in creation order.
type ID string

func (id ID) String() string { return string(id) }

// New returns an ID for the current time.
func New() ID { return ID(ulid.Make().String()) }

// NewAt returns an ID carrying timestamp t.
func NewAt(t time.Time) ID {
	return ID(ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String())
}

// AccountNumberLength is the number of digits in an account number.
const AccountNumberLength = 10

// NewAccountNumber returns a random account number. The leading digit is
// never zero so the number survives being read as an integer.
func NewAccountNumber() (string, error) {
	digits := make([]byte, AccountNumberLength)
	for i := range digits {
		lo, span := int64(0), int64(10)
		if i == 0 {
			lo, span = 1, 9
		}
		n, err := rand.Int(rand.Reader, big.NewInt(span))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + lo + n.Int64())
	}
	return string(digits), nil
}

// IsAccountNumber reports whether s has the shape NewAccountNumber produces.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength || s[0] == '0' {
		return false
	}
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
