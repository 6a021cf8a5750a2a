package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

var ticketSuffixRange = big.NewInt(10000)

// GenerateTicketNumber returns a short code for manual entry, for example
// TKT-1760540000123-0427.
func GenerateTicketNumber(at time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, ticketSuffixRange)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("TKT-%d-%04d", at.UnixMilli(), n.Int64()), nil
}
