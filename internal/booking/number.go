package booking

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// numberPrefix is the fixed prefix of every booking number.
const numberPrefix = "EB"

// NewNumber generates a booking number: the fixed prefix followed by 8
// random uppercase hex characters. Collisions are negligible but the
// bookings table carries a unique index on the column regardless.
func NewNumber() string {
	u := uuid.New()
	return numberPrefix + strings.ToUpper(hex.EncodeToString(u[:4]))
}
