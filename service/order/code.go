package order

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
	"tixgate/db"
	"tixgate/util"
)

// Ticket code suffix: 10 uppercase alphanumerics from a crypto-strong source
const (
	codeAlphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength      = 10
	maxCodeAttempts = 10

	// Order codes are truncated to 15 digits so they stay inside the
	// integer range every gateway and JS frontend can represent exactly
	orderCodeModulus = int64(1_000_000_000_000_000)
)

func randomCodeSuffix() (string, error) {
	suffix := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}

	return string(suffix), nil
}

// Produce a unique ticket code `{SHORTKEY}-{RANDOM}`. Collisions are retried
// against the store up to maxCodeAttempts; exhausting the attempts is close
// to impossible given the 36^10 code space, but it is surfaced as an error
// rather than ignored.
func (service *OrderService) generateTicketCode(ctx context.Context, shortkey string) (string, error) {
	if shortkey == "" {
		return "", db.ErrMissingShortkey
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		suffix, err := randomCodeSuffix()
		if err != nil {
			return "", err
		}

		code := fmt.Sprintf("%s-%s", shortkey, suffix)
		exists, err := service.tickets.TicketCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}

		util.LOGGER.Warn("ticket code collision, retrying", "code", code, "attempt", attempt+1)
	}

	util.LOGGER.Error("ticket code generation exhausted attempts", "shortkey", shortkey, "attempts", maxCodeAttempts)
	return "", db.ErrCodeExhausted
}

// Generate the numeric order reference: current time plus randomness,
// truncated to 15 digits. Uniqueness is not guaranteed here; the issuance
// transaction rejects a reused code as a conflict.
func GenerateOrderCode() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		n = big.NewInt(time.Now().UnixNano() % 1000)
	}
	return (time.Now().UnixMilli()*1000 + n.Int64()) % orderCodeModulus
}
