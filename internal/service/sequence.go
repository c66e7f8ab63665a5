package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Display number prefixes.
const (
	SalePrefix     = "POS"
	RegisterPrefix = "CAJA"
)

// LastNumberFunc returns the display number of the most recently created
// record of a collection, or "" when the collection is empty.
type LastNumberFunc func(ctx context.Context) (string, error)

// NextNumber allocates the next human-readable display number for a
// collection: "<PREFIX>-NNNNNN", 6-digit zero-padded, derived from the last
// created record. These numbers are for human reference only — they are not
// keys, and concurrent callers may occasionally mint the same value.
//
// Failure policy: a failed read or an unparseable last value must never abort
// the caller's operation, so it falls back to the last six digits of the
// current unix timestamp.
func NextNumber(ctx context.Context, prefix string, last LastNumberFunc) string {
	lastNum, err := last(ctx)
	if err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Msg("sequence: last-number read failed, using timestamp fallback")
		return timestampFallback(prefix)
	}
	if lastNum == "" {
		return fmt.Sprintf("%s-%06d", prefix, 1)
	}

	idx := strings.LastIndex(lastNum, "-")
	if idx < 0 {
		log.Warn().Str("prefix", prefix).Str("last", lastNum).Msg("sequence: unparseable last number, using timestamp fallback")
		return timestampFallback(prefix)
	}
	n, err := strconv.Atoi(lastNum[idx+1:])
	if err != nil {
		log.Warn().Err(err).Str("prefix", prefix).Str("last", lastNum).Msg("sequence: unparseable suffix, using timestamp fallback")
		return timestampFallback(prefix)
	}
	return fmt.Sprintf("%s-%06d", prefix, n+1)
}

func timestampFallback(prefix string) string {
	return fmt.Sprintf("%s-%06d", prefix, time.Now().Unix()%1000000)
}
