package gpg

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Key is one key from a gpg key listing.
type Key struct {
	// Type is the colon-record type: "pub" for public keys, "sec" for
	// secret keys.
	Type string

	// KeyID is the long key id.
	KeyID string

	// Fingerprint is the full key fingerprint.
	Fingerprint string

	// UserIDs are the user ids bound to the key, in listing order.
	UserIDs []string

	// Length is the key length in bits.
	Length int

	// Algorithm is gpg's numeric public key algorithm id.
	Algorithm int

	// Validity is gpg's one-letter validity code for the key.
	Validity string

	// CreationDate is when the key was created.
	CreationDate time.Time

	// ExpirationDate is when the key expires; zero when it does not.
	ExpirationDate time.Time
}

// Colon-record field positions, per gnupg's doc/DETAILS.
const (
	fieldType       = 0
	fieldValidity   = 1
	fieldLength     = 2
	fieldAlgorithm  = 3
	fieldKeyID      = 4
	fieldCreation   = 5
	fieldExpiration = 6
	fieldUserID     = 9
	minFields       = 10
)

// ParseKeys decodes `--with-colons` key listing records. uid and fpr
// records are folded into the preceding pub/sec record; sub records are
// skipped.
func ParseKeys(r io.Reader) ([]Key, error) {
	var (
		keys    []Key
		current *Key
	)

	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < minFields {
			continue
		}

		switch fields[fieldType] {
		case "pub", "sec":
			if current != nil {
				keys = append(keys, *current)
			}

			current = &Key{
				Type:           fields[fieldType],
				Validity:       fields[fieldValidity],
				KeyID:          fields[fieldKeyID],
				CreationDate:   parseKeyTime(fields[fieldCreation]),
				ExpirationDate: parseKeyTime(fields[fieldExpiration]),
			}
			current.Length, _ = strconv.Atoi(fields[fieldLength])
			current.Algorithm, _ = strconv.Atoi(fields[fieldAlgorithm])

			// Old-style listings put the primary uid on the key record.
			if uid := fields[fieldUserID]; uid != "" {
				current.UserIDs = append(current.UserIDs, uid)
			}

		case "fpr":
			if current != nil && current.Fingerprint == "" {
				current.Fingerprint = fields[fieldUserID]
			}

		case "uid":
			if current != nil {
				current.UserIDs = append(current.UserIDs, fields[fieldUserID])
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan key listing: %w", err)
	}

	if current != nil {
		keys = append(keys, *current)
	}

	return keys, nil
}

// parseKeyTime decodes a colon-record timestamp: seconds since the epoch,
// or the older ISO date form.
func parseKeyTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}

	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}

	return time.Time{}
}

// badSignatureMarker is gpg's verification failure keyword in error text.
const badSignatureMarker = "BAD signature"

// HasBadSignature reports whether captured gpg error text declares a
// failed signature verification.
func HasBadSignature(text string) bool {
	return strings.Contains(text, badSignatureMarker)
}

// SignerFromStatus extracts the quoted signer name from a Good/BAD
// signature line, or returns the empty string.
func SignerFromStatus(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if !strings.Contains(line, "signature from") {
			continue
		}

		start := strings.IndexByte(line, '"')
		if start < 0 {
			continue
		}

		end := strings.IndexByte(line[start+1:], '"')
		if end < 0 {
			continue
		}

		return line[start+1 : start+1+end]
	}

	return ""
}
