package gnupg

import (
	"github.com/wagiedev/gnupg-sdk-go/internal/config"
	"github.com/wagiedev/gnupg-sdk-go/internal/gpg"
)

// Key is one key from a gpg key listing.
type Key = gpg.Key

// TrustModel selects how gpg validates recipient keys.
type TrustModel = config.TrustModel

// Trust model values.
const (
	// TrustDefault uses the keyring's own trust database.
	TrustDefault = config.TrustDefault
	// TrustAlways skips trust validation of recipient keys.
	TrustAlways = config.TrustAlways
	// TrustPGP uses the classic web-of-trust model.
	TrustPGP = config.TrustPGP
)
