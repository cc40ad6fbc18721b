package gpg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleListing = `tru::1:1700000000:0:3:1:5
pub:u:255:22:AB12CD34EF56AB78:1600000000:1800000000::u:::scESC:::::ed25519:::0:
fpr:::::::::1234567890ABCDEF1234567890ABCDEF12345678:
uid:u::::1600000000::DEADBEEF::Alice Example <alice@example.com>::::::::::0:
sub:u:255:18:1122334455667788:1600000000::::::e:::::cv25519::
fpr:::::::::AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA:
pub:-:4096:1:99AA88BB77CC66DD:1500000000:::-:::scESC::::::rsa::
fpr:::::::::FEDCBA0987654321FEDCBA0987654321FEDCBA09:
uid:-::::1500000000::CAFED00D::Bob Builder <bob@example.com>::::::::::0:
uid:-::::1500000001::CAFED00E::Bob Builder (work) <bob@work.example>::::::::::0:
`

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys(strings.NewReader(sampleListing))
	require.NoError(t, err)
	require.Len(t, keys, 2)

	alice := keys[0]
	require.Equal(t, "pub", alice.Type)
	require.Equal(t, "AB12CD34EF56AB78", alice.KeyID)
	require.Equal(t, "1234567890ABCDEF1234567890ABCDEF12345678", alice.Fingerprint)
	require.Equal(t, []string{"Alice Example <alice@example.com>"}, alice.UserIDs)
	require.Equal(t, 255, alice.Length)
	require.Equal(t, 22, alice.Algorithm)
	require.Equal(t, "u", alice.Validity)
	require.Equal(t, time.Unix(1600000000, 0).UTC(), alice.CreationDate)
	require.Equal(t, time.Unix(1800000000, 0).UTC(), alice.ExpirationDate)

	bob := keys[1]
	require.Equal(t, "99AA88BB77CC66DD", bob.KeyID)
	require.Equal(t, "FEDCBA0987654321FEDCBA0987654321FEDCBA09", bob.Fingerprint)
	require.Len(t, bob.UserIDs, 2)
	require.True(t, bob.ExpirationDate.IsZero(), "no expiration")
	require.Equal(t, 4096, bob.Length)
}

func TestParseKeys_SecretListing(t *testing.T) {
	listing := "sec:u:255:22:AB12CD34EF56AB78:1600000000:::u:::scESC:::+::ed25519:::0:\n" +
		"fpr:::::::::1234567890ABCDEF1234567890ABCDEF12345678:\n" +
		"uid:u::::1600000000::DEADBEEF::Alice Example <alice@example.com>::::::::::0:\n"

	keys, err := ParseKeys(strings.NewReader(listing))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, "sec", keys[0].Type)
}

func TestParseKeys_Empty(t *testing.T) {
	keys, err := ParseKeys(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestParseKeys_ISODates(t *testing.T) {
	listing := "pub:-:2048:1:0011223344556677:2011-06-25::::::scESC::::::rsa::\n"

	keys, err := ParseKeys(strings.NewReader(listing))
	require.NoError(t, err)
	require.Len(t, keys, 1)
	require.Equal(t, 2011, keys[0].CreationDate.Year())
}

func TestHasBadSignature(t *testing.T) {
	require.True(t, HasBadSignature(`gpg: BAD signature from "Mallory <m@example.com>"`))
	require.False(t, HasBadSignature(`gpg: Good signature from "Alice <alice@example.com>"`))
	require.False(t, HasBadSignature(""))
}

func TestSignerFromStatus(t *testing.T) {
	status := "gpg: Signature made Fri 29 Aug 2026\n" +
		"gpg: Good signature from \"Alice Example <alice@example.com>\" [ultimate]\n"

	require.Equal(t, "Alice Example <alice@example.com>", SignerFromStatus(status))
	require.Empty(t, SignerFromStatus("no signature lines here"))
}

func TestCompareVersions(t *testing.T) {
	require.Equal(t, -1, compareVersions("1.4.23", "2.0.0"))
	require.Equal(t, 0, compareVersions("2.0.0", "2.0.0"))
	require.Equal(t, 1, compareVersions("2.4.4", "2.0.0"))
	require.Equal(t, -1, compareVersions("2.0", "2.0.1"))
}
