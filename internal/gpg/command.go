package gpg

import (
	"fmt"
	"os"

	"github.com/wagiedev/gnupg-sdk-go/internal/config"
)

// Action identifies one gpg operation.
type Action string

const (
	ActionEncrypt        Action = "encrypt"
	ActionDecrypt        Action = "decrypt"
	ActionSign           Action = "sign"
	ActionClearSign      Action = "clearsign"
	ActionDetachSign     Action = "detach-sign"
	ActionVerify         Action = "verify"
	ActionListKeys       Action = "list-keys"
	ActionListSecretKeys Action = "list-secret-keys"
	ActionImport         Action = "import"
	ActionExport         Action = "export"
)

// Params carries the per-invocation inputs of an action, as opposed to the
// client-wide Options.
type Params struct {
	// Recipients are the encryption recipients (key ids, fingerprints, or
	// user id fragments).
	Recipients []string

	// KeyID selects the key for export.
	KeyID string
}

// BuildArgs constructs the gpg command arguments for one action.
//
// Every invocation runs with --batch --yes --no-tty: the subprocess is
// non-interactive and must never wait for a terminal.
func BuildArgs(action Action, options *config.Options, params Params) []string {
	args := []string{"--batch", "--yes", "--no-tty"}

	if options.HomeDir != "" {
		args = append(args, "--homedir", options.HomeDir)
	}

	if options.Passphrase != "" {
		args = append(args, "--pinentry-mode", "loopback", "--passphrase", options.Passphrase)
	}

	if options.Armor && actionProducesOutput(action) {
		args = append(args, "--armor")
	}

	if options.LocalUser != "" && actionSigns(action) {
		args = append(args, "--local-user", options.LocalUser)
	}

	if action == ActionEncrypt {
		trust := options.Trust
		if trust == config.TrustDefault {
			trust = config.TrustAlways
		}

		args = append(args, "--trust-model", string(trust))

		for _, recipient := range params.Recipients {
			args = append(args, "--recipient", recipient)
		}
	}

	switch action {
	case ActionEncrypt:
		args = append(args, "--encrypt")

	case ActionDecrypt:
		args = append(args, "--decrypt")

	case ActionSign:
		args = append(args, "--sign")

	case ActionClearSign:
		args = append(args, "--clearsign")

	case ActionDetachSign:
		args = append(args, "--detach-sign")

	case ActionVerify:
		args = append(args, "--verify")

	case ActionListKeys:
		args = append(args, "--with-colons", "--fixed-list-mode", "--with-fingerprint", "--list-keys")

	case ActionListSecretKeys:
		args = append(args, "--with-colons", "--fixed-list-mode", "--with-fingerprint", "--list-secret-keys")

	case ActionImport:
		args = append(args, "--import")

	case ActionExport:
		args = append(args, "--export", params.KeyID)
	}

	return args
}

// actionProducesOutput reports whether the action emits OpenPGP data that
// --armor applies to.
func actionProducesOutput(action Action) bool {
	switch action {
	case ActionEncrypt, ActionSign, ActionClearSign, ActionDetachSign, ActionExport:
		return true
	default:
		return false
	}
}

// actionSigns reports whether the action uses the local signing key.
func actionSigns(action Action) bool {
	switch action {
	case ActionSign, ActionClearSign, ActionDetachSign:
		return true
	default:
		return false
	}
}

// BuildEnvironment builds the subprocess environment: the parent's
// environment plus any configured overrides.
func BuildEnvironment(options *config.Options) []string {
	if len(options.Env) == 0 {
		return nil
	}

	env := os.Environ()

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
