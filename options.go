package gnupg

import (
	"log/slog"
	"time"

	"github.com/wagiedev/gnupg-sdk-go/internal/config"
)

// Option configures a client using the functional options pattern.
type Option func(*config.Options)

// applyOptions applies functional options to a config.Options struct.
func applyOptions(opts []Option) *config.Options {
	options := &config.Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *config.Options) {
		o.Logger = logger
	}
}

// WithBinaryPath sets an explicit gpg binary path, skipping discovery.
func WithBinaryPath(path string) Option {
	return func(o *config.Options) {
		o.BinaryPath = path
	}
}

// WithHomeDir sets the gpg home directory (--homedir).
func WithHomeDir(dir string) Option {
	return func(o *config.Options) {
		o.HomeDir = dir
	}
}

// WithCwd sets the working directory for gpg subprocesses.
func WithCwd(cwd string) Option {
	return func(o *config.Options) {
		o.Cwd = cwd
	}
}

// WithEnv sets extra environment variables for gpg subprocesses.
func WithEnv(env map[string]string) Option {
	return func(o *config.Options) {
		o.Env = env
	}
}

// WithTimeout bounds each gpg invocation. The default is 10 seconds.
// A run that exceeds the timeout is forcibly killed and fails with
// TimeoutError.
func WithTimeout(timeout time.Duration) Option {
	return func(o *config.Options) {
		o.Timeout = timeout
	}
}

// WithArmor requests ASCII-armored output for encrypt, sign, and export.
func WithArmor(armor bool) Option {
	return func(o *config.Options) {
		o.Armor = armor
	}
}

// WithLocalUser selects the signing key (--local-user).
func WithLocalUser(user string) Option {
	return func(o *config.Options) {
		o.LocalUser = user
	}
}

// WithPassphrase supplies the key passphrase, passed to gpg in loopback
// pinentry mode.
func WithPassphrase(passphrase string) Option {
	return func(o *config.Options) {
		o.Passphrase = passphrase
	}
}

// WithTrustModel selects the trust model for encryption. The default is
// TrustAlways, matching the behavior of the command-line wrappers this
// SDK descends from.
func WithTrustModel(model TrustModel) Option {
	return func(o *config.Options) {
		o.Trust = model
	}
}

// WithSkipVersionCheck skips the gpg version probe during discovery.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *config.Options) {
		o.SkipVersionCheck = skip
	}
}

// OptionsFromFile loads options from a YAML file and returns them as a
// functional option, applied before any options listed after it:
//
//	fileOpts, err := gnupg.OptionsFromFile("gnupg.yaml")
//	if err != nil { ... }
//	g := gnupg.New(fileOpts, gnupg.WithPassphrase(pass))
//
// The passphrase has no file representation; supply it programmatically.
func OptionsFromFile(path string) (Option, error) {
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	return func(o *config.Options) {
		*o = *loaded
	}, nil
}
