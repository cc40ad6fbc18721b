// Package config holds the SDK's configuration types.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout bounds gpg invocations when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// TrustModel selects how gpg validates recipient keys.
type TrustModel string

const (
	// TrustDefault uses the keyring's own trust database.
	TrustDefault TrustModel = ""
	// TrustAlways skips trust validation of recipient keys. This is the
	// historical default of command-line wrappers, which typically manage
	// their own keyrings.
	TrustAlways TrustModel = "always"
	// TrustPGP uses the classic web-of-trust model.
	TrustPGP TrustModel = "pgp"
)

// Options configures the behavior of the GnuPG client.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// BinaryPath is an explicit path to the gpg binary. When empty, the
	// binary is discovered via PATH and common install locations.
	BinaryPath string

	// HomeDir is the gpg home directory (--homedir). Empty uses gpg's own
	// default.
	HomeDir string

	// Cwd is the working directory for gpg subprocesses.
	Cwd string

	// Env holds extra environment variables for gpg subprocesses.
	Env map[string]string

	// Timeout bounds each gpg invocation. Zero means DefaultTimeout.
	Timeout time.Duration

	// Armor requests ASCII-armored output for encrypt, sign, and export.
	Armor bool

	// LocalUser selects the signing key (--local-user).
	LocalUser string

	// Passphrase, when set, is supplied to gpg in loopback pinentry mode.
	Passphrase string

	// Trust selects the trust model. TrustAlways by default.
	Trust TrustModel

	// SkipVersionCheck skips the gpg version probe during discovery.
	// Can also be controlled via the GNUPG_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool
}

// fileOptions is the YAML representation of Options.
type fileOptions struct {
	BinaryPath       string            `yaml:"binary"`
	HomeDir          string            `yaml:"homedir"`
	Cwd              string            `yaml:"cwd"`
	Env              map[string]string `yaml:"env"`
	Timeout          string            `yaml:"timeout"`
	Armor            bool              `yaml:"armor"`
	LocalUser        string            `yaml:"local_user"`
	Trust            string            `yaml:"trust"`
	SkipVersionCheck bool              `yaml:"skip_version_check"`
}

// Load reads options from a YAML file. The passphrase deliberately has no
// file representation; supply it programmatically.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read options file: %w", err)
	}

	var f fileOptions

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse options file %s: %w", path, err)
	}

	var timeout time.Duration

	if f.Timeout != "" {
		timeout, err = time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse timeout %q: %w", f.Timeout, err)
		}
	}

	return &Options{
		BinaryPath:       f.BinaryPath,
		HomeDir:          f.HomeDir,
		Cwd:              f.Cwd,
		Env:              f.Env,
		Timeout:          timeout,
		Armor:            f.Armor,
		LocalUser:        f.LocalUser,
		Trust:            TrustModel(f.Trust),
		SkipVersionCheck: f.SkipVersionCheck,
	}, nil
}
