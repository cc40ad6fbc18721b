package gpg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wagiedev/gnupg-sdk-go/internal/errors"
)

const (
	// MinimumVersion is the minimum supported GnuPG version.
	MinimumVersion = "2.0.0"

	// VersionCheckTimeout is the timeout for the version probe.
	VersionCheckTimeout = 2 * time.Second

	// FallbackPath is the static last-resort location checked when neither
	// PATH nor the common install directories hold a gpg binary.
	FallbackPath = "/usr/bin/gpg"
)

// Config holds configuration for binary discovery.
type Config struct {
	// BinaryPath is an explicit gpg path that skips PATH search.
	// If empty, discovery will search PATH and common locations.
	BinaryPath string

	// SkipVersionCheck skips version validation during discovery.
	// Can also be controlled via the GNUPG_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates the gpg binary.
type Discoverer interface {
	// Discover locates the gpg binary and validates its version.
	// Returns the absolute path to the binary or an error.
	Discover(ctx context.Context) (string, error)
}

// discoverer implements the Discoverer interface.
type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new binary discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the gpg binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering gpg binary")

	binary, err := d.findBinary()
	if err != nil {
		d.log.Error("Failed to find gpg binary", "error", err)

		return "", err
	}

	d.log.Debug("Found gpg binary", "binary", binary)

	d.checkVersion(ctx, binary)

	return binary, nil
}

// findBinary locates the gpg binary.
func (d *discoverer) findBinary() (string, error) {
	// If explicit path provided, use it and only it
	if d.cfg.BinaryPath != "" {
		d.log.Debug("Using explicit binary path", "binary", d.cfg.BinaryPath)

		if _, err := os.Stat(d.cfg.BinaryPath); err == nil {
			return d.cfg.BinaryPath, nil
		}

		d.log.Debug("Explicit binary path not found", "binary", d.cfg.BinaryPath)

		return "", &errors.BinaryNotFoundError{SearchedPaths: []string{d.cfg.BinaryPath}}
	}

	searchedPaths := make([]string, 0, 6)

	// Search in PATH; gpg2 covers distributions that still split the two.
	for _, name := range []string{"gpg", "gpg2"} {
		d.log.Debug("Searching PATH", "name", name)

		if path, err := exec.LookPath(name); err == nil {
			d.log.Debug("Found binary in PATH", "path", path)

			return path, nil
		}

		searchedPaths = append(searchedPaths, "$PATH/"+name)
	}

	// Check common locations, ending with the static fallback.
	commonPaths := []string{
		"/usr/local/bin/gpg",
		"/opt/homebrew/bin/gpg",
		FallbackPath,
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found binary at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("gpg binary not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.BinaryNotFoundError{SearchedPaths: searchedPaths}
}

// checkVersion probes the gpg version and warns when it is below minimum.
// Probe failures are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, binary string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping version check (configured)")

		return
	}

	if os.Getenv("GNUPG_SDK_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping version check (GNUPG_SDK_SKIP_VERSION_CHECK set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, "--version")

	output, err := cmd.Output()
	if err != nil {
		d.log.Debug("Version probe failed", "error", err)

		return
	}

	// First line reads like "gpg (GnuPG) 2.4.4".
	re := regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(string(output))
	if match == nil {
		d.log.Debug("Could not parse gpg version", "output", firstLine(string(output)))

		return
	}

	version := match[1]
	if compareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("GnuPG version is unsupported by this SDK",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: GnuPG version %s is unsupported by this SDK. "+
				"Minimum required version is %s. Some operations may not work correctly.\n",
			version, MinimumVersion,
		)
	} else {
		d.log.Debug("Version check passed", "version", version, "minimum", MinimumVersion)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}

	return s
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
