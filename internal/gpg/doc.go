// Package gpg provides binary discovery, version validation, command
// building, and output parsing for the GnuPG binary.
//
// # Discovery
//
// The Discoverer interface locates and validates the gpg binary:
//
//	discoverer := gpg.NewDiscoverer(&gpg.Config{
//	    BinaryPath: "",            // Optional explicit path
//	    Logger:     slog.Default(),
//	})
//	binary, err := discoverer.Discover(ctx)
//
// Discovery searches in the following order:
//  1. Explicit path in Config.BinaryPath (if provided)
//  2. System PATH (gpg, then gpg2)
//  3. Common installation directories, ending with the static fallback
//     /usr/bin/gpg
//
// During discovery the binary's version is probed with `gpg --version` and
// validated against MinimumVersion. A warning is logged when the version is
// below minimum. The probe can be skipped via Config.SkipVersionCheck or
// the GNUPG_SDK_SKIP_VERSION_CHECK environment variable.
//
// # Command building
//
// BuildArgs assembles the argument line for one gpg action from structured
// options; BuildEnvironment assembles the subprocess environment.
//
// # Output parsing
//
// ParseKeys decodes `--list-keys --with-colons` records into Key values,
// and HasBadSignature inspects captured error text for gpg's verification
// failure marker.
package gpg
