// Package gnupg provides a Go SDK for driving the GnuPG command-line tool.
//
// The SDK runs gpg as a subprocess for each operation: it builds the
// argument line, feeds optional input, captures optional output, and
// renders one deterministic success or failure without deadlocking on the
// operating system's pipe buffers.
//
// # Basic Usage
//
// Create a client and call operations with streams:
//
//	g := gnupg.New(
//	    gnupg.WithArmor(true),
//	    gnupg.WithTimeout(30*time.Second),
//	)
//
//	var ciphertext bytes.Buffer
//	err := g.Encrypt(ctx, strings.NewReader("secret"), &ciphertext, "alice@example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// By default, logging is disabled. Use WithLogger to enable logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	g := gnupg.New(gnupg.WithLogger(logger))
//
// # Asynchronous Operations
//
// The core operations have asynchronous variants backed by a
// single-completion Operation handle, and Begin adapts any function. Handles support blocking waits,
// completion callbacks, and opaque correlation tokens:
//
//	op := g.ListKeysAsync(ctx, nil, "job-42")
//	// ... other work ...
//	keys, err := gnupg.End[[]gnupg.Key](ctx, op)
//
// The stored outcome is not consumed by observation: every End or Wait on
// a completed handle returns the identical value or re-raises the
// identical error.
//
// # Error Handling
//
// Failures surface as typed errors (ProcessError, TimeoutError,
// BinaryNotFoundError, ...) that support errors.Is and errors.As. When a
// gpg run fails in more than one way at once, the failures are combined
// into an AggregateError; a single failure is always returned unwrapped.
//
// One behavior is inherited from the wrappers this SDK descends from and
// is deliberately preserved: a gpg run that exits non-zero without
// writing anything to stderr is treated as success.
package gnupg
