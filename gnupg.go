package gnupg

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/wagiedev/gnupg-sdk-go/internal/config"
	"github.com/wagiedev/gnupg-sdk-go/internal/gpg"
	"github.com/wagiedev/gnupg-sdk-go/internal/runner"
)

// GPG is a client for the GnuPG command-line tool. Each operation spawns
// one gpg subprocess; the client holds no process state between
// operations and is safe for concurrent use.
type GPG struct {
	log     *slog.Logger
	options *config.Options
	runner  *runner.Runner

	discoverOnce sync.Once
	binary       string
	discoverErr  error
}

// New creates a client.
//
// Binary discovery is deferred to the first operation, which searches for
// gpg in the following order:
//  1. The explicit path from WithBinaryPath (if provided)
//  2. The system PATH (gpg, then gpg2)
//  3. Common installation directories, ending with /usr/bin/gpg
//
// The first operation returns BinaryNotFoundError if no binary can be
// located.
func New(opts ...Option) *GPG {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "gnupg")

	return &GPG{
		log:     log,
		options: options,
		runner:  runner.New(log),
	}
}

// resolveBinary discovers the gpg binary once and caches the outcome,
// including a failed one.
func (g *GPG) resolveBinary(ctx context.Context) (string, error) {
	g.discoverOnce.Do(func() {
		discoverer := gpg.NewDiscoverer(&gpg.Config{
			BinaryPath:       g.options.BinaryPath,
			SkipVersionCheck: g.options.SkipVersionCheck,
			Logger:           g.log,
		})

		g.binary, g.discoverErr = discoverer.Discover(ctx)
	})

	return g.binary, g.discoverErr
}

// run executes one gpg action through the subprocess runner.
func (g *GPG) run(ctx context.Context, action gpg.Action, params gpg.Params, in io.Reader, out io.Writer) error {
	binary, err := g.resolveBinary(ctx)
	if err != nil {
		return err
	}

	return g.runner.Run(ctx, runner.Invocation{
		Binary:  binary,
		Args:    gpg.BuildArgs(action, g.options, params),
		Env:     gpg.BuildEnvironment(g.options),
		Dir:     g.options.Cwd,
		Input:   in,
		Output:  out,
		Timeout: g.options.Timeout,
	})
}

// Encrypt encrypts in to out for the given recipients.
func (g *GPG) Encrypt(ctx context.Context, in io.Reader, out io.Writer, recipients ...string) error {
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	return g.run(ctx, gpg.ActionEncrypt, gpg.Params{Recipients: recipients}, in, out)
}

// Decrypt decrypts in to out.
func (g *GPG) Decrypt(ctx context.Context, in io.Reader, out io.Writer) error {
	return g.run(ctx, gpg.ActionDecrypt, gpg.Params{}, in, out)
}

// Sign signs in, writing the signed data to out. The signing key is
// selected with WithLocalUser.
func (g *GPG) Sign(ctx context.Context, in io.Reader, out io.Writer) error {
	return g.run(ctx, gpg.ActionSign, gpg.Params{}, in, out)
}

// ClearSign wraps in in a cleartext signature, written to out.
func (g *GPG) ClearSign(ctx context.Context, in io.Reader, out io.Writer) error {
	return g.run(ctx, gpg.ActionClearSign, gpg.Params{}, in, out)
}

// DetachSign writes a detached signature for in to out.
func (g *GPG) DetachSign(ctx context.Context, in io.Reader, out io.Writer) error {
	return g.run(ctx, gpg.ActionDetachSign, gpg.Params{}, in, out)
}

// Verify checks the signature on in. A BAD signature verdict surfaces as
// a ProcessError carrying gpg's error text; use IsBadSignature to detect
// it.
func (g *GPG) Verify(ctx context.Context, in io.Reader) error {
	return g.run(ctx, gpg.ActionVerify, gpg.Params{}, in, nil)
}

// ListKeys lists the public keys in the keyring.
func (g *GPG) ListKeys(ctx context.Context) ([]Key, error) {
	return g.listKeys(ctx, gpg.ActionListKeys)
}

// ListSecretKeys lists the secret keys in the keyring.
func (g *GPG) ListSecretKeys(ctx context.Context) ([]Key, error) {
	return g.listKeys(ctx, gpg.ActionListSecretKeys)
}

func (g *GPG) listKeys(ctx context.Context, action gpg.Action) ([]Key, error) {
	var out bytes.Buffer

	if err := g.run(ctx, action, gpg.Params{}, nil, &out); err != nil {
		return nil, err
	}

	return gpg.ParseKeys(&out)
}

// ImportKey imports the key material read from in into the keyring.
func (g *GPG) ImportKey(ctx context.Context, in io.Reader) error {
	return g.run(ctx, gpg.ActionImport, gpg.Params{}, in, nil)
}

// ExportKey writes the public key identified by keyID to out.
func (g *GPG) ExportKey(ctx context.Context, keyID string, out io.Writer) error {
	if keyID == "" {
		return ErrNoKeyID
	}

	return g.run(ctx, gpg.ActionExport, gpg.Params{KeyID: keyID}, nil, out)
}

// Version reports the gpg version line, e.g. "gpg (GnuPG) 2.4.4".
func (g *GPG) Version(ctx context.Context) (string, error) {
	binary, err := g.resolveBinary(ctx)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer

	err = g.runner.Run(ctx, runner.Invocation{
		Binary:  binary,
		Args:    []string{"--version"},
		Output:  &out,
		Timeout: g.options.Timeout,
	})
	if err != nil {
		return "", err
	}

	version, _, _ := strings.Cut(out.String(), "\n")

	return strings.TrimSpace(version), nil
}

// ===== Asynchronous variants =====
//
// Each variant hosts the synchronous operation on its own goroutine and
// returns a handle immediately. Collect the outcome with End, a Wait on
// the handle, or the completion callback.

// EncryptAsync starts Encrypt asynchronously.
func (g *GPG) EncryptAsync(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	recipients []string,
	callback func(Handle),
	token any,
) *Operation[struct{}] {
	return g.beginUnit(func() error {
		return g.Encrypt(ctx, in, out, recipients...)
	}, callback, token)
}

// DecryptAsync starts Decrypt asynchronously.
func (g *GPG) DecryptAsync(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	callback func(Handle),
	token any,
) *Operation[struct{}] {
	return g.beginUnit(func() error {
		return g.Decrypt(ctx, in, out)
	}, callback, token)
}

// SignAsync starts Sign asynchronously.
func (g *GPG) SignAsync(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	callback func(Handle),
	token any,
) *Operation[struct{}] {
	return g.beginUnit(func() error {
		return g.Sign(ctx, in, out)
	}, callback, token)
}

// VerifyAsync starts Verify asynchronously.
func (g *GPG) VerifyAsync(
	ctx context.Context,
	in io.Reader,
	callback func(Handle),
	token any,
) *Operation[struct{}] {
	return g.beginUnit(func() error {
		return g.Verify(ctx, in)
	}, callback, token)
}

// ListKeysAsync starts ListKeys asynchronously. Collect the listing with
// End[[]gnupg.Key].
func (g *GPG) ListKeysAsync(ctx context.Context, callback func(Handle), token any) *Operation[[]Key] {
	return Begin(func() ([]Key, error) {
		return g.ListKeys(ctx)
	}, callback, token)
}

// beginUnit adapts an error-only operation to the Operation primitive.
func (g *GPG) beginUnit(work func() error, callback func(Handle), token any) *Operation[struct{}] {
	return Begin(func() (struct{}, error) {
		return struct{}{}, work()
	}, callback, token)
}
