package pump

import (
	"fmt"
	"io"
	"os"
	"syscall"

	stderrors "errors"

	"github.com/wagiedev/gnupg-sdk-go/internal/errors"
)

const (
	// initialBufferSize is the buffer size a pump starts with.
	initialBufferSize = 256
	// maxBufferSize caps buffer growth. The buffer never shrinks within
	// one pump's lifetime.
	maxBufferSize = 64 * 1024
	// growthFactor multiplies the buffer size while reads saturate it.
	growthFactor = 4
)

// Pump transfers all remaining bytes from src to dst, in order, and returns
// the number of bytes written. Either end being nil is a no-op; the caller
// chose not to redirect that stream.
//
// The buffer starts at 256 bytes. While each read fully fills the buffer it
// is grown by a factor of four, up to 64KB. End of stream terminates the
// pump without error.
func Pump(dst io.Writer, src io.Reader) (int64, error) {
	if src == nil || dst == nil {
		return 0, nil
	}

	buf := make([]byte, initialBufferSize)

	var written int64

	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			wn, writeErr := dst.Write(buf[:n])
			written += int64(wn)

			if writeErr != nil {
				return written, classify("write", writeErr)
			}

			if wn < n {
				return written, classify("write", io.ErrShortWrite)
			}
		}

		if readErr == io.EOF {
			return written, nil
		}

		if readErr != nil {
			return written, classify("read", readErr)
		}

		// A saturated read suggests more data is coming; grow the buffer.
		if n == len(buf) && len(buf) < maxBufferSize {
			size := len(buf) * growthFactor
			if size > maxBufferSize {
				size = maxBufferSize
			}

			buf = make([]byte, size)
		}
	}
}

// classify wraps stream failures. Errors that mean the stream cannot be
// used in the required direction at all become UnsupportedStreamError;
// everything else is an ordinary I/O failure.
func classify(op string, err error) error {
	if stderrors.Is(err, os.ErrInvalid) || stderrors.Is(err, os.ErrClosed) || stderrors.Is(err, syscall.EBADF) {
		return &errors.UnsupportedStreamError{Op: op, Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
