package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/secmon-lab/taproom/pkg/utils/logging"
)

// maxDrain bounds how much of an unread response body is discarded so the
// connection can go back to the pool
const maxDrain = 4 << 10

// CloseBody discards up to maxDrain unread bytes of body and closes it.
// Failures are logged with attrs and otherwise ignored.
func CloseBody(ctx context.Context, body io.ReadCloser, attrs ...any) {
	if body == nil {
		return
	}
	if _, err := io.CopyN(io.Discard, body, maxDrain); err != nil && err != io.EOF {
		logging.From(ctx).Debug("response body not drained", append(attrs, slog.Any("error", err))...)
	}
	if err := body.Close(); err != nil {
		logging.From(ctx).Warn("failed to close response body", append(attrs, slog.Any("error", err))...)
	}
}

// Write sends data to w. A short or failed write is logged with the number
// of bytes that made it out.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("failed to write response",
			slog.Int("written", n),
			slog.Int("size", len(data)),
			slog.Any("error", err))
	}
}
