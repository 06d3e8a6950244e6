package middleware

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net"
	"net/http"

	deliverycontext "jobdeck/internal/delivery/context"
	domainerrors "jobdeck/internal/domain/errors"
	"jobdeck/internal/errors"
	"jobdeck/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderIdempotencyKey is the client-supplied deduplication key.
	HeaderIdempotencyKey = "Idempotency-Key"

	// HeaderIdempotentReplay marks a response served from the ledger.
	HeaderIdempotentReplay = "X-Idempotent-Replay"
)

// IdempotencyMiddleware deduplicates dangerous mutations through the ledger.
type IdempotencyMiddleware struct {
	idempotencyUC usecase.IdempotencyUsecase
}

// NewIdempotencyMiddleware is the constructor for IdempotencyMiddleware.
func NewIdempotencyMiddleware(idempotencyUC usecase.IdempotencyUsecase) *IdempotencyMiddleware {
	return &IdempotencyMiddleware{idempotencyUC: idempotencyUC}
}

// Require refuses guarded mutations without an Idempotency-Key header, runs
// the handler through the ledger, and replays the stored response
// byte-for-byte on a duplicate.
func (m *IdempotencyMiddleware) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(HeaderIdempotencyKey)
		if key == "" {
			return domainerrors.ErrIdempotencyKeyMissing
		}

		principal := deliverycontext.GetPrincipal(c.Request().Context())
		if principal == nil {
			return domainerrors.ErrSessionExpired.WrapMessage("no authenticated principal")
		}

		requestHash, err := hashRequestBody(c)
		if err != nil {
			return domainerrors.ErrInternalError.WrapMessage("failed to read request body")
		}

		req := usecase.IdempotentRequest{
			OrgID:       principal.OrgID,
			ActorID:     principal.IdentityID,
			Method:      c.Request().Method,
			Path:        c.Path(),
			Key:         key,
			RequestHash: requestHash,
		}

		// The handler writes into a buffer so the first response can be
		// captured for replay without touching the real connection.
		originalWriter := c.Response().Writer
		buffer := newBufferingWriter(originalWriter)

		result, err := m.idempotencyUC.Execute(c.Request().Context(), req, func(_ context.Context) (int, []byte, error) {
			c.Response().Writer = buffer
			defer func() { c.Response().Writer = originalWriter }()

			if handlerErr := next(c); handlerErr != nil {
				return 0, nil, handlerErr
			}

			return c.Response().Status, buffer.Bytes(), nil
		})
		if err != nil {
			return err
		}

		// Write to the raw connection: on a fresh execution the echo response
		// was already committed into the buffer, on a replay the stored body
		// stands in for a handler that never ran.
		if result.Replayed {
			originalWriter.Header().Set(HeaderIdempotentReplay, "true")
			originalWriter.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		} else {
			copyHeader(originalWriter.Header(), buffer.header)
		}

		originalWriter.WriteHeader(result.Status)
		if _, err := originalWriter.Write(result.Body); err != nil {
			return errors.Wrap(err, "write response")
		}

		return nil
	}
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		dst[key] = values
	}
}

func hashRequestBody(c echo.Context) (string, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", errors.Wrap(err, "read request body")
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))

	sum := sha256.Sum256(body)

	return hex.EncodeToString(sum[:]), nil
}

// bufferingWriter captures status and body while delegating header storage to
// a clone of the wrapped writer's header map.
type bufferingWriter struct {
	header http.Header
	buf    bytes.Buffer
	status int
}

func newBufferingWriter(w http.ResponseWriter) *bufferingWriter {
	return &bufferingWriter{header: w.Header().Clone(), status: http.StatusOK}
}

func (w *bufferingWriter) Header() http.Header {
	return w.header
}

func (w *bufferingWriter) WriteHeader(status int) {
	w.status = status
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *bufferingWriter) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *bufferingWriter) Flush() {}

func (w *bufferingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, http.ErrNotSupported
}
