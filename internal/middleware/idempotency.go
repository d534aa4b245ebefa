package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	redisstore "carrier/internal/redis"
)

const idempotencyHeader = "Idempotency-Key"

// storedResponse is the replayable response for an idempotency key.
// Body is raw bytes (base64 in the envelope) so the stored response
// round-trips regardless of its content type.
type storedResponse struct {
	StatusCode  int    `json:"status_code"`
	Body        []byte `json:"body"`
	ContentType string `json:"content_type"`
}

// captureWriter wraps gin.ResponseWriter to keep a copy of the body.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for repeated writes
// carrying the same Idempotency-Key header. It must run after auth: the
// store is scoped by the resolved user, so a stored response answers
// only repeats from the carrier it was produced for, never another
// caller presenting the same client-chosen key.
func IdempotencyMiddleware(store redisstore.ResponseStoreInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		userID := UserID(c)
		if key == "" || userID == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		data, err := store.Get(ctx, userID, key)
		if err != nil {
			// Store unavailable: fall through, the handlers are safe to repeat.
			c.Next()
			return
		}

		if data != nil {
			var stored storedResponse
			if json.Unmarshal(data, &stored) == nil {
				contentType := stored.ContentType
				if contentType == "" {
					contentType = "application/json"
				}
				c.Data(stored.StatusCode, contentType, stored.Body)
				c.Abort()
				return
			}
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		// Server failures are not replayed; the client should retry them.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			payload, err := json.Marshal(storedResponse{
				StatusCode:  c.Writer.Status(),
				Body:        w.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			})
			if err == nil {
				_ = store.Set(ctx, userID, key, payload)
			}
		}
	}
}
