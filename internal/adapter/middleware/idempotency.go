package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	httpadp "lendledger/internal/adapter/http"
	"lendledger/pkg/identity"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Request-scoped headers owned by this layer. The actor header is the one the
// API handlers read too, so its name lives with them.
const (
	HeaderRequestID = "Ld-Request-Id"
	HeaderRequestAt = "Ld-Request-At"
)

const (
	// A provisional lock outlives any reasonable handler run; finishing the
	// handler replaces it with the final entry.
	provisionalLockTTL = 60 * time.Second
	// Client clocks drift. Requests stamped further out than this are rejected.
	maxClockSkew = 10 * time.Minute
)

// scope identifies one logical mutation attempt: who sent it, which attempt
// it is, and when the client stamped it.
type scope struct {
	requestID string
	requestAt time.Time
	actor     string
}

func parseScope(h http.Header, now time.Time) (scope, error) {
	var s scope

	s.requestID = strings.TrimSpace(h.Get(HeaderRequestID))
	if s.requestID == "" {
		return s, errors.New("missing " + HeaderRequestID)
	}
	if !validReqID(s.requestID) {
		return s, errors.New("invalid " + HeaderRequestID + " format")
	}

	at, err := parseRequestAt(h.Get(HeaderRequestAt))
	if err != nil {
		return s, err
	}
	if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
		return s, errors.New(HeaderRequestAt + " too skewed")
	}
	s.requestAt = at

	s.actor = strings.TrimSpace(h.Get(httpadp.HeaderActorID))
	if s.actor == "" {
		return s, errors.New("missing " + httpadp.HeaderActorID)
	}
	if !identity.IsValid(s.actor) {
		return s, errors.New("invalid " + httpadp.HeaderActorID)
	}
	return s, nil
}

// teeWriter mirrors everything the handler writes so the finished response
// can be stored and replayed byte for byte.
type teeWriter struct {
	http.ResponseWriter
	buf  bytes.Buffer
	code int
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *teeWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// IdempotencyMiddleware deduplicates mutating requests keyed by method, route,
// actor, and request id. A retry with the same key and body replays the stored
// response; the same key with a different body is a conflict. Read methods
// pass through untouched.
func IdempotencyMiddleware(rdb *redis.Client, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			sc, err := parseScope(req.Header, nowUTC())
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(req.Method, c.Path(), sc.actor, sc.requestID)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			locked, err := provisionalSet(ctx, rdb, key, idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				RequestID:   sc.requestID,
				RequestAtMS: sc.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			})
			if err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
			}
			if !locked {
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil {
					log.Printf("idempotency load %s failed: %v", key, errLoad)
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
			}

			rec := &teeWriter{ResponseWriter: c.Response().Writer, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			final := idempEntry{
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				RequestID:   sc.requestID,
				RequestAtMS: sc.requestAt.UnixMilli(),
				CreatedAt:   nowUTC(),
			}
			_ = saveFinal(context.Background(), rdb, key, final, ttl)
			return nil
		}
	}
}
