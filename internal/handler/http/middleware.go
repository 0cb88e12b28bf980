package http

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	CartSessionCookie = "cart_session"
	cartSessionMaxAge = 365 * 24 * 60 * 60
)

type contextKey string

const cartSessionKey contextKey = "cart_session"

// CartSession makes sure every request carries a cart session id. A missing
// or malformed cookie is replaced by a fresh UUID v4.
func CartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var session string
		if c, err := r.Cookie(CartSessionCookie); err == nil {
			if id, err := uuid.FromString(c.Value); err == nil && id.Version() == uuid.V4 {
				session = id.String()
			}
		}

		if session == "" {
			id, err := uuid.NewV4()
			if err != nil {
				log.Error().Err(err).Msg("handler: failed to generate cart session id")
				respondWithError(w, http.StatusInternalServerError, "Failed to start cart session")
				return
			}
			session = id.String()
			http.SetCookie(w, &http.Cookie{
				Name:     CartSessionCookie,
				Value:    session,
				Path:     "/",
				MaxAge:   cartSessionMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})
		}

		ctx := context.WithValue(r.Context(), cartSessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cartSessionFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(cartSessionKey).(string); ok {
		return s
	}
	return ""
}

// AdminAuth guards the admin routes with HTTP Basic auth against one
// configured email and bcrypt password hash. Without a configured hash every
// request is refused.
func AdminAuth(email, passwordHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				respondWithError(w, http.StatusServiceUnavailable, "Admin access is not configured")
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
				respondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			emailOK := subtle.ConstantTimeCompare([]byte(user), []byte(email)) == 1
			passErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(pass))
			if !emailOK || passErr != nil {
				log.Warn().Str("user", user).Str("remote_addr", r.RemoteAddr).Msg("handler: admin authentication failed")
				w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
				respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			event := log.Info()
			if status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("handler: request served")
		}()

		next.ServeHTTP(ww, r)
	})
}
