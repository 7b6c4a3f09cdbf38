package middleware

import (
	"context"
	"net/http"

	"smart-store/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

// SessionMiddleware resolves the visitor's session id from the signed
// cookie. A missing, tampered or expired cookie starts a fresh session.
// The cookie is reissued on every request so its expiry slides.
func SessionMiddleware(codec *session.CookieCodec, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(session.CookieName); err == nil {
				id, err := codec.Decode(cookie.Value)
				if err != nil {
					logger.Debug("Discarding invalid session cookie", zap.Error(err))
				} else {
					sessionID = id
				}
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
				logger.Debug("Starting new session", zap.String("session_id", sessionID))
			}

			cookie, err := codec.Cookie(sessionID)
			if err != nil {
				logger.Error("Failed to issue session cookie", zap.Error(err))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.SetCookie(w, cookie)

			ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionID extracts the session id from request context
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionIDKey).(string)
	return sessionID, ok
}

// AdminChecker reports whether a session passed the admin gate
type AdminChecker interface {
	IsAdmin(ctx context.Context, sessionID string) (bool, error)
}

// RequireAdmin middleware ensures the session is logged in as admin
func RequireAdmin(checker AdminChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID, ok := GetSessionID(r.Context())
			if !ok {
				logger.Warn("Session not found in context")
				RespondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			isAdmin, err := checker.IsAdmin(r.Context(), sessionID)
			if err != nil {
				logger.Error("Failed to check admin session", zap.Error(err), zap.String("session_id", sessionID))
				RespondWithError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !isAdmin {
				logger.Warn("Non-admin session attempted to access admin endpoint",
					zap.String("session_id", sessionID),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
