package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
)

// Context keys for middleware
type contextKey string

const callerKey contextKey = "discover_caller"

// UserIDHeader carries the caller id when token auth is not required.
const UserIDHeader = "X-User-ID"

// Caller is the authenticated identity of a request
type Caller struct {
	ID    uuid.UUID
	Admin bool
}

// WithCaller stores the caller on ctx
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext returns the caller stored by CallerAuth
func CallerFromContext(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey).(Caller)
	return caller, ok
}

// Auth resolves callers from HS256 JWTs. The token subject is the caller id and
// a boolean "admin" claim (or role "admin") grants access to admin routes.
type Auth struct {
	jwt      *jwtauth.JWTAuth
	required bool
}

// NewAuth creates caller auth. An empty secret disables token verification.
// When required is false, requests without a token may identify the caller
// with the X-User-ID header and are treated as admin.
func NewAuth(secret string, required bool) *Auth {
	a := &Auth{required: required}
	if secret != "" {
		a.jwt = jwtauth.New("HS256", []byte(secret), nil)
	}
	return a
}

// JWT returns the underlying token authority, nil when verification is disabled.
func (a *Auth) JWT() *jwtauth.JWTAuth {
	return a.jwt
}

// CallerAuth resolves the caller of every request. A presented token that fails
// verification is always rejected.
func (a *Auth) CallerAuth(next http.Handler) http.Handler {
	resolve := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.resolveCaller(r)
		if err != nil {
			slog.Debug("Caller rejected", "path", r.URL.Path, "error", err)
			writeStatus(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
	})
	if a.jwt == nil {
		return resolve
	}
	return jwtauth.Verifier(a.jwt)(resolve)
}

func (a *Auth) resolveCaller(r *http.Request) (Caller, error) {
	if a.jwt != nil {
		token, claims, err := jwtauth.FromContext(r.Context())
		switch {
		case err == nil && token != nil:
			id, perr := uuid.Parse(token.Subject())
			if perr != nil {
				return Caller{}, errors.New("token subject is not a valid user id")
			}
			return Caller{ID: id, Admin: adminClaim(claims)}, nil
		case err != nil && !errors.Is(err, jwtauth.ErrNoTokenFound):
			return Caller{}, err
		}
	}

	if a.required {
		return Caller{}, errors.New("authentication required")
	}
	header := r.Header.Get(UserIDHeader)
	if header == "" {
		return Caller{}, errors.New("missing " + UserIDHeader + " header")
	}
	id, err := uuid.Parse(header)
	if err != nil {
		return Caller{}, errors.New("invalid " + UserIDHeader + " header")
	}
	return Caller{ID: id, Admin: true}, nil
}

func adminClaim(claims map[string]interface{}) bool {
	if admin, ok := claims["admin"].(bool); ok && admin {
		return true
	}
	role, _ := claims["role"].(string)
	return role == "admin"
}

// RequireAdmin rejects callers without the admin claim
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := CallerFromContext(r.Context())
		if !ok {
			writeStatus(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		if !caller.Admin {
			writeStatus(w, r, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
