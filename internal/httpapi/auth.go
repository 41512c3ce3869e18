package httpapi

import (
	"context"
	"net/http"
	"strings"

	"ticketdesk/internal/models"
	"ticketdesk/internal/service"
)

type authContextKey struct{}

// authInfo is what the gates learned about a request: the caller, and for
// ticket routes the ticket named by the path.
type authInfo struct {
	Identity service.Identity
	Ticket   *models.Ticket
}

func withAuthInfo(r *http.Request, info authInfo) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authContextKey{}, info))
}

func authInfoFromContext(ctx context.Context) (authInfo, bool) {
	info, ok := ctx.Value(authContextKey{}).(authInfo)
	return info, ok
}

func identityFromContext(ctx context.Context) (service.Identity, bool) {
	info, ok := authInfoFromContext(ctx)
	if !ok {
		return service.Identity{}, false
	}
	return info.Identity, true
}

func ticketFromContext(ctx context.Context) (models.Ticket, bool) {
	info, ok := authInfoFromContext(ctx)
	if !ok || info.Ticket == nil {
		return models.Ticket{}, false
	}
	return *info.Ticket, true
}

// requireSignin rejects requests without a valid bearer token and attaches
// the decoded identity to the request context.
func (h *Handler) requireSignin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := h.service.Identify(bearerToken(r.Header.Get("Authorization")))
		if err != nil {
			h.respond(w, r, err)
			return
		}
		if h.limiter != nil {
			if wait, ok := h.limiter.AllowUser(caller.ID); !ok {
				writeRateLimited(w, wait)
				return
			}
		}
		if info, ok := requestInfoFromContext(r.Context()); ok {
			info.userID = caller.ID
		}
		next(w, withAuthInfo(r, authInfo{Identity: caller}))
	}
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if _, err := h.service.RequireAdmin(r.Context(), caller); err != nil {
			h.respond(w, r, err)
			return
		}
		next(w, r)
	}
}

func (h *Handler) requireSelfOrAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if err := h.service.RequireSelfOrAdmin(r.Context(), caller, r.PathValue("userID")); err != nil {
			h.respond(w, r, err)
			return
		}
		next(w, r)
	}
}

// requireOwnerOrAdmin loads the ticket named by the route once and stores it
// next to the identity, so a missing ticket answers 404 before ownership is
// checked.
func (h *Handler) requireOwnerOrAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}
		ticket, err := h.service.RequireOwnerOrAdmin(r.Context(), caller, r.PathValue("ticketID"))
		if err != nil {
			h.respond(w, r, err)
			return
		}
		next(w, withAuthInfo(r, authInfo{Identity: caller, Ticket: &ticket}))
	}
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}
