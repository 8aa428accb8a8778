package api

import (
	"context"
	"net/http"

	"github.com/scopedev/scopepad/internal/auth"
	"github.com/scopedev/scopepad/internal/metrics"
	"github.com/scopedev/scopepad/internal/store"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	claimsCtxKey
)

func userFrom(ctx context.Context) (*store.User, bool) {
	user, ok := ctx.Value(userCtxKey).(*store.User)
	return user, ok
}

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey).(*auth.Claims)
	return claims, ok
}

// respond writes v after running the sliding-session step: when the caller
// holds a token that expires within the refresh window, a replacement bound
// to the same identity is minted and spliced into the body. The splice only
// applies to bodies that embed Session; anything else goes out untouched.
// Anonymous requests and refresh failures are skipped silently; a missed
// refresh must never turn into a visible error.
func (h *APIHandler) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if carrier, ok := v.(tokenCarrier); ok {
		h.refreshSession(r, carrier)
	}
	writeJSON(w, status, v)
}

func (h *APIHandler) refreshSession(r *http.Request, carrier tokenCarrier) {
	claims, ok := claimsFrom(r.Context())
	if !ok || !h.authService.NeedsRefresh(claims) {
		return
	}
	user, ok := userFrom(r.Context())
	if !ok {
		return
	}
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		return
	}
	carrier.setAccessToken(token)
	metrics.TokensRefreshed.Inc()
}
