// Package authctx carries the authenticated caller through the request
// context. Set once at the HTTP boundary; every operation receives it
// explicitly instead of reading a process-global session.
package authctx

import "context"

type ctxKey string

const (
	uidKey    ctxKey = "uid"
	claimsKey ctxKey = "claims"
)

func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

func UID(ctx context.Context) (string, bool) {
	v := ctx.Value(uidKey)
	uid, ok := v.(string)
	return uid, ok && uid != ""
}

func WithClaims(ctx context.Context, claims map[string]interface{}) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Claims(ctx context.Context) (map[string]interface{}, bool) {
	v := ctx.Value(claimsKey)
	claims, ok := v.(map[string]interface{})
	return claims, ok
}

// IsPriest reports whether the caller registered as a priest (custom claim
// set at registration, see cmd/set-claims for manual repair).
func IsPriest(ctx context.Context) bool {
	claims, ok := Claims(ctx)
	if !ok {
		return false
	}
	if b, ok := claims["priest"].(bool); ok && b {
		return true
	}
	if kind, ok := claims["kind"].(string); ok && kind == "priest" {
		return true
	}
	return false
}

// IsAdmin reports whether the caller carries the admin claim.
func IsAdmin(ctx context.Context) bool {
	claims, ok := Claims(ctx)
	if !ok {
		return false
	}
	b, ok := claims["admin"].(bool)
	return ok && b
}
