// Package authmw provides HTTP middleware authenticating console staff via
// bearer JWTs and exposing the verified identity to handlers.
package authmw

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the staff role carried in the token.
type Role string

const (
	// RoleAdmin sees every branch of the tenant.
	RoleAdmin Role = "admin"

	// RoleAdjuster is restricted to the branches listed in the token.
	RoleAdjuster Role = "adjuster"
)

func validRole(r Role) bool {
	return r == RoleAdmin || r == RoleAdjuster
}

// Identity is the verified staff identity of a console request.
type Identity struct {
	StaffID   string
	StaffName string
	TenantID  string
	Role      Role

	// BranchIDs lists the branches an adjuster may see. Empty for admins,
	// meaning every branch of the tenant.
	BranchIDs []string
}

type ctxKey struct{}

// FromContext returns the identity attached by the middleware.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(*Identity)
	return id, ok
}

// StaffToken returns middleware that validates the Authorization bearer JWT
// (HS256) and attaches the staff Identity to the request context. Requests
// without a valid token get 401.
func StaffToken(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				http.Error(w, `{"error":"missing or malformed authorization header"}`, http.StatusUnauthorized)
				return
			}

			id, err := verify(raw, key)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verify(raw string, key []byte) (*Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	id := &Identity{}
	if id.StaffID, ok = claims["staff_id"].(string); !ok || id.StaffID == "" {
		return nil, fmt.Errorf("missing staff_id claim")
	}
	if id.TenantID, ok = claims["tenant_id"].(string); !ok || id.TenantID == "" {
		return nil, fmt.Errorf("missing tenant_id claim")
	}
	role, ok := claims["role"].(string)
	if !ok || !validRole(Role(role)) {
		return nil, fmt.Errorf("invalid role claim %q", role)
	}
	id.Role = Role(role)

	id.StaffName, _ = claims["staff_name"].(string)

	if branches, ok := claims["branch_ids"].([]any); ok {
		for _, b := range branches {
			s, ok := b.(string)
			if !ok {
				return nil, fmt.Errorf("invalid branch_ids claim")
			}
			id.BranchIDs = append(id.BranchIDs, s)
		}
	}
	// Admin scope is tenant-wide regardless of what the token lists.
	if id.Role == RoleAdmin {
		id.BranchIDs = nil
	}
	return id, nil
}

// SignToken mints a staff token. Used by tests and the ops token tool.
func SignToken(secret string, id Identity, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"staff_id":  id.StaffID,
		"tenant_id": id.TenantID,
		"role":      string(id.Role),
		"exp":       time.Now().Add(ttl).Unix(),
		"iat":       time.Now().Unix(),
	}
	if id.StaffName != "" {
		claims["staff_name"] = id.StaffName
	}
	if len(id.BranchIDs) > 0 {
		ids := make([]any, len(id.BranchIDs))
		for i, b := range id.BranchIDs {
			ids[i] = b
		}
		claims["branch_ids"] = ids
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
