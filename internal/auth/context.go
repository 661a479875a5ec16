package auth

import (
	"net/http"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

const (
	headerUserID = "X-User-Id"
	headerRole   = "X-User-Role"
)

// FromRequest extracts the requester identity placed on the request by
// the gateway's auth middleware. The core trusts these values.
func FromRequest(r *http.Request) domain.Actor {
	role := domain.Role(r.Header.Get(headerRole))
	switch role {
	case domain.RoleBuyer, domain.RoleSeller, domain.RoleAdmin:
	default:
		role = domain.RoleBuyer
	}
	return domain.Actor{
		UserID: r.Header.Get(headerUserID),
		Role:   role,
	}
}
