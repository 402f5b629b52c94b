// Package authz holds the per-resource access rules applied before any
// handler touches the store.
package authz

import "github.com/ikkim/homecart-backend/internal/app/model"

// Decision is the outcome of a policy check.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

// Policy decides whether identity may act on resources owned by targetUserID.
// A nil identity is an anonymous caller.
type Policy func(identity *model.Identity, targetUserID string) Decision

// CartAccess lets the owner and any administrator act on a cart.
func CartAccess(identity *model.Identity, targetUserID string) Decision {
	if identity == nil {
		return Unauthenticated
	}
	if identity.IsAdmin() || identity.ID == targetUserID {
		return Allow
	}
	return Forbidden
}

// AddressAccess lets only the owner act on an address book. Administrators get
// no override here, unlike carts.
func AddressAccess(identity *model.Identity, targetUserID string) Decision {
	if identity == nil {
		return Unauthenticated
	}
	if identity.ID == targetUserID {
		return Allow
	}
	return Forbidden
}
