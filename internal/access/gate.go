// Package access maps caller credentials to the analytics properties they
// may query.
package access

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnauthorized is returned when the credential is missing or unknown.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned (wrapped in a ForbiddenError) when the credential
// is valid but the requested property is not in its permitted set.
var ErrForbidden = errors.New("forbidden")

// ForbiddenError carries the caller's permitted properties so the response
// can list them.
type ForbiddenError struct {
	PropertyID string
	Allowed    []string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("property %q is not permitted for this token (allowed: %s)",
		e.PropertyID, strings.Join(e.Allowed, ", "))
}

// Unwrap lets errors.Is match ErrForbidden.
func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// Mode describes how the gate decides.
type Mode string

const (
	// ModeMultiTenant checks each credential against its own property list.
	ModeMultiTenant Mode = "multi-tenant"
	// ModeSharedSecret accepts a single secret for every property.
	ModeSharedSecret Mode = "shared-secret"
	// ModeOpen allows every request.
	ModeOpen Mode = "open"
)

// Gate is the read-only authorization table. It is built once at process
// start and is safe for concurrent use.
type Gate struct {
	table  map[string][]string
	secret string
}

// NewGate copies table so later changes by the caller do not leak in.
// Empty credentials are ignored.
func NewGate(table map[string][]string, sharedSecret string) *Gate {
	t := make(map[string][]string, len(table))
	for cred, props := range table {
		cred = strings.TrimSpace(cred)
		if cred == "" {
			continue
		}
		cp := make([]string, 0, len(props))
		for _, p := range props {
			if p = strings.TrimSpace(p); p != "" {
				cp = append(cp, p)
			}
		}
		t[cred] = cp
	}
	return &Gate{table: t, secret: sharedSecret}
}

// Mode reports which of the three decision modes is active.
func (g *Gate) Mode() Mode {
	switch {
	case len(g.table) > 0:
		return ModeMultiTenant
	case g.secret != "":
		return ModeSharedSecret
	default:
		return ModeOpen
	}
}

// Authorize decides whether credential may query propertyID. It returns nil,
// ErrUnauthorized, or a *ForbiddenError.
func (g *Gate) Authorize(credential, propertyID string) error {
	switch g.Mode() {
	case ModeMultiTenant:
		allowed, ok := g.table[credential]
		if !ok || len(allowed) == 0 {
			return ErrUnauthorized
		}
		for _, p := range allowed {
			if p == propertyID {
				return nil
			}
		}
		return &ForbiddenError{PropertyID: propertyID, Allowed: append([]string(nil), allowed...)}

	case ModeSharedSecret:
		if subtle.ConstantTimeCompare([]byte(credential), []byte(g.secret)) != 1 {
			return ErrUnauthorized
		}
		return nil

	default:
		return nil
	}
}

// Permitted returns the properties credential may query. unrestricted is true
// in shared-secret and open modes, where any property is allowed.
func (g *Gate) Permitted(credential string) (props []string, unrestricted bool, err error) {
	switch g.Mode() {
	case ModeMultiTenant:
		allowed, ok := g.table[credential]
		if !ok || len(allowed) == 0 {
			return nil, false, ErrUnauthorized
		}
		props = append([]string(nil), allowed...)
		sort.Strings(props)
		return props, false, nil

	case ModeSharedSecret:
		if subtle.ConstantTimeCompare([]byte(credential), []byte(g.secret)) != 1 {
			return nil, false, ErrUnauthorized
		}
		return nil, true, nil

	default:
		return nil, true, nil
	}
}

// Tenants returns the number of credentials in the table.
func (g *Gate) Tenants() int {
	return len(g.table)
}
