// Package audit keeps a SQLite log of access-gate decisions. It records who
// asked for which property and whether they were let through, never report
// rows or diagnoses.
package audit

import "time"

// Outcomes of a gate decision.
const (
	OutcomeAllowed      = "allowed"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
)

// Decision is one recorded authorization check.
type Decision struct {
	ID           string    `json:"id"`
	DecidedAt    time.Time `json:"decided_at"`
	Report       string    `json:"report"`
	PropertyID   string    `json:"property_id"`
	CredentialFP string    `json:"credential_fp"`
	Outcome      string    `json:"outcome"`
}
