package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/access"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// timeLayout is fixed-width so that decided_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// fingerprintLen is the number of hex characters kept from the credential
// hash.
const fingerprintLen = 12

// Fingerprint returns a short, stable, non-reversible identifier for a
// credential. The empty credential maps to "-".
func Fingerprint(credential string) string {
	if credential == "" {
		return "-"
	}
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// Outcome maps a gate error to its recorded outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAllowed
	case errors.Is(err, access.ErrForbidden):
		return OutcomeForbidden
	default:
		return OutcomeUnauthorized
	}
}

// Insert stores d, filling in the id and timestamp when they are zero.
func (db *DB) Insert(d *Decision) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}
	_, err := db.conn.Exec(
		`INSERT INTO decisions (id, decided_at, report, property_id, credential_fp, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.DecidedAt.UTC().Format(timeLayout), d.Report, d.PropertyID,
		d.CredentialFP, d.Outcome,
	)
	return err
}

// Record stores the decision for credential on propertyID.
func (db *DB) Record(report, propertyID, credential string, gateErr error) error {
	return db.Insert(&Decision{
		Report:       report,
		PropertyID:   propertyID,
		CredentialFP: Fingerprint(credential),
		Outcome:      Outcome(gateErr),
	})
}

// Recorder returns a gate-decision hook that records into db. Write failures
// are logged and otherwise ignored so that auditing never fails a request.
func Recorder(db *DB, log *zap.Logger) func(report, propertyID, credential string, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	return func(report, propertyID, credential string, err error) {
		if werr := db.Record(report, propertyID, credential, err); werr != nil {
			log.Warn("audit write failed",
				zap.String("report", report),
				zap.String("property_id", propertyID),
				zap.Error(werr))
		}
	}
}

// Recent returns up to limit decisions, newest first. A limit <= 0 returns
// every decision.
func (db *DB) Recent(limit int) ([]Decision, error) {
	return db.list("", limit)
}

// ForProperty is Recent restricted to one property.
func (db *DB) ForProperty(propertyID string, limit int) ([]Decision, error) {
	return db.list(propertyID, limit)
}

func (db *DB) list(propertyID string, limit int) ([]Decision, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, decided_at, report, property_id, credential_fp, outcome FROM decisions")
	var args []any
	if propertyID != "" {
		sb.WriteString(" WHERE property_id = ?")
		args = append(args, propertyID)
	}
	sb.WriteString(" ORDER BY decided_at DESC, rowid DESC")
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := db.conn.Query(sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Decision
	for rows.Next() {
		var d Decision
		var decidedAt string
		if err := rows.Scan(&d.ID, &decidedAt, &d.Report, &d.PropertyID, &d.CredentialFP, &d.Outcome); err != nil {
			return nil, err
		}
		if d.DecidedAt, err = time.Parse(timeLayout, decidedAt); err != nil {
			return nil, fmt.Errorf("decision %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Counts returns the number of recorded decisions per outcome.
func (db *DB) Counts() (map[string]int, error) {
	rows, err := db.conn.Query("SELECT outcome, COUNT(*) FROM decisions GROUP BY outcome")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		counts[outcome] = n
	}
	return counts, rows.Err()
}
