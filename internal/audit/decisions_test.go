package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/ga4diag/internal/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("secret-token")
	assert.Len(t, fp, fingerprintLen)
	assert.Equal(t, fp, Fingerprint("secret-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))
	assert.NotContains(t, fp, "secret")
	assert.Equal(t, "-", Fingerprint(""))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeAllowed, Outcome(nil))
	assert.Equal(t, OutcomeUnauthorized, Outcome(access.ErrUnauthorized))
	assert.Equal(t, OutcomeForbidden, Outcome(&access.ForbiddenError{PropertyID: "2", Allowed: []string{"1"}}))
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Insert(&Decision{DecidedAt: base, Report: "pages", PropertyID: "1", CredentialFP: "a", Outcome: OutcomeAllowed}))
	require.NoError(t, db.Insert(&Decision{DecidedAt: base.Add(time.Minute), Report: "traffic", PropertyID: "2", CredentialFP: "a", Outcome: OutcomeForbidden}))
	require.NoError(t, db.Record("timeseries", "3", "tok", access.ErrUnauthorized))

	all, err := db.Recent(0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "timeseries", all[0].Report)
	assert.Equal(t, Fingerprint("tok"), all[0].CredentialFP)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "traffic", all[1].Report)
	assert.True(t, all[2].DecidedAt.Equal(base))

	two, err := db.Recent(2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	counts, err := db.Counts()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{OutcomeAllowed: 1, OutcomeForbidden: 1, OutcomeUnauthorized: 1}, counts)
}

func TestRecorder(t *testing.T) {
	db := openTestDB(t)
	hook := Recorder(db, nil)
	hook("pages", "1001", "tok", nil)
	hook("pages", "2000", "tok", &access.ForbiddenError{PropertyID: "2000"})

	got, err := db.Recent(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	outcomes := []string{got[0].Outcome, got[1].Outcome}
	assert.ElementsMatch(t, []string{OutcomeAllowed, OutcomeForbidden}, outcomes)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Record("pages", "1", "", nil))
	require.NoError(t, db.Close())

	// Reopening must not re-run the migration destructively.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, err := db.Recent(0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "-", got[0].CredentialFP)
}

func TestMigrate_Version(t *testing.T) {
	db := openTestDB(t)
	v, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)

	// Running again is a no-op.
	require.NoError(t, db.Migrate())
	v, err = db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, len(migrations), v)
}

func TestMigrate_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := db.conn.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	assert.ErrorContains(t, db.Migrate(), "newer than this binary")
}

func TestForProperty(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, prop := range []string{"1001", "1002", "1001"} {
		require.NoError(t, db.Insert(&Decision{
			DecidedAt: base.Add(time.Duration(i) * time.Minute),
			Report:    "pages", PropertyID: prop, CredentialFP: "fp", Outcome: OutcomeAllowed,
		}))
	}

	got, err := db.ForProperty("1001", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].DecidedAt.After(got[1].DecidedAt))

	got, err = db.ForProperty("1001", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, base.Add(2*time.Minute), got[0].DecidedAt)

	got, err = db.ForProperty("9999", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
