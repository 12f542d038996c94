package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flightdeck/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// writePayload writes a fixture payload with one fresh chat message.
func writePayload(t *testing.T) string {
	t.Helper()
	ts := time.Now().Add(-time.Hour).Unix()
	payload := fmt.Sprintf(`{
  "slack_results": [
    {"message_info_str": "m1", "channel_name": "eng-oncall",
     "text": "urgent: please review the rollback plan", "message_ts": %d}
  ],
  "calendar_events": [],
  "gmail_emails": []
}`, ts)
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))
	return path
}

func TestRunCmd_DryRun(t *testing.T) {
	env := useTestServices(t)

	out, err := execute(t, "run", "--input", writePayload(t), "--dry-run")

	require.NoError(t, err)
	for _, name := range domain.SectionNames() {
		assert.Contains(t, out, "## "+name)
	}
	assert.Contains(t, out, "urgent: please review the rollback plan")
	assert.Contains(t, out, "delivery: not attempted")

	_, err = os.Stat(filepath.Join(env.dataDir, sqlite.DBFile))
	assert.True(t, os.IsNotExist(err), "dry run must not open the refresh log")
}

func TestRunCmd_FallsBackToOutbox(t *testing.T) {
	env := useTestServices(t)

	out, err := execute(t, "run", "--input", writePayload(t), "--quiet")

	require.NoError(t, err)
	assert.Contains(t, out, "# Daily Flight Deck")

	files, err := os.ReadDir(filepath.Join(env.dataDir, "outbox"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(filepath.Join(env.dataDir, "outbox", files[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Subject: "+domain.DefaultFallbackSubject)

	auditOut, err := execute(t, "audit", "--brief")
	require.NoError(t, err)
	assert.Contains(t, auditOut, "urgent: please review the rollback plan")
}

func TestRunCmd_WritesOutputFile(t *testing.T) {
	useTestServices(t)
	output := filepath.Join(t.TempDir(), "brief.md")

	_, err := execute(t, "run", "--input", writePayload(t), "--dry-run", "--output", output)

	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## "+domain.SectionFirstTask)
}

func TestRunCmd_EmptySnapshotBlocked(t *testing.T) {
	useTestServices(t)
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"slack_results": [], "calendar_events": [], "gmail_emails": []}`), 0o600))

	out, err := execute(t, "run", "--input", path, "--dry-run")

	assert.ErrorIs(t, err, domain.ErrEmptySnapshot)
	assert.Contains(t, out, "empty_guard_blocked")
	assert.NotContains(t, out, "## "+domain.SectionTopActions)
}

func TestRunCmd_AllowEmpty(t *testing.T) {
	useTestServices(t)
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	out, err := execute(t, "run", "--input", path, "--dry-run", "--allow-empty")

	require.NoError(t, err)
	assert.Contains(t, out, "## "+domain.SectionTopActions+"\n- none")
}

func TestRunCmd_MissingInput(t *testing.T) {
	useTestServices(t)

	_, err := execute(t, "run", "--input", filepath.Join(t.TempDir(), "missing.json"), "--dry-run")

	assert.ErrorIs(t, err, domain.ErrFatalPipeline)
}
