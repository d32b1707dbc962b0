package eventlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withLogging(t *testing.T, enabled string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "log")

	prevEnv, prevDir := loggingEnv, logDir
	loggingEnv, logDir = enabled, dir
	t.Cleanup(func() { loggingEnv, logDir = prevEnv, prevDir })
	return dir
}

func TestRecordWritesLine(t *testing.T) {
	dir := withLogging(t, "true")

	Record(Info, KindLogin, Success, "asha@example.com", "")
	Record(Warning, KindEmail, Fail, "", "timeout\nafter 10s")

	b, err := os.ReadFile(filepath.Join(dir, "events.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " | info | Login | Success | asha@example.com"))
	assert.True(t, strings.HasSuffix(lines[1], " | warning | Email | Fail | timeout after 10s"))
}

func TestRecordDisabled(t *testing.T) {
	dir := withLogging(t, "false")

	Record(Info, KindLogin, Success, "asha@example.com", "")

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRecordUnwritableDirIsIgnored(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	prevEnv, prevDir := loggingEnv, logDir
	loggingEnv, logDir = "true", filepath.Join(blocker, "log")
	defer func() { loggingEnv, logDir = prevEnv, prevDir }()

	assert.NotPanics(t, func() {
		Record(Error, KindVerify, Fail, "", "boom")
	})
}
