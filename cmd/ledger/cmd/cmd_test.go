package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ledger version "+version+"\n", out)
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.yaml")
	out, err := run(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")
	assert.FileExists(t, path)

	out, err = run(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Ledger: default (live, buy, FIFO)")
	assert.Contains(t, out, "Journal: csv")

	_, err = run(t, "config", "validate")
	assert.Error(t, err, "file flag is required")
}

func TestReplayThenQueryJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	configPath := filepath.Join(dir, "ledger.yaml")
	fillsPath := filepath.Join(dir, "fills.csv")
	barsPath := filepath.Join(dir, "bars.csv")

	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
ledger:
  name: acct
  kind: live
  starting_side: buy
  match_policy: FIFO
journal:
  type: sqlite
  db_path: %s
log:
  level: error
`, dbPath)), 0o644))
	require.NoError(t, os.WriteFile(barsPath, []byte(`time,open,high,low,close
2026-01-24T09:30:00Z,99,101,98,100
2026-01-24T09:31:00Z,100,112,100,110
2026-01-24T09:32:00Z,110,121,109,120
`), 0o644))
	require.NoError(t, os.WriteFile(fillsPath, []byte(`index,time,side,price,amount,fee
0,2026-01-24T09:30:00Z,buy,,2,0.2
1,2026-01-24T09:31:00Z,buy,110,1,0.1
2,2026-01-24T09:32:00Z,sell,,2.5,0.5
`), 0o644))

	out, err := run(t, "replay", "-f", configPath, "--fills", fillsPath, "--bars", barsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "acct: 3 fills, 0 rejected, 0 ignored")
	assert.Contains(t, out, "positions      2\n")
	assert.Contains(t, out, "gross profit   45\n")
	assert.Contains(t, out, "open           BUY 0.5 @ 110 (1 lots)")

	out, err = run(t, "journal", "--db", dbPath, "list", "acct")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "** Position: acct BUY"))

	id := ""
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, ":ID: "); ok {
			id = v
			break
		}
	}
	require.NotEmpty(t, id)

	out, err = run(t, "journal", "--db", dbPath, "position", id)
	require.NoError(t, err)
	assert.Contains(t, out, ":ID: "+id)

	day := time.Date(2026, 1, 24, 9, 32, 0, 0, time.UTC).In(time.Local).Format("2006-01-02")
	out, err = run(t, "journal", "--db", dbPath, "day", day)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "** Position:"))

	_, err = run(t, "journal", "--db", dbPath, "position", "missing")
	assert.ErrorContains(t, err, "not found")
	_, err = run(t, "journal", "--db", dbPath, "day", "24/01/2026")
	assert.Error(t, err)
}

func TestReplayErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := run(t, "replay", "--fills", "x.csv")
	assert.Error(t, err, "config flag is required")

	_, err = run(t, "replay", "-f", filepath.Join(dir, "missing.yaml"), "--fills", "x.csv")
	assert.ErrorContains(t, err, "read config file")
}
