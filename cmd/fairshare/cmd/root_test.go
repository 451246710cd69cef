package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/fairshare/internal/common"
)

const testConfig = `
userShares: "cluster[[physics 3][alice 1]]"
groups:
  - name: physics
    members: bob carol
    shares: "[[bob 1][carol 2]]"
totalSlots: 4
cyclePeriod: 10s
`

func execute(t *testing.T, args ...string) (string, error) {
	root := RootCmd()
	common.BindCommandlineArguments(root.PersistentFlags())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	config := writeFile(t, t.TempDir(), "config.yaml", testConfig)
	out, err := execute(t, "validate", "--config", config)
	require.NoError(t, err)
	assert.Contains(t, out, "Share tree is valid: 5 entities, 3 leaves")
	assert.Contains(t, out, "physics/carol 0.6667 2")
}

func TestValidate_InvalidTree(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "config.yaml", testConfig)
	override := writeFile(t, dir, "override.yaml", `userShares: "cluster[[physics 3][alice x]]"`)
	_, err := execute(t, "validate", "--config", config+","+override)
	assert.Error(t, err)
}

func TestCycle(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "config.yaml", testConfig)
	counters := writeFile(t, dir, "counters.yaml", "/alice: {pending: 3}\nphysics/bob: {pending: 1}\n")

	out, err := execute(t, "cycle", "--config", config, "--slots", "8", "--counters", counters)
	require.NoError(t, err)
	assert.Contains(t, out, "Total slots:  8")
	assert.Contains(t, out, "Free slots:   5")
	assert.Regexp(t, `/alice\s+2\s+2`, out)
	assert.Regexp(t, `physics/bob\s+2\s+1`, out)
	assert.Regexp(t, `physics/carol\s+4\s+0`, out)
}

func TestCycle_MissingCounters(t *testing.T) {
	dir := t.TempDir()
	config := writeFile(t, dir, "config.yaml", testConfig)
	_, err := execute(t, "cycle", "--config", config, "--counters", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
