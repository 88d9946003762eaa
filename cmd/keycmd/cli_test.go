package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type cliEnv struct {
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, name := range []string{"KEYCMD_PREFS_PATH", "KEYCMD_SCRIPTS_DIR", "KEYCMD_LOG_LEVEL", "KEYCMD_LOG_FILE"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return &cliEnv{dir: t.TempDir()}
}

func writeScript(t *testing.T, path, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func (e *cliEnv) run(args ...string) (string, string, error) {
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "config.toml"),
		"--prefs", filepath.Join(e.dir, "prefs.toml"),
		"--scripts", filepath.Join(e.dir, "scripts"),
	}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestListShowsDefaults(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("list")
	require.NoError(t, err)
	assert.Contains(t, out, "KEYS")
	assert.Contains(t, out, "cmd_repeatNumericPrefix")
	assert.Contains(t, out, "cmd_cancel")
}

func TestListJSON(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("list", "--json")
	require.NoError(t, err)
	require.True(t, gjson.Valid(out))
	assert.Equal(t, "Ctrl+U", gjson.Get(out, `#(command=="cmd_repeatNumericPrefix").keys`).String())
}

func TestBindPersists(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("bind", "cmd_paste", "Ctrl+K P")
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+K P -> cmd_paste")

	out, _, err = env.run("list", "--command", "cmd_paste")
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+K P")
	assert.Contains(t, out, "Ctrl+Y")
}

func TestBindConflictNeedsForce(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("bind", "cmd_home", "Ctrl+U")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	_, _, err = env.run("bind", "--force", "cmd_home", "Ctrl+U")
	require.NoError(t, err)

	out, _, err := env.run("used-by", "Ctrl+U")
	require.NoError(t, err)
	assert.Contains(t, out, "cmd_home")
	assert.NotContains(t, out, "cmd_repeatNumericPrefix")
}

func TestBindUnknownCommandWarns(t *testing.T) {
	env := newCLIEnv(t)

	_, errOut, err := env.run("bind", "cmd_later", "F5")
	require.NoError(t, err)
	assert.Contains(t, errOut, "not a registered command")
}

func TestBindInvalidSequence(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("bind", "cmd_home", "Ctrl+")
	assert.Error(t, err)
}

func TestUnbind(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("unbind", "cmd_end")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 binding(s) of cmd_end")

	out, _, err = env.run("used-by", "Ctrl+E")
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+E is unbound", "removed defaults stay removed")

	_, _, err = env.run("unbind", "cmd_nothing")
	assert.Error(t, err)

	out, _, err = env.run("unbind", "--keys", "Ctrl+A")
	require.NoError(t, err)
	assert.Contains(t, out, "removed Ctrl+A")

	out, _, err = env.run("used-by", "Ctrl+A")
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+A is unbound")
}

func TestRebindRestoresRemovedDefault(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("unbind", "cmd_end")
	require.NoError(t, err)
	_, _, err = env.run("bind", "cmd_end", "Ctrl+E")
	require.NoError(t, err)

	out, _, err := env.run("used-by", "Ctrl+E")
	require.NoError(t, err)
	assert.Contains(t, out, "cmd_end")
}

func TestUsedByOverlaps(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("bind", "cmd_paste", "Ctrl+K P")
	require.NoError(t, err)

	out, _, err := env.run("used-by", "Ctrl+K")
	require.NoError(t, err)
	assert.Contains(t, out, "Ctrl+K is unbound")
	assert.Contains(t, out, "Ctrl+K P\tcmd_paste (overlaps)")
}

func TestCommands(t *testing.T) {
	env := newCLIEnv(t)

	out, _, err := env.run("commands", "--category", "editor")
	require.NoError(t, err)
	assert.Contains(t, out, "cmd_paste")
	assert.Contains(t, out, "Ctrl+Y")
}

func TestCommandsIncludesScripts(t *testing.T) {
	env := newCLIEnv(t)
	writeScript(t, filepath.Join(env.dir, "scripts", "hello.lua"), `
keycmd.register("hello.world", function(ctx) end, {label = "Hello", keys = "Ctrl+K H"})
`)

	out, _, err := env.run("commands", "--category", "script")
	require.NoError(t, err)
	assert.Contains(t, out, "hello.world")
	assert.Contains(t, out, "Ctrl+K H")
	assert.NotContains(t, out, "cmd_paste")
}

func TestBadLogLevel(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("--log-level", "loud", "list")
	assert.Error(t, err)
}
