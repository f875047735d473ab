package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const duplicatedLock = `{
  "lockfileVersion": 1,
  "workspaces": {
    "": {
      "name": "app",
      "dependencies": {
        "a": "^1.0.0",
        "lodash": "^4.0.0",
      },
    },
  },
  "packages": {
    "a": ["a@1.0.0", "", { "dependencies": { "lodash": "^4.0.0" } }, "sha512-a100"],

    "lodash": ["lodash@4.0.0", "", {}, "sha512-lodash400"],

    "a/lodash": ["lodash@4.0.0", "", {}, "sha512-lodash400"],
  }
}
`

const dedupedLock = `{
  "lockfileVersion": 1,
  "workspaces": {
    "": {
      "name": "app",
      "dependencies": {
        "a": "^1.0.0",
        "lodash": "^4.0.0",
      },
    },
  },
  "packages": {
    "a": ["a@1.0.0", "", { "dependencies": { "lodash": "^4.0.0" } }, "sha512-a100"],

    "lodash": ["lodash@4.0.0", "", {}, "sha512-lodash400"],
  }
}
`

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("CI", "")
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func runCmd(t *testing.T, args ...string) (int, string) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	code := execute(cmd)
	return code, out.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRoot_Fix(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})

	code, out := runCmd(t, "-C", dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, "Duplicates removed: a/lodash\n", out)
	assert.Equal(t, dedupedLock, readFile(t, filepath.Join(dir, "bun.lock")))
}

func TestRoot_Check(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})

	code, out := runCmd(t, "--check", "-C", dir)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Duplicates found: a/lodash\nRun `bun dedupe` to fix\n", out)
	assert.Equal(t, duplicatedLock, readFile(t, filepath.Join(dir, "bun.lock")))
}

func TestRoot_CheckClean(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": dedupedLock})

	code, out := runCmd(t, "--check", "-C", dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, "No duplicates found\n", out)
}

func TestRoot_CIEnvironmentEnablesCheck(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})
	t.Setenv("CI", "true")

	code, out := runCmd(t, "-C", dir)

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Duplicates found: a/lodash")
	assert.Equal(t, duplicatedLock, readFile(t, filepath.Join(dir, "bun.lock")))
}

func TestRoot_EnvFileEnablesCheck(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"bun.lock": duplicatedLock,
		".env.ci":  "CI=1\n",
	})

	code, _ := runCmd(t, "-C", dir, "--env-file", filepath.Join(dir, ".env.ci"))

	assert.Equal(t, 1, code)
	assert.Equal(t, duplicatedLock, readFile(t, filepath.Join(dir, "bun.lock")))
}

func TestRoot_ConfigFile(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"deps.lock":       duplicatedLock,
		".bundedupe.yaml": "lockfile: deps.lock\ncheck: true\n",
	})

	code, out := runCmd(t, "-C", dir)

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Duplicates found: a/lodash")
}

func TestRoot_ConfigIgnorePackages(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"bun.lock":        duplicatedLock,
		".bundedupe.yaml": "ignorePackages:\n  - lodash\n",
	})

	code, out := runCmd(t, "-C", dir)

	assert.Equal(t, 0, code)
	assert.Equal(t, "No duplicates found\n", out)
	assert.Equal(t, duplicatedLock, readFile(t, filepath.Join(dir, "bun.lock")))
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	dir := setupProject(t, map[string]string{
		"other.lock":      duplicatedLock,
		".bundedupe.yaml": "lockfile: missing.lock\nformat: sarif\n",
	})

	code, out := runCmd(t, "-C", dir, "--lockfile", "other.lock", "--format", "text")

	assert.Equal(t, 0, code)
	assert.Equal(t, "Duplicates removed: a/lodash\n", out)
	assert.Equal(t, dedupedLock, readFile(t, filepath.Join(dir, "other.lock")))
}

func TestRoot_ExplicitConfigPath(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})
	cfgPath := filepath.Join(t.TempDir(), "dedupe.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("check: true\n"), 0644))

	code, _ := runCmd(t, "-C", dir, "--config", cfgPath)

	assert.Equal(t, 1, code)
}

func TestRoot_JSONFormat(t *testing.T) {
	dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})

	code, out := runCmd(t, "--check", "-C", dir, "--format", "json")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, `"path": "a/lodash"`)
}

func TestRoot_Errors(t *testing.T) {
	t.Run("missing lockfile", func(t *testing.T) {
		dir := setupProject(t, nil)
		code, _ := runCmd(t, "-C", dir)
		assert.Equal(t, 1, code)
	})

	t.Run("invalid format", func(t *testing.T) {
		dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})
		code, _ := runCmd(t, "-C", dir, "--format", "xml")
		assert.Equal(t, 1, code)
		assert.Equal(t, duplicatedLock, readFile(t, filepath.Join(dir, "bun.lock")))
	})

	t.Run("positional arguments", func(t *testing.T) {
		dir := setupProject(t, map[string]string{"bun.lock": duplicatedLock})
		code, _ := runCmd(t, "-C", dir, "extra")
		assert.Equal(t, 1, code)
	})

	t.Run("invalid lockfile", func(t *testing.T) {
		dir := setupProject(t, map[string]string{"bun.lock": "{ not json"})
		code, _ := runCmd(t, "-C", dir)
		assert.Equal(t, 1, code)
	})
}
