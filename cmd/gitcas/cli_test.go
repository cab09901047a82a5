package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agenthands/gitcas/internal/testkit"
	"github.com/agenthands/gitcas/pkg/cidutil"
	"github.com/agenthands/gitcas/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloHex = "3b18e512dba79e4c8300dd08aeb37f8e728b8dad"

type result struct {
	stdout string
	stderr string
	err    error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func setup(t *testing.T) (gitDir, file string) {
	t.Helper()
	dir := t.TempDir()
	gitDir = filepath.Join(dir, ".git")
	file = filepath.Join(dir, "hello.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello world\n"), 0o644))
	return gitDir, file
}

func TestCLI_Workflow(t *testing.T) {
	gitDir, file := setup(t)

	res := run(t, "", "--git-dir", gitDir, "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Initialized git directory")

	head, err := os.ReadFile(filepath.Join(gitDir, "HEAD"))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/main\n", string(head))

	res = run(t, "", "--git-dir", gitDir, "init")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Reinitialized existing git directory")

	res = run(t, "", "--git-dir", gitDir, "hash-object", "-w", file)
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+"\n", res.stdout)

	_, err = os.Stat(filepath.Join(gitDir, "objects", "3b", helloHex[2:]))
	require.NoError(t, err)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", helloHex)
	require.NoError(t, res.err)
	assert.Equal(t, "hello world\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-t", helloHex)
	require.NoError(t, res.err)
	assert.Equal(t, "blob\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-s", helloHex)
	require.NoError(t, res.err)
	assert.Equal(t, "12\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-e", helloHex)
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)

	res = run(t, "", "--git-dir", gitDir, "verify", helloHex)
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+": ok\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "ls-objects")
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+"\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "reindex")
	require.NoError(t, res.err)
	assert.Equal(t, "indexed 1 objects\n", res.stdout)
}

func TestCLI_HashObjectWithoutRepo(t *testing.T) {
	gitDir, file := setup(t)

	res := run(t, "", "--git-dir", gitDir, "hash-object", file)
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+"\n", res.stdout)

	_, err := os.Stat(gitDir)
	assert.True(t, os.IsNotExist(err), "dry run must not create the repository")

	res = run(t, "", "--git-dir", gitDir, "hash-object", "-w", file)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "not a gitcas repository")
}

func TestCLI_HashObjectStdin(t *testing.T) {
	gitDir, _ := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)

	res := run(t, "hello world\n", "--git-dir", gitDir, "hash-object", "-w", "--stdin")
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+"\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "hash-object", "--stdin", "extra")
	require.Error(t, res.err)
}

func TestCLI_CID(t *testing.T) {
	gitDir, file := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)

	res := run(t, "", "--git-dir", gitDir, "hash-object", "-w", "--cid", file)
	require.NoError(t, res.err)
	c := strings.TrimSpace(res.stdout)

	h, err := cidutil.ParseRef(c)
	require.NoError(t, err)
	assert.Equal(t, helloHex, h.String())

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", c)
	require.NoError(t, res.err)
	assert.Equal(t, "hello world\n", res.stdout)

	res = run(t, "", "--git-dir", gitDir, "ls-objects", "--cid")
	require.NoError(t, res.err)
	assert.Equal(t, c+"\n", res.stdout)
}

func TestCLI_CatFileErrors(t *testing.T) {
	gitDir, _ := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)

	res := run(t, "", "--git-dir", gitDir, "cat-file", "-e", helloHex)
	var ee *exitError
	require.True(t, errors.As(res.err, &ee), "expected exit error, got %v", res.err)
	assert.Equal(t, 1, ee.code)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", helloHex)
	assert.ErrorIs(t, res.err, core.ErrNotFound)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", "abc")
	assert.ErrorIs(t, res.err, core.ErrInvalidInput)

	// Exactly one mode is required.
	assert.Error(t, run(t, "", "--git-dir", gitDir, "cat-file", helloHex).err)
	assert.Error(t, run(t, "", "--git-dir", gitDir, "cat-file", "-p", "-t", helloHex).err)
}

func TestCLI_VerifyReportsCorruption(t *testing.T) {
	gitDir, file := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "hash-object", "-w", file).err)

	path := filepath.Join(gitDir, "objects", "3b", helloHex[2:])
	require.NoError(t, os.Chmod(path, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	res := run(t, "", "--git-dir", gitDir, "verify", "--all")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "1 of 1 objects failed verification")
	assert.Contains(t, res.stdout, helloHex+": io-failure:")
}

func TestCLI_ConfigFile(t *testing.T) {
	gitDir, file := setup(t)

	cfgPath := filepath.Join(t.TempDir(), "gitcas.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dir: "+gitDir+"\ntransform:\n  name: zstd\nlog:\n  level: debug\n"), 0o644))

	require.NoError(t, run(t, "", "--config", cfgPath, "init").err)

	res := run(t, "", "--config", cfgPath, "hash-object", "-w", file)
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+"\n", res.stdout)
	assert.Contains(t, res.stderr, "object written")

	// The object is zstd-encoded, so a default zlib store cannot read it.
	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", helloHex)
	assert.ErrorIs(t, res.err, core.ErrIOFailure)

	res = run(t, "", "--config", cfgPath, "cat-file", "-p", helloHex)
	require.NoError(t, res.err)
	assert.Equal(t, "hello world\n", res.stdout)
}

func TestCLI_BadLogLevel(t *testing.T) {
	gitDir, _ := setup(t)
	res := run(t, "", "--git-dir", gitDir, "--log-level", "loud", "init")
	assert.ErrorIs(t, res.err, core.ErrInvalidInput)
}

func TestCLI_CatFileShortObjectPrintsNothing(t *testing.T) {
	gitDir, _ := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)

	payload := append([]byte("blob 40000\x00"), bytes.Repeat([]byte("x"), 39999)...)
	name := testkit.RawObjectHash(payload)
	testkit.WriteRawObject(t, filepath.Join(gitDir, "objects"), name, payload)

	res := run(t, "", "--git-dir", gitDir, "cat-file", "-p", name)
	assert.ErrorIs(t, res.err, core.ErrSizeMismatch)
	assert.Empty(t, res.stdout)

	long := append([]byte("blob 3\x00"), bytes.Repeat([]byte("y"), 70000)...)
	name = testkit.RawObjectHash(long)
	testkit.WriteRawObject(t, filepath.Join(gitDir, "objects"), name, long)

	res = run(t, "", "--git-dir", gitDir, "cat-file", "-p", name)
	assert.ErrorIs(t, res.err, core.ErrSizeMismatch)
	assert.Empty(t, res.stdout)
}

func TestCLI_VerifyCID(t *testing.T) {
	gitDir, file := setup(t)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "init").err)
	require.NoError(t, run(t, "", "--git-dir", gitDir, "hash-object", "-w", file).err)

	h, err := core.ParseHash(helloHex)
	require.NoError(t, err)
	c := cidutil.ObjectCID(h).String()

	res := run(t, "", "--git-dir", gitDir, "verify", "--cid", c)
	require.NoError(t, res.err)
	assert.Equal(t, helloHex+": ok "+c+"\n", res.stdout)

	// A well-formed object planted under a name that is not its digest.
	wrong := strings.Repeat("a", 40)
	testkit.WriteRawObject(t, filepath.Join(gitDir, "objects"), wrong, []byte("blob 5\x00hello"))
	res = run(t, "", "--git-dir", gitDir, "verify", "--cid", wrong)
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, wrong+": corrupt:")
}
