package command

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi"
	"github.com/kubecloudsinc/kci-client/internal/testutil/fakeapi/fakeapitest"
)

// testEnv runs kci-cli invocations against a fake API with an isolated
// home directory, config file and token store.
type testEnv struct {
	t   *testing.T
	api *fakeapi.Server
	url string
	dir string

	// extra global flags, e.g. --store-engine sqlite
	flags []string
}

func newTestEnv(t *testing.T, cfg fakeapi.Config) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	api, url := fakeapitest.Start(t, cfg)
	return &testEnv{t: t, api: api, url: url, dir: dir}
}

// result is the outcome of one invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// run executes one kci-cli invocation with stdin as input.
func (e *testEnv) run(stdin string, args ...string) result {
	e.t.Helper()

	app := App()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)

	full := []string{
		"kci-cli",
		"--config", filepath.Join(e.dir, "cli.yaml"),
		"--server", e.url,
		"--store-path", filepath.Join(e.dir, "store"),
	}
	full = append(full, e.flags...)
	full = append(full, args...)

	err := app.Run(full)
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

// mustRun runs and fails the test on error.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	r := e.run("", args...)
	if r.err != nil {
		e.t.Fatalf("kci-cli %s: %v\nstderr: %s", strings.Join(args, " "), r.err, r.stderr)
	}
	return r.stdout
}

func (e *testEnv) login() {
	e.t.Helper()
	e.mustRun("login", "-u", "mazda", "-p", "Test1ng!")
}
