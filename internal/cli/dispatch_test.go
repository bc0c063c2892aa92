package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"tasksync/internal/cli"
	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
)

// testFactory creates a backend factory that returns the given FakeService
// and records the config it was called with.
func testFactory(svc *testutil.FakeService, got **config.Config) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		if got != nil {
			*got = cfg
		}
		return svc, nil
	}
}

// isolate points config at an empty directory and clears config variables.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"PUBLIC_API_URL", "TASKSYNC_BACKEND", "TASKSYNC_GOOGLE_LIST",
		"TASKSYNC_ROLLBACK", "TASKSYNC_LOG_LEVEL", "TASKSYNC_LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func run(t *testing.T, factory cli.BackendFactory, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	isolate(t)
	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionWithBadConfig(t *testing.T) {
	isolate(t)
	t.Setenv("TASKSYNC_BACKEND", "carrier-pigeon")

	stdout, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "tasksync 0.1.0\n" {
		t.Errorf("expected 'tasksync 0.1.0\\n', got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagNeedsArgument(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "list", "--config")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -config\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	svc.AddTask("1", "Buy milk", false)

	stdout, stderr, code := run(t, testFactory(svc, nil))

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
}

func TestDispatcher_CommandFlagsAndRefs(t *testing.T) {
	isolate(t)
	svc := testutil.NewFakeService()
	svc.AddTask("a", "Buy milk", false)
	svc.AddTask("b", "Call mom", false)

	stdout, stderr, code := run(t, testFactory(svc, nil), "t", "--id", "--quiet", "b")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected quiet output, got %q", stdout)
	}
	if !svc.Tasks()[1].IsCompleted {
		t.Error("expected task b to be completed")
	}
}

func TestDispatcher_FlagOverridesConfig(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PUBLIC_API_URL", "http://from-env")

	var got *config.Config
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), &got),
		"list", "--config", dir, "--api-url", "http://from-flag")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if got.APIURL != "http://from-flag" {
		t.Errorf("expected flag to win, got %q", got.APIURL)
	}
	if got.Dir != dir {
		t.Errorf("expected config dir %q, got %q", dir, got.Dir)
	}
}

func TestDispatcher_InvalidBackendFlag(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "list", "--backend", "carrier-pigeon")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: config: unknown backend: carrier-pigeon\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_GoogleTasksNeedsCredentials(t *testing.T) {
	dir := isolate(t)
	called := false
	factory := func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		called = true
		return testutil.NewFakeService(), nil
	}

	_, stderr, code := run(t, factory, "list", "--backend", "googletasks", "--config", dir)

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	expected := "error: oauth_client.json not found in " + dir + "\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if called {
		t.Error("factory should not run without credentials")
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	isolate(t)
	factory := func(ctx context.Context, cfg *config.Config, logger *log.Logger) (service.Service, error) {
		return nil, errors.New("no route to host")
	}

	_, stderr, code := run(t, factory, "list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: backend: no route to host\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	isolate(t)
	_, stderr, code := run(t, testFactory(testutil.NewFakeService(), nil), "list", "--debug", "--quiet")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "backend ready") || !strings.Contains(stderr, "loaded tasks") {
		t.Errorf("expected debug logs on stderr, got %q", stderr)
	}
}

// The default factory talks to the REST API named by --api-url.
func TestDispatcher_RESTBackend(t *testing.T) {
	isolate(t)
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.Method != http.MethodGet || r.URL.Path != "/tasks" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"1","title":"a","isCompleted":true,"createdAt":"2024-01-01T00:00:00Z"}]`))
	}))
	defer srv.Close()

	stdout, stderr, code := run(t, nil, "list", "--api-url", srv.URL)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  [x] a\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if gotUA != "tasksync/"+commands.Version {
		t.Errorf("unexpected user agent %q", gotUA)
	}
}

func TestDispatcher_RESTBackendError(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message":"maintenance"}`))
	}))
	defer srv.Close()

	_, stderr, code := run(t, nil, "list", "--api-url", srv.URL)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "error: backend error: maintenance\n") {
		t.Errorf("expected backend error message, got %q", stderr)
	}
	if !strings.Contains(stderr, "API request failed") {
		t.Errorf("expected the client to log the failure, got %q", stderr)
	}
}
