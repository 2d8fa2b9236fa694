package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/httpclient/httpclienttest"
)

// tempFS only sees absolute paths, so tests never pick up a hurl.yml from
// the working directory or the user's config dir.
type tempFS struct{}

func (tempFS) Exists(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
func (tempFS) LoadEnv(string) error           { return nil }
func (tempFS) UserConfigDir() (string, error) { return "", nil }

type result struct {
	code   int
	stdout string
	stderr string
}

func runApp(t *testing.T, sender *httpclienttest.Sender, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{Stdout: &stdout, Stderr: &stderr, FileSystem: tempFS{}}
	if sender != nil {
		app.Sender = sender
	}
	code := app.Run(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hurl.yml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRun_PrettyPrintsJSON(t *testing.T) {
	sender := httpclienttest.New(httpclienttest.Respond(200, `{"name":"widget","tags":[1,2]}`))

	r := runApp(t, sender, "https://example.com/items/1")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	want := "{\n  \"name\": \"widget\",\n  \"tags\": [\n    1,\n    2\n  ]\n}\n"
	if r.stdout != want {
		t.Errorf("stdout:\ngot  %q\nwant %q", r.stdout, want)
	}
	req := sender.Requests()[0]
	if req.Method() != domain.MethodGet || req.HasBody() {
		t.Errorf("sent %v with body=%v", req.Method(), req.HasBody())
	}
}

func TestRun_RawBody(t *testing.T) {
	sender := httpclienttest.New(httpclienttest.Respond(404, "not found"))

	r := runApp(t, sender, "http://example.com/missing")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "not found\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
}

func TestRun_VerbosePrintsStatus(t *testing.T) {
	sender := httpclienttest.New(httpclienttest.Respond(201, "ok"))

	r := runApp(t, sender, "-v", "-m", "post", "-d", `{"a":1}`, "-H", "Authorization: Bearer secret-token", "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "Status: 201\nok\n" {
		t.Errorf("stdout = %q", r.stdout)
	}
	if !strings.Contains(r.stderr, "sending request") {
		t.Errorf("expected debug logs on stderr, got %q", r.stderr)
	}
	if strings.Contains(r.stderr, "secret-token") {
		t.Error("credentials leaked into logs")
	}
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	sender := httpclienttest.New(httpclienttest.Respond(200, `{"a":1}`))

	r := runApp(t, sender, "-o", path, "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if r.stdout != "" {
		t.Errorf("stdout = %q, want nothing", r.stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Errorf("file = %q, want raw body", data)
	}

	r = runApp(t, sender, "-v", "-o", path, "http://example.com")
	if want := "Status: 200\nSaved response to " + path + "\n"; r.stdout != want {
		t.Errorf("stdout = %q, want %q", r.stdout, want)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no scheme", []string{"example.com"}, "Error: URL must start with http:// or https://\n"},
		{"GET with body", []string{"-d", `{}`, "http://example.com"}, "Error: GET requests should not have a body\n"},
		{"bad header", []string{"-H", "NoColon", "http://example.com"}, "Error: Invalid header format: 'NoColon'. Use 'Key: Value'\n"},
		{"bad method", []string{"-m", "FETCH", "http://example.com"}, "Error: Unsupported HTTP method: 'FETCH'\n"},
		{"bad json", []string{"-m", "POST", "-d", "not json", "http://example.com"}, "Error: Invalid JSON body\n"},
		{"no url", nil, "Error: URL is required\n"},
		{"unknown profile", []string{"-p", "nope", "http://example.com"}, "Error: profile \"nope\" not found\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := httpclienttest.New()
			r := runApp(t, sender, tt.args...)
			if r.code != 1 {
				t.Errorf("exit = %d, want 1", r.code)
			}
			if !strings.HasSuffix(r.stderr, tt.want) {
				t.Errorf("stderr = %q, want suffix %q", r.stderr, tt.want)
			}
			if sender.Calls() != 0 {
				t.Errorf("calls = %d, want 0", sender.Calls())
			}
		})
	}
}

func TestRun_TransportErrorExitsNonZero(t *testing.T) {
	sender := httpclienttest.New(httpclienttest.Fail(apperrors.Transport(apperrors.StageConnect, errors.New("connection refused"))))

	r := runApp(t, sender, "http://example.com")
	if r.code != 1 {
		t.Fatalf("exit = %d, want 1", r.code)
	}
	if r.stderr != "Error: Could not connect to host: connection refused\n" {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestRun_Retries(t *testing.T) {
	fail := httpclienttest.Fail(apperrors.Transport(apperrors.StageConnect, errors.New("refused")))
	sender := httpclienttest.New(fail, fail, httpclienttest.Respond(200, "ok"))

	r := runApp(t, sender, "--retries", "2", "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if sender.Calls() != 3 {
		t.Errorf("calls = %d, want 3", sender.Calls())
	}
}

func TestRun_RetriesFromEnvironment(t *testing.T) {
	t.Setenv("HURL_CLIENT_RETRIES", "1")
	fail := httpclienttest.Fail(apperrors.Transport(apperrors.StageConnect, errors.New("refused")))
	sender := httpclienttest.New(fail, httpclienttest.Respond(200, "ok"))

	r := runApp(t, sender, "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if sender.Calls() != 2 {
		t.Errorf("calls = %d, want 2", sender.Calls())
	}
}

func TestRun_Timeout(t *testing.T) {
	sender := httpclienttest.New(httpclienttest.Respond(200, "late").After(5 * time.Second))

	r := runApp(t, sender, "--timeout", "50ms", "http://example.com")
	if r.code != 1 {
		t.Fatalf("exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.stderr, context.DeadlineExceeded.Error()) {
		t.Errorf("stderr = %q", r.stderr)
	}
}

func TestRun_Batch(t *testing.T) {
	sender := httpclienttest.NewHandler(func(_ context.Context, req domain.Request) httpclienttest.Step {
		return httpclienttest.Respond(200, req.URL().String())
	})

	r := runApp(t, sender, "-m", "DELETE", "http://example.com/1", "http://example.com/2", "http://example.com/3")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if want := "http://example.com/1\nhttp://example.com/2\nhttp://example.com/3\n"; r.stdout != want {
		t.Errorf("stdout = %q, want %q", r.stdout, want)
	}
}

func TestRun_BatchOutputFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resp")
	sender := httpclienttest.NewHandler(func(_ context.Context, req domain.Request) httpclienttest.Step {
		return httpclienttest.Respond(200, req.URL().String())
	})

	if r := runApp(t, sender, "-o", path, "http://a.example", "http://b.example"); r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	for i, want := range []string{"http://a.example", "http://b.example"} {
		data, err := os.ReadFile(outputPath(path, i, 2))
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(data) != want {
			t.Errorf("file %d = %q, want %q", i+1, data, want)
		}
	}
}

func TestRun_Profile(t *testing.T) {
	cfgPath := writeConfig(t, `
profiles:
  staging:
    headers:
      - "Authorization: Bearer xyz"
      - "X-Env: staging"
    retries: 1
`)
	fail := httpclienttest.Fail(apperrors.Transport(apperrors.StageConnect, errors.New("refused")))
	sender := httpclienttest.New(fail, httpclienttest.Respond(200, "ok"))

	r := runApp(t, sender, "--config", cfgPath, "-p", "staging", "-H", "X-Env: override", "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	if sender.Calls() != 2 {
		t.Errorf("calls = %d, want 2 (profile retries)", sender.Calls())
	}
	got := sender.Requests()[0].Headers()
	want := []domain.Header{
		{Name: "Authorization", Value: "Bearer xyz"},
		{Name: "X-Env", Value: "staging"},
		{Name: "X-Env", Value: "override"},
	}
	if len(got) != len(want) {
		t.Fatalf("headers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("headers[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRun_ProfileRetriesYieldToFlag(t *testing.T) {
	cfgPath := writeConfig(t, "profiles:\n  p:\n    retries: 5\n")
	sender := httpclienttest.New(httpclienttest.Fail(apperrors.Transport(apperrors.StageConnect, errors.New("refused"))))

	r := runApp(t, sender, "--config", cfgPath, "-p", "p", "--retries", "1", "http://example.com")
	if r.code != 1 {
		t.Fatalf("exit = %d, want 1", r.code)
	}
	if sender.Calls() != 2 {
		t.Errorf("calls = %d, want 2", sender.Calls())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgPath := writeConfig(t, "client:\n  retries: 500\n")
	r := runApp(t, httpclienttest.New(), "--config", cfgPath, "http://example.com")
	if r.code != 1 {
		t.Errorf("exit = %d, want 1", r.code)
	}
	if !strings.Contains(r.stderr, "Error: config.client: ") || !strings.Contains(r.stderr, "retries: must be at most 100") {
		t.Errorf("stderr = %q, want the config section prefix and the field error", r.stderr)
	}
}

func TestRun_ProfileMixedCaseName(t *testing.T) {
	cfgPath := writeConfig(t, "profiles:\n  Staging:\n    headers: [\"X-Env: staging\"]\n")
	sender := httpclienttest.New(httpclienttest.Respond(200, "ok"))

	r := runApp(t, sender, "--config", cfgPath, "-p", "Staging", "http://example.com")
	if r.code != 0 {
		t.Fatalf("exit = %d, stderr = %q", r.code, r.stderr)
	}
	got := sender.Requests()[0].HeaderValues("X-Env")
	if len(got) != 1 || got[0] != "staging" {
		t.Errorf("X-Env = %v, want [staging]", got)
	}
}

func TestRun_Modes(t *testing.T) {
	tests := map[string]string{
		"--wizard":  "Wizard mode not implemented yet.\n",
		"--inspect": "Inspect mode not implemented yet.\n",
	}
	for flag, want := range tests {
		r := runApp(t, nil, flag)
		if r.code != 0 || r.stdout != want {
			t.Errorf("%s: exit %d, stdout %q", flag, r.code, r.stdout)
		}
	}
}

func TestRun_Version(t *testing.T) {
	r := runApp(t, nil, "--version")
	if r.code != 0 || !strings.HasPrefix(r.stdout, "hurl ") {
		t.Errorf("exit %d, stdout %q", r.code, r.stdout)
	}
}

func TestRun_BadFlags(t *testing.T) {
	if r := runApp(t, nil, "--no-such-flag"); r.code != 1 {
		t.Errorf("exit = %d, want 1", r.code)
	}
	if r := runApp(t, nil, "--help"); r.code != 0 || !strings.Contains(r.stderr, "Usage: hurl") {
		t.Errorf("--help: exit %d, stderr %q", r.code, r.stderr)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	var gotContentType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = io.WriteString(w, `{"id":7}`)
	}))
	defer srv.Close()

	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"-m", "POST", "-d", `{"name":"x"}`, srv.URL + "/items"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %q", code, stderr.String())
	}
	if gotContentType != "application/json" || gotBody != `{"name":"x"}` {
		t.Errorf("server got Content-Type %q body %q", gotContentType, gotBody)
	}
	if stdout.String() != "{\n  \"id\": 7\n}\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestDescribe(t *testing.T) {
	validation := apperrors.Validation("retries: must be at most 100")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"app error", apperrors.InvalidInput("url", "URL is required"), "URL is required"},
		{"app error with cause", apperrors.Transport(apperrors.StageConnect, errors.New("connection refused")), "Could not connect to host: connection refused"},
		{"wrapped app error", fmt.Errorf("config.client: %w", validation), "config.client: " + validation.Error()},
		{"plain error", errors.New("boom"), "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describe(tt.err); got != tt.want {
				t.Errorf("describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
