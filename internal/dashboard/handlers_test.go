package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/agilebiz/agileai/internal/backlog"
	"github.com/agilebiz/agileai/internal/config"
	"github.com/agilebiz/agileai/internal/hook"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	ws, err := config.Scaffold(t.TempDir())
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	s := NewServer(Config{Host: "127.0.0.1", Port: 3001}, ws, zap.NewNop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url string, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, url, err)
		}
	}
	return resp, decoded
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestHookConfigRoundTrip(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/hooks/config", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET config status = %d", resp.StatusCode)
	}
	if body["schema"] != hook.ConfigSchemaVersion {
		t.Errorf("schema = %v", body["schema"])
	}

	patch := `{"hooks": {"session-start": {"enabled": false}}}`
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/hooks/config", patch)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT config status = %d, body = %v", resp.StatusCode, body)
	}
	hooks := body["hooks"].(map[string]any)
	settings := hooks["session-start"].(map[string]any)
	if settings["enabled"] != false {
		t.Errorf("session-start still enabled after PUT: %v", settings)
	}

	// The change must be visible on a fresh GET (persisted, not cached).
	_, body = doJSON(t, http.MethodGet, ts.URL+"/api/hooks/config", "")
	hooks = body["hooks"].(map[string]any)
	settings = hooks["session-start"].(map[string]any)
	if settings["enabled"] != false {
		t.Error("PUT was not persisted")
	}
}

func TestHookConfigConcurrentPuts(t *testing.T) {
	s, ts := newTestServer(t)

	reg, err := hook.LoadRegistry(s.ws.HookRegistryPath())
	if err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 5; round++ {
		if err := hook.SaveConfig(s.ws.HookConfigPath(), hook.DefaultConfig(reg)); err != nil {
			t.Fatal(err)
		}

		var wg sync.WaitGroup
		for _, name := range []string{"session-start", "state-backup"} {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				patch := `{"hooks": {"` + name + `": {"enabled": false}}}`
				req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/hooks/config", strings.NewReader(patch))
				if err != nil {
					t.Errorf("PUT %s: %v", name, err)
					return
				}
				req.Header.Set("Content-Type", "application/json")
				resp, err := http.DefaultClient.Do(req)
				if err != nil {
					t.Errorf("PUT %s: %v", name, err)
					return
				}
				defer resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					t.Errorf("PUT %s status = %d", name, resp.StatusCode)
				}
			}(name)
		}
		wg.Wait()

		// Both changes must survive; a lost update leaves one enabled.
		_, body := doJSON(t, http.MethodGet, ts.URL+"/api/hooks/config", "")
		hooks := body["hooks"].(map[string]any)
		for _, name := range []string{"session-start", "state-backup"} {
			settings := hooks[name].(map[string]any)
			if settings["enabled"] != false {
				t.Fatalf("round %d: lost update, %s still enabled", round, name)
			}
		}
	}
}

func TestHookConfigPutRejectsBadPatch(t *testing.T) {
	_, ts := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{not json`, http.StatusBadRequest},
		{"unknown hook", `{"hooks": {"nope": {"enabled": true}}}`, http.StatusBadRequest},
		{"non-bool enabled", `{"hooks": {"session-start": {"enabled": "yes"}}}`, http.StatusBadRequest},
		{"negative timeout", `{"defaults": {"timeout_seconds": -5}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPut, ts.URL+"/api/hooks/config", tc.body)
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tc.want, body)
			}
			if body["code"] == nil {
				t.Errorf("error response missing code: %v", body)
			}
		})
	}
}

func TestHookRegistryAndPerformance(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/hooks/registry", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("registry status = %d", resp.StatusCode)
	}
	if body["schema"] != hook.RegistrySchemaVersion {
		t.Errorf("schema = %v", body["schema"])
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/hooks/performance", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("performance status = %d", resp.StatusCode)
	}
	if _, ok := body["hooks"]; !ok {
		t.Errorf("performance body = %v", body)
	}
}

func TestHookTestUnknownHook(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/hooks/test/no-such-hook", `{}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 (body %v)", resp.StatusCode, body)
	}
}

func TestHookTestRunsHook(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	s, ts := newTestServer(t)

	reg := &hook.Registry{
		Schema: hook.RegistrySchemaVersion,
		Hooks: []hook.Hook{{
			Name:    "echo-hook",
			Event:   "user_prompt_submit",
			Command: "sh",
			Args:    []string{"-c", "cat"},
			Source:  hook.SourceUser,
		}},
	}
	if err := hook.SaveRegistry(s.ws.HookRegistryPath(), reg); err != nil {
		t.Fatal(err)
	}
	cfg := hook.DefaultConfig(reg)
	if err := hook.SaveConfig(s.ws.HookConfigPath(), cfg); err != nil {
		t.Fatal(err)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/hooks/test/echo-hook", `{"ping": true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["exit_code"] != float64(0) {
		t.Errorf("exit_code = %v", body["exit_code"])
	}
	if !strings.Contains(body["stdout"].(string), `"ping"`) {
		t.Errorf("stdout = %v", body["stdout"])
	}
}

func TestHookTestDisabledHook(t *testing.T) {
	s, ts := newTestServer(t)

	reg, err := hook.LoadRegistry(s.ws.HookRegistryPath())
	if err != nil {
		t.Fatal(err)
	}
	cfg := hook.DefaultConfig(reg)
	cfg.Hooks["session-start"] = hook.Settings{Enabled: false}
	if err := hook.SaveConfig(s.ws.HookConfigPath(), cfg); err != nil {
		t.Fatal(err)
	}

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/hooks/test/session-start", `{}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409 (body %v)", resp.StatusCode, body)
	}
}

func TestImprovementsCRUD(t *testing.T) {
	_, ts := newTestServer(t)

	// Add.
	resp, created := doJSON(t, http.MethodPost, ts.URL+"/api/improvements",
		`{"title": "Speed up state writes", "priority": "high", "category": "performance"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, body = %v", resp.StatusCode, created)
	}
	id := created["id"].(string)
	if created["status"] != backlog.StatusOpen {
		t.Errorf("status = %v", created["status"])
	}

	// List with filter.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/improvements?priority=high", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET list status = %d", resp.StatusCode)
	}
	items := body["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items = %v", items)
	}

	// Bad filter value.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/improvements?status=bogus", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", resp.StatusCode)
	}

	// Get.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/improvements/"+id, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET item status = %d", resp.StatusCode)
	}
	if body["title"] != "Speed up state writes" {
		t.Errorf("title = %v", body["title"])
	}

	// Patch to done, then verify the terminal status is enforced.
	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/api/improvements/"+id, `{"status": "done"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PATCH status = %d, body = %v", resp.StatusCode, body)
	}
	resp, body = doJSON(t, http.MethodPatch, ts.URL+"/api/improvements/"+id, `{"status": "open"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("reopening done item: status = %d, want 409 (body %v)", resp.StatusCode, body)
	}

	// Delete.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/improvements/"+id, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/improvements/"+id, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET after delete: status = %d, want 404", resp.StatusCode)
	}
}

func TestProjectState(t *testing.T) {
	_, ts := newTestServer(t)

	// Missing file serves the default shape.
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/project-state/runtime", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d", resp.StatusCode)
	}
	if _, ok := body["session"]; !ok {
		t.Errorf("default runtime shape missing session: %v", body)
	}

	// Merge a patch.
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/project-state/persistent",
		`{"decisions": [{"title": "use chi"}], "scratch": "temp"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, body = %v", resp.StatusCode, body)
	}
	if body["updated_at"] == nil {
		t.Error("updated_at not set")
	}

	// Null deletes the key; other keys survive.
	resp, body = doJSON(t, http.MethodPut, ts.URL+"/api/project-state/persistent", `{"scratch": null}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second PUT status = %d", resp.StatusCode)
	}
	if _, ok := body["scratch"]; ok {
		t.Error("null did not delete key")
	}
	if body["decisions"] == nil {
		t.Error("merge dropped unrelated key")
	}

	// Unknown kind is 404, not a file lookup.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/project-state/../../etc", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("traversal kind: status = %d, want 404", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/project-state/sessions", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown kind: status = %d, want 404", resp.StatusCode)
	}
}

func TestAgents(t *testing.T) {
	_, ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/agents", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET agents status = %d", resp.StatusCode)
	}
	agents := body["agents"].([]any)
	if len(agents) == 0 {
		t.Fatal("no builtin agents listed")
	}
	if body["total"] != float64(len(agents)) {
		t.Errorf("total = %v, want %d (the number of personas served)", body["total"], len(agents))
	}
	first := agents[0].(map[string]any)
	if first["name"] == "" || first["title"] == "" {
		t.Errorf("summary incomplete: %v", first)
	}
	name := first["name"].(string)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/agents/"+name, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET agent status = %d", resp.StatusCode)
	}
	if body["body"] == "" {
		t.Error("persona body is empty")
	}
	if body["source"] != "builtin" {
		t.Errorf("source = %v", body["source"])
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/agents/no-such-agent", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown agent: status = %d, want 404", resp.StatusCode)
	}
}

func TestCORSMiddleware(t *testing.T) {
	ws, err := config.Scaffold(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := NewServer(Config{
		Host:        "127.0.0.1",
		Port:        3001,
		CORSOrigins: []string{"http://localhost:5173"},
	}, ws, zap.NewNop())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req, _ = http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Allow-Origin for foreign origin = %q", got)
	}
}

func TestConfigAddr(t *testing.T) {
	cfg := Config{Host: "0.0.0.0", Port: 8080}
	if got := cfg.Addr(); got != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
