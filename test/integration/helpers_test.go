// Package integration provides end-to-end tests for the listd API.
//
// Tests run against a real listd HTTP server backed by the in-memory
// store and a mock Ollama backend, both started in-process using
// net/http/httptest.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/listd/listd/pkg/account"
	"github.com/listd/listd/pkg/api"
	"github.com/listd/listd/pkg/auth"
	"github.com/listd/listd/pkg/auth/password"
	"github.com/listd/listd/pkg/auth/token"
	"github.com/listd/listd/pkg/authz"
	"github.com/listd/listd/pkg/insights"
	"github.com/listd/listd/pkg/insights/ollama"
	"github.com/listd/listd/pkg/storage/memory"
	transporthttp "github.com/listd/listd/pkg/transport/http"
)

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the listd server and mock AI backend.
type TestEnvironment struct {
	Server      *httptest.Server
	MockBackend *httptest.Server
	Issuer      *token.Issuer

	// ShortIssuer issues tokens that expire almost immediately, for
	// exercising the expiry path over the wire.
	ShortIssuer *token.Issuer
}

// TestMain starts the mock backend and listd server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment builds the full production wiring on the memory
// store: adapter, middleware chain, auth gate, AI endpoints against the
// mock backend.
func setupTestEnvironment() *TestEnvironment {
	mockBackend := startMockOllama()

	secret := []byte("integration-test-secret")
	issuer, err := token.New(token.Config{Secret: secret})
	if err != nil {
		panic(fmt.Sprintf("creating issuer: %v", err))
	}
	shortIssuer, err := token.New(token.Config{Secret: secret, Lifetime: time.Nanosecond})
	if err != nil {
		panic(fmt.Sprintf("creating short issuer: %v", err))
	}

	store := memory.New()
	hasher := password.NewHasher(bcrypt.MinCost)
	accounts := account.New(store, hasher, issuer)
	az := authz.New(store, store)

	gen, err := ollama.New(ollama.Config{BaseURL: mockBackend.URL, Model: "mock-model"})
	if err != nil {
		panic(fmt.Sprintf("creating AI client: %v", err))
	}
	ins := insights.New(gen, store, store, az)

	adapter := transporthttp.NewAdapter(accounts, store, az, ins, transporthttp.DefaultConfig())
	chain := &auth.Chain{Authenticators: []auth.Authenticator{token.NewAuthenticator(issuer)}}
	srv := transporthttp.NewServer(adapter, chain,
		transporthttp.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	return &TestEnvironment{
		Server:      httptest.NewServer(srv.Handler()),
		MockBackend: mockBackend,
		Issuer:      issuer,
		ShortIssuer: shortIssuer,
	}
}

// Teardown stops both servers.
func (env *TestEnvironment) Teardown() {
	if env.Server != nil {
		env.Server.Close()
	}
	if env.MockBackend != nil {
		env.MockBackend.Close()
	}
}

// BaseURL returns the listd server base URL.
func (env *TestEnvironment) BaseURL() string {
	return env.Server.URL
}

// --- HTTP helpers ---

// doJSON sends a request with an optional JSON body and bearer token.
func doJSON(t *testing.T, method, url, bearer string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling request: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("creating %s request: %v", method, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(body)
}

// decodeJSON reads the response body and decodes it into the target.
func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decoding JSON: %v", err)
	}
}

// errorOf decodes the flat error body and closes the response.
func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body api.ErrorResponse
	decodeJSON(t, resp, &body)
	return body.Error
}

// register creates an account and returns the auth response.
func register(t *testing.T, email string) *api.AuthResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, testEnv.BaseURL()+"/auth/register", "", map[string]string{
		"firstName": "Integration",
		"lastName":  "Test",
		"email":     email,
		"password":  "secret1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s = %d: %s", email, resp.StatusCode, readBody(t, resp))
	}
	var auth api.AuthResponse
	decodeJSON(t, resp, &auth)
	return &auth
}

// createList creates a list and returns it.
func createList(t *testing.T, bearer, name string) *api.TaskList {
	t.Helper()
	resp := doJSON(t, http.MethodPost, testEnv.BaseURL()+"/lists", bearer, map[string]string{"name": name})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create list %q = %d: %s", name, resp.StatusCode, readBody(t, resp))
	}
	var list api.TaskList
	decodeJSON(t, resp, &list)
	return &list
}

// createTask creates a task in a list and returns it.
func createTask(t *testing.T, bearer, listID, title string, due time.Time) *api.Task {
	t.Helper()
	resp := doJSON(t, http.MethodPost, testEnv.BaseURL()+"/lists/"+listID+"/tasks", bearer, map[string]string{
		"title":   title,
		"dueDate": due.Format(time.RFC3339),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task %q = %d: %s", title, resp.StatusCode, readBody(t, resp))
	}
	var task api.Task
	decodeJSON(t, resp, &task)
	return &task
}

// --- Mock Ollama backend ---

// startMockOllama creates an httptest server mimicking the Ollama
// /api/generate endpoint with a deterministic response.
func startMockOllama() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"response": "- Mock insight about " + req.Model + "\n",
		})
	})
	return httptest.NewServer(mux)
}
