package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/NUPS-NASA/exohunt/internal/auth"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// isolate points every config and state path at a temp dir so tests never
// touch real files.
func isolate(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(tmp, "state"))
	// Point the transport somewhere unroutable so no test can ever reach
	// a developer's local backend.
	t.Setenv("EXOHUNT_API_BASE", "http://127.0.0.1:1/api")
	return tmp
}

func seedSession(t *testing.T, remember bool) {
	t.Helper()
	store, err := auth.NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	err = store.Save(&auth.Session{
		User:     auth.User{ID: 7, Email: "kepler@example.org", Name: "Kepler"},
		Tokens:   auth.Tokens{AccessToken: "access", RefreshToken: "refresh"},
		Remember: remember,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func TestWhoamiWithoutSession(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "whoami")
	if err == nil {
		t.Fatal("expected an error when signed out")
	}
	combined := out + err.Error()
	if !strings.Contains(combined, "not signed in") {
		t.Errorf("expected a login hint, got: %q", combined)
	}
}

func TestWhoamiShowsStoredSession(t *testing.T) {
	isolate(t)
	seedSession(t, true)

	out, err := executeCommand(rootCmd, "whoami")
	if err != nil {
		t.Fatalf("whoami: %v (output: %s)", err, out)
	}
	if !strings.Contains(out, "kepler@example.org") {
		t.Errorf("expected the session email, got: %q", out)
	}
	if !strings.Contains(out, "remembered") {
		t.Errorf("expected the remembered marker, got: %q", out)
	}
}

func TestStatusProbesHealth(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()
	t.Setenv("EXOHUNT_API_BASE", srv.URL)

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status: %v (output: %s)", err, out)
	}
	if !strings.Contains(out, "Health:  ok") {
		t.Errorf("expected a healthy probe, got: %q", out)
	}
	if !strings.Contains(out, "Not signed in.") {
		t.Errorf("expected the signed-out marker, got: %q", out)
	}
}

func TestStatusUnreachableBackend(t *testing.T) {
	isolate(t)
	t.Setenv("EXOHUNT_API_BASE", "http://127.0.0.1:1/api")

	out, err := executeCommand(rootCmd, "status")
	if err != nil {
		t.Fatalf("status must not fail on an unreachable backend: %v", err)
	}
	if !strings.Contains(out, "unreachable") {
		t.Errorf("expected an unreachable marker, got: %q", out)
	}
}

func TestLogoutWhenSignedOut(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "logout")
	if err != nil {
		t.Fatalf("logout: %v (output: %s)", err, out)
	}
	if !strings.Contains(out, "Signed out.") {
		t.Errorf("expected a confirmation, got: %q", out)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	isolate(t)
	seedSession(t, false)

	out, err := executeCommand(rootCmd, "upload", "--plain", "--yes")
	if err == nil {
		t.Fatal("expected an error with no files selected")
	}
	combined := out + err.Error()
	if !strings.Contains(combined, "no FITS files selected") {
		t.Errorf("expected a file-selection error, got: %q", combined)
	}
}
