package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/aquabot/internal/config"
	"github.com/pfrederiksen/aquabot/internal/credentials"
)

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()

	data, err := os.ReadFile("../../testdata/fixtures/j17_sample.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	server := fixtureServer(t)

	out, err := execute(context.Background(), "check", "--url", server.URL)
	if err != nil {
		t.Fatalf("check error = %v", err)
	}

	want := "The J-17 Bexar aquifer level is 665.1. Yesterday, it was 665.3 and the 10-day average is 665.0"
	if !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestRootCommand_DryRunPostsOnce(t *testing.T) {
	server := fixtureServer(t)
	stateFile := filepath.Join(t.TempDir(), "state.json")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := execute(ctx,
		"--dry-run",
		"--url", server.URL,
		"--threshold", "00:00",
		"--timezone", "UTC",
		"--poll-interval", "1h",
		"--log-level", "error",
		"--state-file", stateFile,
	)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	if got := strings.Count(out, "--- Notification ---"); got != 1 {
		t.Errorf("posted %d notifications, want 1:\n%s", got, out)
	}

	data, err := os.ReadFile(stateFile)
	if err != nil {
		t.Fatalf("state file not written: %v", err)
	}
	today := time.Now().UTC().Format("2006-01-02")
	if !strings.Contains(string(data), today) {
		t.Errorf("state file = %s, want date %s", data, today)
	}
}

func TestRootCommand_MissingCredentialsIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "twitter_creds.json")

	_, err := execute(context.Background(), "--credentials", missing, "--timezone", "UTC")
	if !errors.Is(err, credentials.ErrMissing) {
		t.Errorf("run error = %v, want credentials.ErrMissing", err)
	}
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad threshold", []string{"--threshold", "9am", "--dry-run"}},
		{"bad timezone", []string{"--timezone", "Nowhere/Special", "--dry-run"}},
		{"bad log level", []string{"--log-level", "loud", "--dry-run"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(context.Background(), tt.args...)
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("run error = %v, want config.ErrInvalid", err)
			}
		})
	}
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	if _, err := execute(context.Background(), "unexpected"); err == nil {
		t.Error("expected error for positional argument")
	}
}
