package browser

import (
	"fmt"
	"strings"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	calls      int
	lastName   string
	lastArgs   []string
	startError error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.calls++
	m.lastName = name
	m.lastArgs = args
	return m.startError
}

func TestOpen_PerPlatform(t *testing.T) {
	const target = "http://localhost:8080/forge"

	tests := []struct {
		goos string
		name string
		args []string
	}{
		{"linux", "xdg-open", []string{target}},
		{"freebsd", "xdg-open", []string{target}},
		{"darwin", "open", []string{target}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", target}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := NewWithCommander(mock, tt.goos).Open(target); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastName != tt.name {
				t.Errorf("expected command %q, got %q", tt.name, mock.lastName)
			}
			if strings.Join(mock.lastArgs, " ") != strings.Join(tt.args, " ") {
				t.Errorf("expected args %v, got %v", tt.args, mock.lastArgs)
			}
		})
	}
}

func TestOpen_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}
	err := NewWithCommander(mock, "plan9").Open("http://localhost:8080/")

	if err == nil || !strings.Contains(err.Error(), "unsupported platform: plan9") {
		t.Fatalf("expected unsupported platform error, got: %v", err)
	}
	if mock.calls != 0 {
		t.Error("nothing should be started on an unsupported platform")
	}
}

func TestOpen_RejectsURLs(t *testing.T) {
	for _, raw := range []string{
		"file:///etc/passwd",
		"javascript:alert(1)",
		"localhost:8080",
		"http://",
		"http://[::1",
	} {
		t.Run(raw, func(t *testing.T) {
			mock := &mockCommander{}
			if err := NewWithCommander(mock, "linux").Open(raw); err == nil {
				t.Errorf("expected %q to be rejected", raw)
			}
			if mock.calls != 0 {
				t.Errorf("rejected URL %q was handed to the desktop", raw)
			}
		})
	}
}

func TestOpen_CommandError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("command execution failed")}

	err := NewWithCommander(mock, "linux").Open("http://localhost:8080/")
	if err == nil || err.Error() != "command execution failed" {
		t.Errorf("expected the commander's error, got: %v", err)
	}
}

func TestForge(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		buildID string
		want    string
	}{
		{"plain", "http://localhost:8080", "", "http://localhost:8080/forge"},
		{"trailing slash", "https://builds.example.com/", "", "https://builds.example.com/forge"},
		{"with build", "http://localhost:8080", "3f2a c", "http://localhost:8080/forge?build=3f2a+c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockCommander{}
			if err := NewWithCommander(mock, "darwin").Forge(tt.base, tt.buildID); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastArgs[0] != tt.want {
				t.Errorf("expected %q, got %q", tt.want, mock.lastArgs[0])
			}
		})
	}
}
