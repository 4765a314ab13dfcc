// Package browser opens pages of the running server in the desktop browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

// Commander starts an external program
type Commander interface {
	Start(name string, args ...string) error
}

// ExecCommander starts programs with os/exec
type ExecCommander struct{}

// Start runs the program without waiting for it to exit
func (ExecCommander) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Opener launches URLs with the platform's default handler
type Opener struct {
	cmd  Commander
	goos string
}

// New returns an Opener for the current platform
func New() *Opener {
	return NewWithCommander(ExecCommander{}, runtime.GOOS)
}

// NewWithCommander returns an Opener that behaves as on goos and starts
// programs through cmd
func NewWithCommander(cmd Commander, goos string) *Opener {
	return &Opener{cmd: cmd, goos: goos}
}

// Open validates rawURL and hands it to the desktop. Only http and https
// URLs are opened.
func (o *Opener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open %q: missing host", rawURL)
	}

	name, args, err := launcher(o.goos, u.String())
	if err != nil {
		return err
	}
	return o.cmd.Start(name, args...)
}

// Forge opens the builder page of the server at baseURL, preloading
// buildID when it is not empty
func (o *Opener) Forge(baseURL, buildID string) error {
	target := strings.TrimSuffix(baseURL, "/") + "/forge"
	if buildID != "" {
		target += "?build=" + url.QueryEscape(buildID)
	}
	return o.Open(target)
}

func launcher(goos, target string) (string, []string, error) {
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	}
	return "", nil, fmt.Errorf("unsupported platform: %s", goos)
}

// Open opens rawURL in the default browser of the current platform
func Open(rawURL string) error {
	return New().Open(rawURL)
}
