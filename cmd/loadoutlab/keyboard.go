package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
)

// forgeOpener opens the builder page in a browser
type forgeOpener interface {
	Forge(baseURL, buildID string) error
}

// shortcuts handles single-key commands while the server runs
type shortcuts struct {
	out     io.Writer
	log     logger.Logger
	opener  forgeOpener
	baseURL string
	quit    func()
}

// listen puts the terminal into raw mode and dispatches keys until ctx is
// done or the quit key is pressed. The returned func restores the terminal.
func (s *shortcuts) listen(ctx context.Context, fd int, in io.Reader) (func(), error) {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	restore := func() { term.Restore(fd, oldState) }

	go func() {
		buf := make([]byte, 1)
		for ctx.Err() == nil {
			n, err := in.Read(buf)
			if err != nil {
				return
			}
			if n == 0 {
				continue
			}
			if !s.handleKey(buf[0]) {
				return
			}
		}
	}()
	return restore, nil
}

// handleKey runs the command for key and reports whether to keep listening
func (s *shortcuts) handleKey(key byte) bool {
	switch strings.ToLower(string(key)) {
	case "f":
		fmt.Fprintf(s.out, "%sOpening the forge in your browser...%s\n", cyan, reset)
		if err := s.opener.Forge(s.baseURL, ""); err != nil {
			fmt.Fprintf(s.out, "%sError opening browser: %v%s\n", red, err, reset)
		}
	case "h":
		if s.log.IsHTTPLoggingEnabled() {
			s.log.DisableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			s.log.EnableHTTPLogging()
			fmt.Fprintf(s.out, "%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(s.log.GetLevel())
		s.log.SetLevel(next)
		fmt.Fprintf(s.out, "%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
	case "?":
		s.printHelp()
	case "q", "\x03": // q or Ctrl+C
		fmt.Fprintf(s.out, "%sShutting down server...%s\n", yellow, reset)
		s.quit()
		return false
	}
	return true
}

// printHelp displays all available keyboard shortcuts
func (s *shortcuts) printHelp() {
	fmt.Fprintf(s.out, "\n%s%s  Keyboard shortcuts:%s\n", bold, green, reset)
	fmt.Fprintf(s.out, "    %sf%s      - Open the forge in a browser\n", cyan, reset)
	fmt.Fprintf(s.out, "    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Fprintf(s.out, "    %sl%s      - Cycle log level (debug, info, warn, error)\n", cyan, reset)
	fmt.Fprintf(s.out, "    %sq%s      - Quit server\n", cyan, reset)
	fmt.Fprintf(s.out, "    %s?%s      - Show this help\n\n", cyan, reset)
}

// crlfWriter rewrites bare \n as \r\n for a terminal in raw mode
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
