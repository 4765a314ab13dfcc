package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Lukeeddleman/loadoutlab-site/internal/app"
	"github.com/Lukeeddleman/loadoutlab-site/internal/browser"
	"github.com/Lukeeddleman/loadoutlab-site/internal/config"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/web"
)

// flagKeys maps command-line flags to configuration keys
var flagKeys = map[string]string{
	"port":                 "port",
	"db":                   "db",
	"log-level":            "log_level",
	"log-format":           "log_format",
	"jwt-secret":           "jwt_secret",
	"session-ttl":          "session_ttl",
	"forge-session-ttl":    "forge_session_ttl",
	"catalog-file":         "catalog_file",
	"enforce-dependencies": "enforce_dependencies",
	"strict-platform":      "strict_platform",
	"base-url":             "base_url",
	"secure-cookies":       "secure_cookies",
	"no-keyboard":          "no_keyboard",
	"open-browser":         "open_browser",
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long: `Run the LoadoutLab web server.

Keyboard shortcuts (when stdin is a terminal):
  f              Open the forge in a browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug, info, warn, error)
  q              Quit server
  ?              Show keyboard help`,
		Example: `  loadoutlab serve                         # Port 8080 with loadoutlab.db
  loadoutlab serve --port 9000 --db /data/builds.db
  loadoutlab serve --enforce-dependencies  # Lock parts until their prerequisite is chosen
  LOADOUTLAB_JWT_SECRET=s3cret loadoutlab serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.Int("port", 8080, "HTTP server port")
	f.String("db", "loadoutlab.db", "SQLite database path")
	f.String("log-level", "info", "Log level: debug, info, warn, error")
	f.String("log-format", "text", "Log format: text, json")
	f.String("jwt-secret", "", "Secret for signing session tokens (random if unset)")
	f.Duration("session-ttl", 24*time.Hour, "Account session lifetime")
	f.Duration("forge-session-ttl", 12*time.Hour, "Idle lifetime of an anonymous forge session")
	f.String("catalog-file", "", "Parts catalog YAML (embedded sample if unset)")
	f.Bool("enforce-dependencies", false, "Lock categories until their prerequisite part is chosen")
	f.Bool("strict-platform", false, "Reject part selection before a platform is configured")
	f.String("base-url", "", "Public URL used in share links and QR codes")
	f.Bool("secure-cookies", false, "Mark session cookies Secure (behind HTTPS)")
	f.Bool("no-keyboard", false, "Disable keyboard shortcuts")
	f.Bool("open-browser", false, "Open the forge in a browser once the server is up")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	fd := int(os.Stdin.Fd())
	interactive := !cfg.NoKeyboard && term.IsTerminal(fd)

	// Raw mode turns off output post-processing, so log lines need \r\n
	var logOut io.Writer = os.Stdout
	if interactive {
		logOut = &crlfWriter{w: os.Stdout}
		out = logOut
	}
	appLog := logger.NewWithWriter(logOut, cfg.SlogLevel(), logger.Format(cfg.LogFormat))

	showBanner(out)

	a, err := app.New(cfg, appLog, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	opener := browser.New()
	if cfg.OpenBrowser {
		go func() {
			time.Sleep(200 * time.Millisecond)
			if err := opener.Forge(a.BaseURL(), ""); err != nil {
				appLog.Warn("Could not open browser", "error", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if interactive {
		keys := &shortcuts{
			out:     out,
			log:     appLog,
			opener:  opener,
			baseURL: a.BaseURL(),
			quit:    cancel,
		}
		restore, err := keys.listen(ctx, fd, os.Stdin)
		if err != nil {
			appLog.Warn("Keyboard shortcuts unavailable", "error", err)
		} else {
			defer restore()
			keys.printHelp()
		}
	} else if cfg.NoKeyboard {
		fmt.Fprintf(out, "%sKeyboard shortcuts disabled (use --no-keyboard=false to enable)%s\n\n", yellow, reset)
	}

	return a.Run(ctx, cfg.Addr())
}
