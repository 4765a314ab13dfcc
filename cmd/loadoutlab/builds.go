package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/pkg/gateway"
)

type buildsOptions struct {
	server   string
	email    string
	password string
}

func newBuildsCmd(root *rootOptions) *cobra.Command {
	opts := &buildsOptions{}

	cmd := &cobra.Command{
		Use:   "builds",
		Short: "List your saved builds on a LoadoutLab server",
		Example: `  loadoutlab builds --email me@example.com
  LOADOUTLAB_PASSWORD=... loadoutlab builds --server https://builds.example.com --email me@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.email == "" {
				return fmt.Errorf("--email is required")
			}
			if opts.password == "" {
				opts.password = os.Getenv("LOADOUTLAB_PASSWORD")
			}
			if opts.password == "" {
				pw, err := promptPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				opts.password = pw
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), slog.LevelWarn, logger.FormatText)
			client := gateway.NewHTTPClient(opts.server, log)
			return runBuilds(cmd, client, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "http://localhost:8080", "LoadoutLab server URL")
	f.StringVar(&opts.email, "email", "", "Account email")
	f.StringVar(&opts.password, "password", "", "Account password (prompted if unset)")

	return cmd
}

func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("--password or LOADOUTLAB_PASSWORD is required when stdin is not a terminal")
	}
	fmt.Fprint(w, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

func runBuilds(cmd *cobra.Command, client gateway.Client, opts *buildsOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	session, err := client.SignIn(ctx, opts.email, opts.password)
	if err != nil {
		return err
	}
	defer client.SignOut(ctx)

	builds, err := client.ListBuilds(ctx)
	if err != nil {
		return err
	}

	name := session.User.Email
	if session.Profile != nil && session.Profile.Username != "" {
		name = session.Profile.Username
	}
	fmt.Fprintf(out, "%d builds for %s\n", len(builds), name)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, b := range builds {
		visibility := "private"
		if b.IsPublic {
			visibility = "public"
		}
		platform := "-"
		if p := b.Configuration.Platform; p != nil {
			platform = string(p.SubType)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Name, platform, b.Configuration.Total, visibility, b.UpdatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}
