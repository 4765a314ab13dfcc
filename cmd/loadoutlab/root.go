package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Lukeeddleman/loadoutlab-site/internal/config"
)

// rootOptions holds flags shared by every command
type rootOptions struct {
	v          *viper.Viper
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	serve := newServeCmd(opts)

	root := &cobra.Command{
		Use:   "loadoutlab",
		Short: "LoadoutLab - AR-15 build configurator",
		Long: `LoadoutLab serves a parts configurator for AR-pattern builds: pick a platform,
choose compatible parts category by category, and save or share the result.

Running loadoutlab without a command starts the server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
	}
	root.SetVersionTemplate("loadoutlab {{.Version}}\n")
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default ./loadoutlab.yaml)")

	// Serve flags are also accepted on the bare command
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, newCatalogCmd(opts), newBuildsCmd(opts), newVersionCmd())
	return root
}

// load binds the command's flags into viper and reads the configuration
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = o.v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return nil, fmt.Errorf("binding flags: %w", bindErr)
	}
	return config.Load(o.v, o.configFile)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "loadoutlab %s\n", version)
		},
	}
}
