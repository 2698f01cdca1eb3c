package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mcinstall/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The config file is loaded before any subcommand runs, and the logger is
// attached to the command context where subcommands retrieve it with
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "mcinstall installs Minecraft versions and mod loaders",
		Long:         `mcinstall resolves version metadata, downloads the client, libraries, assets and Java runtime of a Minecraft version, and verifies every file it installs.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.Logger.GetLevel() <= LogDebug {
				registerDebugHooks(c.Logger)
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mcinstall/config.toml)")
	flags.StringVar(&c.mainDir, "main-dir", "", "game directory (default: the platform's .minecraft)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the API response cache")

	root.AddCommand(c.installCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
