package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-lynx/xhook"
	"github.com/go-lynx/xhook/boot"
	"github.com/go-lynx/xhook/cmd/xhook/internal/bundle"
	"github.com/go-lynx/xhook/log"
)

// rootCmd is the root command of the xhook tool.
var rootCmd = &cobra.Command{
	Use:     "xhook",
	Short:   "xhook: inspect and verify plugin bundles",
	Long:    `xhook checks plugin bundles and module lists the way the framework loader would.`,
	Version: xhook.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		logLevel, _ := cmd.Flags().GetString("log-level")
		confPath, _ := cmd.Flags().GetString("conf")

		// Log level priority: --log-level > --quiet/--verbose > default
		switch {
		case logLevel != "":
			log.SetLevel(log.ParseLevel(logLevel))
		case quiet:
			log.SetLevel(log.ErrorLevel)
		case verbose:
			log.SetLevel(log.DebugLevel)
		default:
			log.SetLevel(log.WarnLevel)
		}
		if confPath != "" {
			boot.GetConfigManager().SetConfigPath(confPath)
		}
	},
}

func init() {
	rootCmd.AddCommand(bundle.CmdVerify)
	rootCmd.AddCommand(bundle.CmdInspect)
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose logs")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-error logs")
	rootCmd.PersistentFlags().String("log-level", "", "log level: error|warn|info|debug (overrides --quiet/--verbose)")
	rootCmd.PersistentFlags().StringP("conf", "c", "", "configuration path, eg: -c xhook.yaml (defaults to $"+boot.ConfigPathEnv+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
