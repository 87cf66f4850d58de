// Package bundle implements the bundle verification commands.
package bundle

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-lynx/xhook/boot"
	"github.com/go-lynx/xhook/conf"
)

// ErrInvalid is returned when at least one bundle fails validation.
var ErrInvalid = errors.New("invalid bundles found")

// CmdVerify validates every bundle of a module list.
var CmdVerify = &cobra.Command{
	Use:   "verify [module-list]",
	Short: "Validate every bundle listed in a module list",
	Long: `The verify command opens each bundle of the module list and applies the
checks the loader runs before instantiating entry points.`,
	Example: `  # Verify the configured module list
  xhook verify

  # Verify a specific list
  xhook verify /data/xhook/conf/modules.list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var list string
		if len(args) == 1 {
			list = args[0]
		} else {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			list = boot.ResolvePath(cfg, cfg.ModulesList)
		}
		return Verify(cmd.OutOrStdout(), boot.FileSource{}, list, validation())
	},
}

// CmdInspect prints the manifest and class index of one bundle.
var CmdInspect = &cobra.Command{
	Use:   "inspect <bundle>",
	Short: "Print the entry points and classes of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return Inspect(cmd.OutOrStdout(), boot.FileSource{}, args[0], validation())
	},
}

var (
	frameworkClass string
	showIndex      bool
)

func init() {
	for _, c := range []*cobra.Command{CmdVerify, CmdInspect} {
		c.Flags().StringVar(&frameworkClass, "framework-class", boot.DefaultFrameworkClass, "class a bundle must not package")
	}
	CmdInspect.Flags().BoolVar(&showIndex, "index", false, "also print the class index")
}

func validation() boot.Validation {
	return boot.Validation{FrameworkClass: frameworkClass, ToolchainMarkers: boot.DefaultToolchainMarkers}
}

func loadConfig() (*conf.Xhook, error) {
	cm := boot.GetConfigManager()
	if !cm.IsConfigPathSet() {
		if path := cm.GetDefaultConfigPath(); !(boot.FileSource{}).Exists(path) {
			return conf.Default(), nil
		}
	}
	return boot.LoadConfig(cm.GetConfigPath())
}

// Verify checks every bundle of the list at path and writes one status line
// per bundle.
func Verify(w io.Writer, src boot.Source, list string, v boot.Validation) error {
	paths, err := boot.ReadModuleList(src, list)
	if err != nil {
		return err
	}
	ok, bad := color.New(color.FgGreen), color.New(color.FgRed)
	failed := 0
	for _, path := range paths {
		b, err := boot.OpenBundle(src, path, v)
		if err != nil {
			failed++
			bad.Fprintf(w, "FAIL %s: %v\n", path, errors.Unwrap(err))
			continue
		}
		ok.Fprintf(w, "OK   %s (%d entry points)\n", path, len(b.EntryPoints))
	}
	color.New(color.FgCyan).Fprintf(w, "%d bundles, %d failed\n", len(paths), failed)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInvalid, failed, len(paths))
	}
	return nil
}

// Inspect validates one bundle and prints its entry points.
func Inspect(w io.Writer, src boot.Source, path string, v boot.Validation) error {
	b, err := boot.OpenBundle(src, path, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", b.Path)
	fmt.Fprintf(w, "entry points:\n")
	for _, e := range b.EntryPoints {
		fmt.Fprintf(w, "  %s\n", e)
	}
	if showIndex {
		fmt.Fprintf(w, "classes:\n")
		for _, c := range b.Index {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
	return nil
}
