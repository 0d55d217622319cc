// Package cli implements the wax command line: cobra commands operating on a
// WiX installer project and its solution, plus colored terminal output.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/msbuild"
)

// ConfigurationEnv provides the default for --configuration.
const ConfigurationEnv = "WAX_CONFIGURATION"

// NewRootCommand creates the root command. Diagnostics are logged to
// logOutput.
func NewRootCommand(fs filesystem.FileSystem, logOutput io.Writer, version string) *cobra.Command {
	a := &app{fs: fs, logOutput: logOutput, logger: log.NewNopLogger()}

	rootCmd := &cobra.Command{
		Use:   "wax",
		Short: "Keep WiX installer projects in sync with the projects they deploy",
		Long: `wax maintains a sidecar configuration (.wax) next to a WiX project that maps
build output of other projects in the solution to installer identifiers, and
creates missing directories, components and feature references on demand.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.opts.project, "project", "p", "", "WiX project file (default: the only .wixproj in the current directory)")
	flags.StringVar(&a.opts.solution, "solution", "", "solution root directory (default: nearest directory with a .sln file)")
	flags.StringVar(&a.opts.configuration, "configuration", envOr(ConfigurationEnv, msbuild.DefaultConfiguration), "build configuration of deployed projects")
	flags.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log debug output")
	flags.BoolVar(&a.opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(NewStatusCommand(a))
	rootCmd.AddCommand(NewIDCommand(a))
	rootCmd.AddCommand(NewMapCommand(a))
	rootCmd.AddCommand(NewUnmapCommand(a))
	rootCmd.AddCommand(NewAddCommand(a))
	rootCmd.AddCommand(NewDeployCommand(a))
	rootCmd.AddCommand(NewSyncCommand(a))
	rootCmd.AddCommand(NewInitCommand(a))
	rootCmd.AddCommand(NewBuildCommand(a))

	return rootCmd
}

// Execute runs the root command against the real filesystem. Windows style
// /FLAG arguments are accepted as well.
func Execute(args []string, version string) error {
	rootCmd := NewRootCommand(filesystem.NewOSFileSystem(), os.Stderr, version)
	rootCmd.SetArgs(RewriteArgs(rootCmd, args))
	return rootCmd.Execute()
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.opts.noColor {
		DisableColors()
	}

	allowed := level.AllowInfo()
	if a.opts.verbose {
		allowed = level.AllowDebug()
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(a.logOutput))
	a.logger = level.NewFilter(log.With(logger, "cmd", cmd.Name()), allowed)
	return nil
}

func envOr(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func printf(cmd *cobra.Command, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
