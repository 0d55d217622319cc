package cli

import (
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/wix"
)

// BuildCommand handles the build command
type BuildCommand struct {
	app *app
}

// NewBuildCommand creates a new build command
func NewBuildCommand(a *app) *cobra.Command {
	cmd := &BuildCommand{app: a}

	cobraCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the MSI package with the WiX CLI",
		Long: `Runs wix build on the source files of the installer project. Every deployed
project is passed as a <Name>.TargetDir preprocessor variable.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}

	cobraCmd.Flags().StringP("output", "o", "", "output file (default: <output dir>/<project>.msi)")
	cobraCmd.Flags().String("arch", "", "target architecture: x86, x64 or arm64")
	cobraCmd.Flags().StringSlice("ext", nil, "WiX extensions to load")
	cobraCmd.Flags().Bool("print", false, "print the wix command line instead of running it")

	return cobraCmd
}

// Run executes the build command
func (c *BuildCommand) Run(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	arch, _ := cmd.Flags().GetString("arch")
	extensions, _ := cmd.Flags().GetStringSlice("ext")
	printOnly, _ := cmd.Flags().GetBool("print")

	s, err := c.app.open()
	if err != nil {
		return err
	}

	if dirty, err := s.project.HasChanges(); err != nil {
		return err
	} else if dirty {
		level.Warn(c.app.logger).Log("msg", "project has unsaved changes, building the saved state")
	}

	if output != "" {
		if output, err = c.app.absPath(output); err != nil {
			return err
		}
	}

	builder, err := wix.NewBuilder(s.project, output, arch, c.app.logger)
	if err != nil {
		return err
	}
	builder.Extensions = extensions
	builder.Stdout = cmd.OutOrStdout()
	builder.Stderr = cmd.ErrOrStderr()

	if printOnly {
		printf(cmd, "%s", wix.GetWixPath())
		for _, arg := range builder.Args() {
			printf(cmd, " %s", arg)
		}
		printf(cmd, "\n")
		return nil
	}

	if err := builder.Build(); err != nil {
		return err
	}
	printf(cmd, "%s %s\n", Success("Built"), Filename(builder.OutputFile))
	return nil
}
