package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/template"
	"github.com/gersonkurz/wax/internal/variables"
)

// InitCommand handles the init command
type InitCommand struct {
	app *app
}

// NewInitCommand creates a new init command
func NewInitCommand(a *app) *cobra.Command {
	cmd := &InitCommand{app: a}

	cobraCmd := &cobra.Command{
		Use:   "init NAME",
		Short: "Create a new WiX installer project",
		Long: `Creates NAME.wixproj and Product.wxs in a new directory and maps the root of
the deployed output to the install folder.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().String("dir", "", "target directory (default: ./NAME)")
	cobraCmd.Flags().String("manufacturer", "", "manufacturer of the product")
	cobraCmd.Flags().String("version", "", "product version (default: 1.0.0.0)")
	cobraCmd.Flags().StringArray("set", nil, "set a scaffold variable, NAME=VALUE")
	cobraCmd.Flags().String("templates", "", "folder with templates overriding the built-in scaffold")

	return cobraCmd
}

// Run executes the init command
func (c *InitCommand) Run(cmd *cobra.Command, args []string) error {
	name := args[0]
	dir, _ := cmd.Flags().GetString("dir")
	manufacturer, _ := cmd.Flags().GetString("manufacturer")
	version, _ := cmd.Flags().GetString("version")
	assignments, _ := cmd.Flags().GetStringArray("set")
	templates, _ := cmd.Flags().GetString("templates")

	vars := variables.New()
	vars.Set("PRODUCT_NAME", name)
	if manufacturer != "" {
		vars.Set("MANUFACTURER", manufacturer)
	}
	if version != "" {
		vars.Set("PRODUCT_VERSION", version)
	}
	for _, assignment := range assignments {
		if err := vars.ParseAssignment(assignment); err != nil {
			return err
		}
	}
	if err := vars.Validate(); err != nil {
		return err
	}

	if dir == "" {
		dir = name
	}
	dir, err := c.app.absPath(dir)
	if err != nil {
		return err
	}

	renderer := template.NewRenderer(c.app.fs, vars, name, templates)
	written, err := renderer.Write(dir)
	if err != nil {
		return err
	}
	for _, path := range written {
		printf(cmd, "%s %s\n", Success("Created"), Filename(path))
	}
	if vars.Manufacturer() == "" {
		printf(cmd, "%s no manufacturer set, fill in the Manufacturer attribute of Product.wxs\n", Warning("!"))
	}

	c.app.opts.project = filepath.Join(dir, name+".wixproj")
	s, err := c.app.open()
	if err != nil {
		return fmt.Errorf("loading new project: %w", err)
	}

	installDir := s.project.FindDirectoryNode(template.InstallDirID)
	if installDir == nil {
		printf(cmd, "%s no directory %s, map the output root with %s\n", Warning("!"), ID(template.InstallDirID), Bold("wax map dir . ID"))
		return s.save(cmd)
	}
	if err := s.project.MapDirectory("", installDir); err != nil {
		return err
	}
	printf(cmd, "%s %s -> %s\n", Success("Mapped"), displayPath(""), ID(installDir.ID()))

	if err := s.save(cmd); err != nil {
		return err
	}
	printf(cmd, "\nNext: %s, then %s\n", Bold("wax deploy NAME"), Bold("wax sync"))
	return nil
}
