package cli

import (
	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/wixproject"
)

// AddCommand handles the add command
type AddCommand struct {
	app *app
}

// NewAddCommand creates the add command with its dir and file subcommands
func NewAddCommand(a *app) *cobra.Command {
	cmd := &AddCommand{app: a}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a single directory or file node",
	}

	addCmd.AddCommand(&cobra.Command{
		Use:   "dir PATH",
		Short: "Create the directory node of a deployed directory",
		Long: `Creates the directory below its parent directory node. When the parent does
not exist the directory is added to the primary source file below a TODO_
placeholder parent that has to be fixed by hand.`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.RunDir,
	})

	fileCmd := &cobra.Command{
		Use:   "file PATH",
		Short: "Create the component and file node of a deployed file",
		Args:  cobra.ExactArgs(1),
		RunE:  cmd.RunFile,
	}
	fileCmd.Flags().String("source", "", "Source attribute of the file (default: derived from --project-name)")
	fileCmd.Flags().String("project-name", "", "deployed project that builds the file")
	addCmd.AddCommand(fileCmd)

	return addCmd
}

// RunDir executes add dir
func (c *AddCommand) RunDir(cmd *cobra.Command, args []string) error {
	s, err := c.app.open()
	if err != nil {
		return err
	}

	node, err := s.project.AddDirectoryNode(args[0])
	if err != nil {
		return err
	}
	printf(cmd, "%s directory %s in %s\n", Success("Added"), ID(node.ID()), Filename(node.SourceFile().Name()))
	if wixproject.IsPlaceholder(node.ParentID()) {
		printf(cmd, "%s parent %s needs to be replaced\n", Warning("!"), ID(node.ParentID()))
	}
	return s.save(cmd)
}

// RunFile executes add file
func (c *AddCommand) RunFile(cmd *cobra.Command, args []string) error {
	source, _ := cmd.Flags().GetString("source")
	projectName, _ := cmd.Flags().GetString("project-name")

	s, err := c.app.open()
	if err != nil {
		return err
	}

	mapping := wixproject.FileMapping{
		Path:        args[0],
		ID:          s.project.GetFileID(args[0]),
		Source:      source,
		ProjectName: projectName,
	}
	if mapping.Source == "" && projectName != "" {
		mapping.Source = wixproject.SourceExpression(projectName, args[0])
	}

	node, err := s.project.AddFileNode(mapping)
	if err != nil {
		return err
	}
	printf(cmd, "%s file %s in %s\n", Success("Added"), ID(node.ID()), Filename(node.SourceFile().Name()))
	if dir := s.project.ResolveDirectory(mapping.Directory()); !dir.IsResolved() {
		printf(cmd, "%s %s\n", Warning("!"), dir.Reason())
	}
	return s.save(cmd)
}
