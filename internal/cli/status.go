package cli

import (
	"github.com/spf13/cobra"
)

// StatusCommand handles the status command
type StatusCommand struct {
	app *app
}

// NewStatusCommand creates a new status command
func NewStatusCommand(a *app) *cobra.Command {
	cmd := &StatusCommand{app: a}

	return &cobra.Command{
		Use:   "status",
		Short: "Show deployed projects and their installer ids",
		Long: `Lists the deployed projects, then every deployed directory and file with its
installer id. Entries without a node in any source file are marked missing.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}
}

// Run executes the status command
func (c *StatusCommand) Run(cmd *cobra.Command, args []string) error {
	s, err := c.app.open()
	if err != nil {
		return err
	}
	p := s.project

	printf(cmd, "%s %s\n", Bold("Project:"), Filename(p.Owner().UniqueName()))
	for _, file := range p.SourceFiles() {
		printf(cmd, "  %s\n", Filename(file.Name()))
	}

	deployed, err := p.DeployedProjects()
	if err != nil {
		return err
	}
	printf(cmd, "\n%s %s\n", Bold("Deployed projects:"), Number(len(deployed)))
	for _, proj := range deployed {
		printf(cmd, "  %s\n", Filename(proj.UniqueName()))
	}
	if len(deployed) == 0 {
		return nil
	}

	dirs, err := p.DirectoryMappings()
	if err != nil {
		return err
	}
	missingDirs, conflicts := 0, 0
	printf(cmd, "\n%s\n", Bold("Directories:"))
	for _, dir := range dirs {
		printf(cmd, "  %-40s %s%s\n", displayPath(dir.Path), ID(dir.ID), marker(dir.Node == nil, p.HasDefaultDirectoryID(dir.Path), dir.Conflict))
		switch {
		case dir.Conflict != "":
			conflicts++
		case dir.Node == nil:
			missingDirs++
		}
	}

	files, err := p.FileMappings()
	if err != nil {
		return err
	}
	missingFiles := 0
	printf(cmd, "\n%s\n", Bold("Files:"))
	for _, file := range files {
		printf(cmd, "  %-40s %s%s\n", file.Target(), ID(file.ID), marker(file.Node == nil, p.HasDefaultFileID(file.Path), file.Conflict))
		switch {
		case file.Conflict != "":
			conflicts++
		case file.Node == nil:
			missingFiles++
		}
	}

	if conflicts > 0 {
		printf(cmd, "\n%s %s ids are used more than once, resolve them with %s\n",
			Error("!"), Number(conflicts), Bold("wax map"))
	}
	if missingDirs+missingFiles > 0 {
		printf(cmd, "\n%s %s directories and %s files are missing, run %s\n",
			Warning("!"), Number(missingDirs), Number(missingFiles), Bold("wax sync"))
	} else if conflicts == 0 {
		printf(cmd, "\n%s\n", Success("Up to date"))
	}
	return nil
}

func marker(missing, isDefault bool, conflict string) string {
	result := ""
	if !isDefault {
		result += " " + Info("(mapped)")
	}
	switch {
	case conflict != "":
		result += " " + Error("conflicts with "+conflict)
	case missing:
		result += " " + Error("missing")
	}
	return result
}

func displayPath(path string) string {
	if path == "" {
		return "."
	}
	return path
}
