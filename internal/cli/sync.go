package cli

import (
	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/wixproject"
)

// SyncCommand handles the sync command
type SyncCommand struct {
	app *app
}

// NewSyncCommand creates a new sync command
func NewSyncCommand(a *app) *cobra.Command {
	cmd := &SyncCommand{app: a}

	cobraCmd := &cobra.Command{
		Use:   "sync",
		Short: "Create all missing directory and file nodes",
		Long: `Creates a node for every deployed directory and file that has none yet. Use
--dry-run to list what would be created.`,
		Args: cobra.NoArgs,
		RunE: cmd.Run,
	}
	cobraCmd.Flags().Bool("dry-run", false, "list missing nodes without changing anything")

	return cobraCmd
}

// Run executes the sync command
func (c *SyncCommand) Run(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := c.app.open()
	if err != nil {
		return err
	}

	if dryRun {
		return c.preview(cmd, s.project)
	}

	result, err := s.project.Sync()
	if err != nil {
		return err
	}
	for _, conflict := range result.Conflicts {
		printf(cmd, "%s %s\n", Error("!"), conflict)
	}
	if result.Directories+result.Files == 0 {
		if len(result.Conflicts) == 0 {
			printf(cmd, "%s\n", Success("Up to date"))
		}
		return nil
	}
	printf(cmd, "%s %s directories and %s files\n", Success("Added"), Number(result.Directories), Number(result.Files))
	c.reportPlaceholders(cmd, s.project)
	return s.save(cmd)
}

func (c *SyncCommand) preview(cmd *cobra.Command, p *wixproject.Project) error {
	dirs, err := p.DirectoryMappings()
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		switch {
		case dir.Conflict != "":
			printf(cmd, "%s directory %s: id %s is already used by %s\n", Error("!"), dir.Path, ID(dir.ID), dir.Conflict)
		case dir.Node == nil && dir.Path != "":
			printf(cmd, "directory %-40s %s\n", dir.Path, ID(dir.ID))
		}
	}

	files, err := p.FileMappings()
	if err != nil {
		return err
	}
	for _, file := range files {
		switch {
		case file.Conflict != "":
			printf(cmd, "%s file %s: id %s is already used by %s\n", Error("!"), file.Target(), ID(file.ID), file.Conflict)
		case file.Node == nil:
			printf(cmd, "file      %-40s %s\n", file.Path, ID(file.ID))
		}
	}
	return nil
}

// reportPlaceholders lists directories whose parent could not be resolved.
func (c *SyncCommand) reportPlaceholders(cmd *cobra.Command, p *wixproject.Project) {
	for _, file := range p.SourceFiles() {
		for _, dir := range file.DirectoryNodes() {
			if wixproject.IsPlaceholder(dir.ParentID()) {
				printf(cmd, "%s directory %s has placeholder parent %s\n", Warning("!"), ID(dir.ID()), ID(dir.ParentID()))
			}
		}
		for _, group := range file.ComponentGroups() {
			if wixproject.IsPlaceholder(group.Directory()) {
				printf(cmd, "%s component group %s installs into placeholder %s\n", Warning("!"), ID(group.ID()), ID(group.Directory()))
			}
		}
	}
}
