package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/wixid"
	"github.com/gersonkurz/wax/internal/wxs"
)

// IDCommand handles the id command
type IDCommand struct {
	app *app
}

// NewIDCommand creates a new id command
func NewIDCommand(a *app) *cobra.Command {
	cmd := &IDCommand{app: a}

	return &cobra.Command{
		Use:   "id dir|file PATH",
		Short: "Print the installer id of a deployed directory or file",
		Args:  cobra.ExactArgs(2),
		RunE:  cmd.Run,
	}
}

// Run executes the id command
func (c *IDCommand) Run(cmd *cobra.Command, args []string) error {
	kind, path := args[0], args[1]
	if err := kindArg(kind); err != nil {
		return err
	}

	s, err := c.app.open()
	if err != nil {
		return err
	}

	if kind == "dir" {
		ref := s.project.ResolveDirectory(path)
		if id, ok := ref.ID(); ok {
			printf(cmd, "%s\n", ID(id))
			return nil
		}
		if path == "" || path == "." {
			return fmt.Errorf("%s", ref.Reason())
		}
		printf(cmd, "%s %s\n", ID(s.project.GetDirectoryID(path)), Warning("("+ref.Reason()+")"))
		return nil
	}

	id := s.project.GetFileID(path)
	if s.project.FindFileNode(id) == nil {
		printf(cmd, "%s %s\n", ID(id), Warning("(no file with this id)"))
		return nil
	}
	printf(cmd, "%s\n", ID(id))
	return nil
}

// MapCommand handles the map command
type MapCommand struct {
	app *app
}

// NewMapCommand creates a new map command
func NewMapCommand(a *app) *cobra.Command {
	cmd := &MapCommand{app: a}

	return &cobra.Command{
		Use:   "map dir|file PATH ID",
		Short: "Bind a deployed directory or file to an existing installer id",
		Long: `Overrides the id derived from PATH with ID. The id must belong to a directory
or file that already exists in one of the source files. Mapping a path to its
default id removes the override.`,
		Args: cobra.ExactArgs(3),
		RunE: cmd.Run,
	}
}

// Run executes the map command
func (c *MapCommand) Run(cmd *cobra.Command, args []string) error {
	kind, path, id := args[0], args[1], args[2]
	if err := kindArg(kind); err != nil {
		return err
	}
	if !wixid.IsValid(id) {
		return fmt.Errorf("%q is not a valid id", id)
	}

	s, err := c.app.open()
	if err != nil {
		return err
	}

	var node wxs.Node
	if kind == "dir" {
		if dir := s.project.FindDirectoryNode(id); dir != nil {
			node = dir
		}
	} else if file := s.project.FindFileNode(id); file != nil {
		node = file
	}
	if node == nil {
		return fmt.Errorf("no %s with id %s in any source file", kindName(kind), id)
	}

	if kind == "dir" {
		err = s.project.MapDirectory(path, node)
	} else {
		err = s.project.MapFile(path, node)
	}
	if err != nil {
		return err
	}

	printf(cmd, "%s %s -> %s\n", Success("Mapped"), displayPath(path), ID(id))
	return s.save(cmd)
}

// UnmapCommand handles the unmap command
type UnmapCommand struct {
	app *app
}

// NewUnmapCommand creates a new unmap command
func NewUnmapCommand(a *app) *cobra.Command {
	cmd := &UnmapCommand{app: a}

	return &cobra.Command{
		Use:   "unmap dir|file PATH",
		Short: "Remove the id override of a deployed directory or file",
		Args:  cobra.ExactArgs(2),
		RunE:  cmd.Run,
	}
}

// Run executes the unmap command
func (c *UnmapCommand) Run(cmd *cobra.Command, args []string) error {
	kind, path := args[0], args[1]
	if err := kindArg(kind); err != nil {
		return err
	}

	s, err := c.app.open()
	if err != nil {
		return err
	}

	var id string
	if kind == "dir" {
		err = s.project.UnmapDirectory(path)
		id = s.project.GetDirectoryID(path)
	} else {
		err = s.project.UnmapFile(path)
		id = s.project.GetFileID(path)
	}
	if err != nil {
		return err
	}

	printf(cmd, "%s %s -> %s\n", Success("Unmapped"), displayPath(path), ID(id))
	return s.save(cmd)
}

func kindName(kind string) string {
	if kind == "dir" {
		return "directory"
	}
	return "file"
}
