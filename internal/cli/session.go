package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/msbuild"
	"github.com/gersonkurz/wax/internal/wixproject"
)

type globalOptions struct {
	project       string
	solution      string
	configuration string
	verbose       bool
	noColor       bool
}

// app is the state shared by all commands.
type app struct {
	fs        filesystem.FileSystem
	logOutput io.Writer
	logger    log.Logger
	opts      globalOptions
}

// session is a loaded installer project and the solution it belongs to.
type session struct {
	solution *msbuild.Solution
	project  *wixproject.Project
}

func (a *app) absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	cwd, err := a.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}

// projectPath returns --project, or the only .wixproj in the working
// directory.
func (a *app) projectPath() (string, error) {
	if a.opts.project != "" {
		path, err := a.absPath(a.opts.project)
		if err != nil {
			return "", err
		}
		if !a.fs.Exists(path) {
			return "", fmt.Errorf("project %s not found", path)
		}
		return path, nil
	}

	cwd, err := a.fs.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	matches, err := a.fs.Glob(filepath.Join(cwd, "*.wixproj"))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no .wixproj found in %s, use --project", cwd)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d .wixproj files found in %s, use --project", len(matches), cwd)
	}
}

// open loads the solution and the installer project.
func (a *app) open() (*session, error) {
	path, err := a.projectPath()
	if err != nil {
		return nil, err
	}

	root := a.opts.solution
	if root == "" {
		root = msbuild.FindSolutionRoot(a.fs, path)
	} else if root, err = a.absPath(root); err != nil {
		return nil, err
	}

	opts := []msbuild.Option{
		msbuild.WithLogger(a.logger),
		msbuild.WithConfiguration(a.opts.configuration),
	}
	solution, err := msbuild.NewSolution(a.fs, root, opts...)
	if err != nil {
		return nil, err
	}

	owner := solution.ProjectByPath(path)
	if owner == nil {
		// ignored by .gitignore or outside of the solution root
		if owner, err = msbuild.LoadProject(a.fs, path, opts...); err != nil {
			return nil, err
		}
	}

	p, err := wixproject.Load(a.fs, solution, owner, wixproject.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return &session{solution: solution, project: p}, nil
}

// save writes pending changes and reports them.
func (s *session) save(cmd *cobra.Command) error {
	changed, err := s.project.HasChanges()
	if err != nil {
		return err
	}
	if err := s.project.Save(); err != nil {
		return err
	}
	if changed {
		printf(cmd, "%s %s\n", Success("Saved"), Filename(s.project.Owner().UniqueName()))
	}
	return nil
}

// kindArg validates the dir|file argument of id, map and unmap.
func kindArg(kind string) error {
	switch kind {
	case "dir", "file":
		return nil
	}
	return fmt.Errorf("unknown kind %q, expected dir or file", kind)
}
