package msbuild

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/project"
)

// ProjectExtensions are the project file types discovered in a solution.
var ProjectExtensions = []string{".wixproj", ".csproj", ".vbproj", ".fsproj", ".vcxproj"}

// Directories never searched for projects.
var skippedDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	"node_modules": true,
}

// Solution is the set of project files found below a root directory.
type Solution struct {
	fs       filesystem.FileSystem
	opts     options
	Root     string
	projects []*Project
}

var _ project.Solution = (*Solution)(nil)

// NewSolution discovers all projects below root, honoring root/.gitignore.
func NewSolution(fsys filesystem.FileSystem, root string, opts ...Option) (*Solution, error) {
	s := &Solution{
		fs:   fsys,
		opts: newOptions(opts),
		Root: filepath.Clean(root),
	}
	if err := s.discover(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Solution) discover() error {
	ignore, err := s.loadGitIgnore()
	if err != nil {
		return err
	}

	var paths []string
	err = s.fs.WalkDir(s.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == s.Root {
			return nil
		}

		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		if d.IsDir() && skippedDirs[strings.ToLower(d.Name())] {
			return fs.SkipDir
		}
		if ignore != nil {
			if match := ignore.Relative(rel, d.IsDir()); match != nil && match.Ignore() {
				level.Debug(s.opts.logger).Log("msg", "ignored", "path", rel)
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
		}
		if !d.IsDir() && isProjectFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("discovering projects in %s: %w", s.Root, err)
	}

	for _, path := range paths {
		p, err := LoadProject(s.fs, path, WithLogger(s.opts.logger), WithConfiguration(s.opts.configuration))
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(s.Root, path)
		p.uniqueName = filepath.ToSlash(rel)
		s.projects = append(s.projects, p)
	}
	level.Debug(s.opts.logger).Log("msg", "discovered projects", "root", s.Root, "count", len(s.projects))
	return nil
}

func (s *Solution) loadGitIgnore() (gitignore.GitIgnore, error) {
	ignorePath := filepath.Join(s.Root, ".gitignore")
	if !s.fs.Exists(ignorePath) {
		return nil, nil
	}

	data, err := s.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}
	return gitignore.New(bytes.NewReader(data), s.Root, nil), nil
}

func isProjectFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ProjectExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Projects returns all discovered projects in path order.
func (s *Solution) Projects() ([]project.Project, error) {
	result := make([]project.Project, len(s.projects))
	for i, p := range s.projects {
		result[i] = p
	}
	return result, nil
}

// ProjectByPath returns the project whose file is path, or nil.
func (s *Solution) ProjectByPath(path string) *Project {
	clean := filepath.Clean(path)
	for _, p := range s.projects {
		if strings.EqualFold(filepath.Clean(p.path), clean) {
			return p
		}
	}
	return nil
}

// Find returns the project matching name, either as unique name or as
// short name, or nil.
func (s *Solution) Find(name string) *Project {
	for _, p := range s.projects {
		if strings.EqualFold(p.uniqueName, name) {
			return p
		}
	}
	for _, p := range s.projects {
		if strings.EqualFold(p.Name(), name) {
			return p
		}
	}
	return nil
}

// WixProjects returns all .wixproj projects.
func (s *Solution) WixProjects() []*Project {
	var result []*Project
	for _, p := range s.projects {
		if strings.EqualFold(filepath.Ext(p.path), ".wixproj") {
			result = append(result, p)
		}
	}
	return result
}

// AddReference adds a ProjectReference from owner to target.
func (s *Solution) AddReference(owner, target project.Project) error {
	o, t, err := s.pair(owner, target)
	if err != nil {
		return err
	}
	if o.addReference(t) {
		level.Info(s.opts.logger).Log("msg", "added project reference", "owner", o.uniqueName, "target", t.uniqueName)
	}
	return nil
}

// RemoveReference removes every ProjectReference from owner to target.
func (s *Solution) RemoveReference(owner, target project.Project) error {
	o, t, err := s.pair(owner, target)
	if err != nil {
		return err
	}
	if o.removeReference(t) {
		level.Info(s.opts.logger).Log("msg", "removed project reference", "owner", o.uniqueName, "target", t.uniqueName)
	}
	return nil
}

func (s *Solution) pair(owner, target project.Project) (*Project, *Project, error) {
	o, ok := owner.(*Project)
	if !ok {
		return nil, nil, fmt.Errorf("project %s is not an MSBuild project", owner.UniqueName())
	}
	t, ok := target.(*Project)
	if !ok {
		return nil, nil, fmt.Errorf("project %s is not an MSBuild project", target.UniqueName())
	}
	return o, t, nil
}

// FindSolutionRoot returns the nearest ancestor of the project directory that
// contains a .sln file. Without one, the parent of the project directory is used.
func FindSolutionRoot(fsys filesystem.FileSystem, projectPath string) string {
	projectDir := filepath.Dir(filepath.Clean(projectPath))

	dir := projectDir
	for {
		if matches, err := fsys.Glob(filepath.Join(dir, "*.sln")); err == nil && len(matches) > 0 {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Dir(projectDir)
}
