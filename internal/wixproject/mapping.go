package wixproject

import (
	"path"
	"strings"

	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/project"
	"github.com/gersonkurz/wax/internal/wixid"
	"github.com/gersonkurz/wax/internal/wxs"
)

// normalizePath converts path to the slash separated form used as mapping
// key. The root directory is "".
func normalizePath(p string) string {
	p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" || p == "." {
		return ""
	}
	return path.Clean(p)
}

// parentPath returns the directory containing p, "" for top level entries.
func parentPath(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// GetDirectoryID returns the override for the directory path, or its
// default identifier.
func (p *Project) GetDirectoryID(dirPath string) string {
	dirPath = normalizePath(dirPath)
	if id, ok := p.config.DirectoryMappings.Get(dirPath); ok {
		return id
	}
	return wixid.DeriveDefaultID(dirPath)
}

// GetFileID returns the override for the file path, or its default
// identifier.
func (p *Project) GetFileID(filePath string) string {
	filePath = normalizePath(filePath)
	if id, ok := p.config.FileMappings.Get(filePath); ok {
		return id
	}
	return wixid.DeriveDefaultID(filePath)
}

// HasDefaultDirectoryID reports whether the effective id of the directory
// is its default id.
func (p *Project) HasDefaultDirectoryID(dirPath string) bool {
	return p.GetDirectoryID(dirPath) == wixid.DeriveDefaultID(normalizePath(dirPath))
}

// HasDefaultFileID reports whether the effective id of the file is its
// default id.
func (p *Project) HasDefaultFileID(filePath string) bool {
	return p.GetFileID(filePath) == wixid.DeriveDefaultID(normalizePath(filePath))
}

// MapDirectory binds the directory path to node. Binding a path to the node
// carrying its default id removes the override instead.
func (p *Project) MapDirectory(dirPath string, node wxs.Node) error {
	dirPath = normalizePath(dirPath)
	if node.ID() == wixid.DeriveDefaultID(dirPath) {
		p.config.DirectoryMappings.Remove(dirPath)
	} else {
		p.config.DirectoryMappings.Set(dirPath, node.ID())
	}
	return p.saveProjectConfiguration()
}

// MapFile binds the file path to node. Binding a path to the node carrying
// its default id removes the override instead.
func (p *Project) MapFile(filePath string, node wxs.Node) error {
	filePath = normalizePath(filePath)
	if node.ID() == wixid.DeriveDefaultID(filePath) {
		p.config.FileMappings.Remove(filePath)
	} else {
		p.config.FileMappings.Set(filePath, node.ID())
	}
	return p.saveProjectConfiguration()
}

// UnmapDirectory removes the override of the directory path.
func (p *Project) UnmapDirectory(dirPath string) error {
	p.config.DirectoryMappings.Remove(normalizePath(dirPath))
	return p.saveProjectConfiguration()
}

// UnmapFile removes the override of the file path.
func (p *Project) UnmapFile(filePath string) error {
	p.config.FileMappings.Remove(normalizePath(filePath))
	return p.saveProjectConfiguration()
}

// DeployedProjects returns the projects of the solution listed in the
// configuration, in solution order.
func (p *Project) DeployedProjects() ([]project.Project, error) {
	all, err := p.solution.Projects()
	if err != nil {
		return nil, err
	}

	var deployed []project.Project
	for _, proj := range all {
		if p.config.IsDeployed(proj.UniqueName()) {
			deployed = append(deployed, proj)
		}
	}
	return deployed, nil
}

// SetDeployedProjects replaces the deployed projects. References to projects
// no longer deployed are removed, references to newly deployed projects are
// added.
func (p *Project) SetDeployedProjects(projects []project.Project) error {
	previous, err := p.DeployedProjects()
	if err != nil {
		return err
	}
	wasDeployed := make(map[string]bool, len(previous))
	for _, proj := range previous {
		wasDeployed[strings.ToLower(proj.UniqueName())] = true
	}

	names := make([]string, 0, len(projects))
	for _, proj := range projects {
		names = append(names, proj.UniqueName())
	}
	p.config.SetDeployedProjectNames(names)

	for _, proj := range previous {
		if p.config.IsDeployed(proj.UniqueName()) {
			continue
		}
		if err := p.solution.RemoveReference(p.owner, proj); err != nil {
			return err
		}
		level.Debug(p.logger).Log("msg", "no longer deployed", "project", proj.UniqueName())
	}

	added := make(map[string]bool)
	for _, proj := range projects {
		key := strings.ToLower(proj.UniqueName())
		if wasDeployed[key] || added[key] {
			continue
		}
		added[key] = true
		if err := p.solution.AddReference(p.owner, proj); err != nil {
			return err
		}
		level.Debug(p.logger).Log("msg", "now deployed", "project", proj.UniqueName())
	}

	return p.saveProjectConfiguration()
}

// SetDeploySymbols controls whether .pdb files are part of the file mappings.
func (p *Project) SetDeploySymbols(deploy bool) error {
	p.config.DeploySymbols = deploy
	return p.saveProjectConfiguration()
}
