package wixproject

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/denormal/go-gitignore"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/wxs"
)

// IgnoreFile lists output files that are never deployed, in gitignore syntax.
// It lives next to the project file.
const IgnoreFile = ".waxignore"

const symbolsExtension = ".pdb"

// DirectoryMapping pairs a deployed directory with its installer id.
type DirectoryMapping struct {
	Path string
	ID   string
	// Node is nil while the directory does not exist in any source file.
	Node *wxs.DirectoryNode
	// Conflict is the path of an earlier directory with the same id. A
	// conflicting directory has no Node and is never created.
	Conflict string
}

// FileMapping pairs a deployed file with its installer id.
type FileMapping struct {
	// Path is relative to the output directory of the deployed project.
	Path string
	ID   string
	// Source is the WiX Source expression of the file.
	Source      string
	ProjectName string
	Node        *wxs.FileNode
	// Conflict names the earlier file (<project>/<path>) with the same id.
	// A conflicting file has no Node and is never created.
	Conflict string
}

// Target returns <project>/<path>, which identifies the file across all
// deployed projects.
func (m FileMapping) Target() string {
	if m.ProjectName == "" {
		return m.Path
	}
	return m.ProjectName + "/" + m.Path
}

// Directory returns the path of the directory containing the file.
func (m FileMapping) Directory() string {
	return parentPath(normalizePath(m.Path))
}

// SourceExpression returns the Source attribute for a file built by
// projectName, relative to the project's TargetDir preprocessor variable.
func SourceExpression(projectName, filePath string) string {
	return fmt.Sprintf("$(var.%s.TargetDir)%s", projectName, strings.ReplaceAll(filePath, "/", "\\"))
}

// FileMappings lists the output files of all deployed projects. Symbol files
// are only included when DeploySymbols is set; files matched by the ignore
// file are skipped. When several files share an id, the first one owns it and
// the others carry a Conflict.
func (p *Project) FileMappings() ([]FileMapping, error) {
	ignore, err := p.loadIgnoreFile()
	if err != nil {
		return nil, err
	}
	deployed, err := p.DeployedProjects()
	if err != nil {
		return nil, err
	}

	var mappings []FileMapping
	owners := make(map[string]string)
	for _, proj := range deployed {
		files, err := proj.OutputFiles()
		if err != nil {
			return nil, fmt.Errorf("listing output of %s: %w", proj.Name(), err)
		}
		for _, file := range files {
			if !p.config.DeploySymbols && strings.EqualFold(path.Ext(file), symbolsExtension) {
				continue
			}
			if isIgnored(ignore, file) {
				level.Debug(p.logger).Log("msg", "ignored", "file", file)
				continue
			}
			id := p.GetFileID(file)
			mapping := FileMapping{
				Path:        file,
				ID:          id,
				Source:      SourceExpression(proj.Name(), file),
				ProjectName: proj.Name(),
			}
			if owner, ok := owners[id]; ok {
				mapping.Conflict = owner
				level.Warn(p.logger).Log("msg", "file id already in use", "id", id, "file", mapping.Target(), "owner", owner)
			} else {
				owners[id] = mapping.Target()
				mapping.Node = p.FindFileNode(id)
			}
			mappings = append(mappings, mapping)
		}
	}
	return mappings, nil
}

// DirectoryMappings lists every directory containing a deployed file,
// shallow directories first.
func (p *Project) DirectoryMappings() ([]DirectoryMapping, error) {
	files, err := p.FileMappings()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var dirs []string
	for _, file := range files {
		for dir := file.Directory(); dir != ""; dir = parentPath(dir) {
			key := strings.ToLower(dir)
			if seen[key] {
				break
			}
			seen[key] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/")
		if di != dj {
			return di < dj
		}
		return strings.ToLower(dirs[i]) < strings.ToLower(dirs[j])
	})

	owners := make(map[string]string)
	mappings := make([]DirectoryMapping, len(dirs))
	for i, dir := range dirs {
		id := p.GetDirectoryID(dir)
		mappings[i] = DirectoryMapping{Path: dir, ID: id}
		if owner, ok := owners[id]; ok {
			mappings[i].Conflict = owner
			level.Warn(p.logger).Log("msg", "directory id already in use", "id", id, "path", dir, "owner", owner)
			continue
		}
		owners[id] = dir
		mappings[i].Node = p.FindDirectoryNode(id)
	}
	return mappings, nil
}

// SyncResult counts the nodes created by Sync.
type SyncResult struct {
	Directories int
	Files       int
	// Conflicts describes the directories and files that were skipped
	// because their id is already used by another one.
	Conflicts []string
}

// Sync creates every missing directory node and file node of the deployed
// projects. Running it again without new output files creates nothing.
// Directories and files with a conflicting id are reported, not created.
func (p *Project) Sync() (SyncResult, error) {
	var result SyncResult

	dirs, err := p.DirectoryMappings()
	if err != nil {
		return result, err
	}
	conflicted := make(map[string]bool)
	for _, dir := range dirs {
		if dir.Conflict != "" {
			conflicted[dir.Path] = true
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("directory %s: id %s is already used by %s", dir.Path, dir.ID, dir.Conflict))
			continue
		}
		if parent := conflictedAncestor(conflicted, parentPath(dir.Path)); parent != "" {
			conflicted[dir.Path] = true
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("directory %s: directory %s has a conflicting id", dir.Path, parent))
			continue
		}
		if p.FindDirectoryNode(dir.ID) != nil {
			continue
		}
		if _, err := p.AddDirectoryNode(dir.Path); err != nil {
			return result, err
		}
		result.Directories++
	}

	files, err := p.FileMappings()
	if err != nil {
		return result, err
	}
	for _, file := range files {
		if file.Conflict != "" {
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("file %s: id %s is already used by %s", file.Target(), file.ID, file.Conflict))
			continue
		}
		if dir := conflictedAncestor(conflicted, file.Directory()); dir != "" {
			result.Conflicts = append(result.Conflicts, fmt.Sprintf("file %s: directory %s has a conflicting id", file.Target(), dir))
			continue
		}
		if p.FindFileNode(file.ID) != nil {
			continue
		}
		if _, err := p.AddFileNode(file); err != nil {
			return result, err
		}
		result.Files++
	}

	level.Info(p.logger).Log("msg", "sync complete", "directories", result.Directories, "files", result.Files, "conflicts", len(result.Conflicts))
	return result, nil
}

// conflictedAncestor returns dir or its nearest ancestor in conflicted.
func conflictedAncestor(conflicted map[string]bool, dir string) string {
	for ; dir != ""; dir = parentPath(dir) {
		if conflicted[dir] {
			return dir
		}
	}
	return ""
}

func (p *Project) loadIgnoreFile() (gitignore.GitIgnore, error) {
	base := filepath.Dir(p.owner.FullName())
	ignorePath := filepath.Join(base, IgnoreFile)
	if !p.fs.Exists(ignorePath) {
		return nil, nil
	}
	data, err := p.fs.ReadFile(ignorePath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ignorePath, err)
	}
	return gitignore.New(bytes.NewReader(data), base, nil), nil
}

// isIgnored checks file and each of its directories against ignore.
func isIgnored(ignore gitignore.GitIgnore, file string) bool {
	if ignore == nil {
		return false
	}
	for dir := parentPath(file); dir != ""; dir = parentPath(dir) {
		if match := ignore.Relative(filepath.FromSlash(dir), true); match != nil && match.Ignore() {
			return true
		}
	}
	match := ignore.Relative(filepath.FromSlash(file), false)
	return match != nil && match.Ignore()
}
