// Package wixproject reconciles a WiX installer project with its sidecar
// configuration and the build output of the projects it deploys. It resolves
// installer identifiers for paths and creates missing directories, component
// groups, feature references and file components on demand.
package wixproject

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/config"
	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/project"
	"github.com/gersonkurz/wax/internal/wxs"
)

// ErrNoSourceFiles is returned by Load for a project without .wxs or .wxi
// items.
var ErrNoSourceFiles = errors.New("project has no WiX source files")

// Option configures a Project.
type Option func(*Project)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(p *Project) {
		p.logger = logger
	}
}

// Project is a loaded WiX installer project.
type Project struct {
	fs       filesystem.FileSystem
	solution project.Solution
	owner    project.Project
	logger   log.Logger

	config  *config.ProjectConfiguration
	sidecar project.Item
	sources []*source
}

type source struct {
	item project.Item
	file *wxs.SourceFile
}

// Load reads the sidecar configuration of owner, creating it when missing,
// and parses all WiX source files of the project.
func Load(fsys filesystem.FileSystem, solution project.Solution, owner project.Project, opts ...Option) (*Project, error) {
	p := &Project{
		fs:       fsys,
		solution: solution,
		owner:    owner,
		logger:   log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.loadConfiguration(); err != nil {
		return nil, err
	}
	if err := p.loadSourceFiles(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Project) loadConfiguration() error {
	for _, item := range p.owner.Items() {
		if strings.EqualFold(filepath.Ext(item.Name()), config.Extension) {
			p.sidecar = item
			break
		}
	}

	if p.sidecar == nil {
		item, err := p.createSidecar()
		if err != nil {
			return err
		}
		p.sidecar = item
	}

	text, err := p.owner.GetContent(p.sidecar)
	if err != nil {
		return fmt.Errorf("reading configuration of %s: %w", p.owner.Name(), err)
	}
	cfg, err := config.Deserialize(text)
	if err != nil {
		return fmt.Errorf("loading configuration of %s: %w", p.owner.Name(), err)
	}
	p.config = cfg
	return nil
}

func (p *Project) createSidecar() (project.Item, error) {
	text, err := config.Serialize(config.New())
	if err != nil {
		return nil, err
	}

	fullName := p.owner.FullName()
	path := strings.TrimSuffix(fullName, filepath.Ext(fullName)) + config.Extension
	if err := p.fs.WriteFile(path, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("creating configuration %s: %w", path, err)
	}

	item, err := p.owner.AddFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("adding configuration %s: %w", path, err)
	}
	if err := p.owner.Save(); err != nil {
		return nil, fmt.Errorf("saving %s: %w", p.owner.Name(), err)
	}
	level.Info(p.logger).Log("msg", "created configuration", "path", path)
	return item, nil
}

func (p *Project) loadSourceFiles() error {
	var files []*wxs.SourceFile
	items := make(map[*wxs.SourceFile]project.Item)

	for _, item := range p.owner.Items() {
		if !wxs.IsSourceFile(item.Name()) {
			continue
		}
		content, err := p.owner.GetContent(item)
		if err != nil {
			return fmt.Errorf("reading %s: %w", item.Name(), err)
		}
		file, err := wxs.Parse(item.Name(), content)
		if err != nil {
			return err
		}
		files = append(files, file)
		items[file] = item
	}

	if len(files) == 0 {
		return fmt.Errorf("%s: %w", p.owner.Name(), ErrNoSourceFiles)
	}

	wxs.SortSourceFiles(files)
	for _, file := range files {
		p.sources = append(p.sources, &source{item: items[file], file: file})
	}
	level.Debug(p.logger).Log("msg", "loaded source files", "project", p.owner.Name(), "count", len(files))
	return nil
}

// Owner returns the project collaborator the engine works on.
func (p *Project) Owner() project.Project {
	return p.owner
}

// Configuration returns the in-memory sidecar configuration.
func (p *Project) Configuration() *config.ProjectConfiguration {
	return p.config
}

// SourceFiles returns the parsed WiX documents, .wxs files first.
func (p *Project) SourceFiles() []*wxs.SourceFile {
	files := make([]*wxs.SourceFile, len(p.sources))
	for i, s := range p.sources {
		files[i] = s.file
	}
	return files
}

// PrimarySourceFile is the document new top level elements are added to.
func (p *Project) PrimarySourceFile() *wxs.SourceFile {
	return p.sources[0].file
}

// HasChanges reports whether the configuration differs from the stored
// sidecar or any source file has unsaved modifications.
func (p *Project) HasChanges() (bool, error) {
	text, err := config.Serialize(p.config)
	if err != nil {
		return false, err
	}
	saved, err := p.owner.SavedContent(p.sidecar)
	if err != nil {
		return false, fmt.Errorf("reading configuration of %s: %w", p.owner.Name(), err)
	}
	if text != saved {
		return true, nil
	}

	for _, s := range p.sources {
		if s.file.HasChanges() {
			return true, nil
		}
	}
	return false, nil
}

// saveProjectConfiguration hands the serialized configuration to the owner,
// unless it matches the current content of the sidecar. A configuration
// that is back to the stored text is still handed over, and the owner skips
// writing it.
func (p *Project) saveProjectConfiguration() error {
	text, err := config.Serialize(p.config)
	if err != nil {
		return err
	}
	current, err := p.owner.GetContent(p.sidecar)
	if err != nil {
		return fmt.Errorf("reading configuration of %s: %w", p.owner.Name(), err)
	}
	if text == current {
		return nil
	}
	if err := p.owner.SetContent(p.sidecar, text); err != nil {
		return fmt.Errorf("updating configuration of %s: %w", p.owner.Name(), err)
	}
	level.Debug(p.logger).Log("msg", "configuration updated", "item", p.sidecar.Name())
	return nil
}

// Save writes the configuration and all modified source files.
func (p *Project) Save() error {
	if err := p.saveProjectConfiguration(); err != nil {
		return err
	}

	var written []*source
	for _, s := range p.sources {
		if !s.file.HasChanges() {
			continue
		}
		if err := p.owner.SetContent(s.item, s.file.String()); err != nil {
			return fmt.Errorf("updating %s: %w", s.item.Name(), err)
		}
		written = append(written, s)
	}

	if err := p.owner.Save(); err != nil {
		return fmt.Errorf("saving %s: %w", p.owner.Name(), err)
	}
	for _, s := range written {
		s.file.MarkSaved()
		level.Info(p.logger).Log("msg", "saved source file", "file", s.item.Name())
	}
	return nil
}
