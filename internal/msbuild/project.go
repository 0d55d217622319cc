// Package msbuild implements the project collaborators on top of MSBuild
// project files (.wixproj, .csproj, ...) stored in a filesystem.
package msbuild

import (
	"bytes"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/project"
)

// DefaultConfiguration is the build configuration whose output is deployed.
const DefaultConfiguration = "Release"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Item tags that describe references rather than files.
var nonFileItems = map[string]bool{
	"ProjectReference":     true,
	"Reference":            true,
	"PackageReference":     true,
	"WixExtension":         true,
	"WixLibrary":           true,
	"BootstrapperFile":     true,
	"Folder":               true,
	"ProjectConfiguration": true,
}

type options struct {
	logger        log.Logger
	configuration string
}

// Option configures project loading.
type Option func(*options)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConfiguration selects the build configuration used by OutputFiles.
func WithConfiguration(configuration string) Option {
	return func(o *options) {
		if configuration != "" {
			o.configuration = configuration
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:        log.NewNopLogger(),
		configuration: DefaultConfiguration,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Item is a file entry of an MSBuild project.
type Item struct {
	name string
}

// Name returns the slash separated path relative to the project directory.
func (i *Item) Name() string {
	return i.name
}

// Project is an MSBuild project file loaded into memory.
type Project struct {
	fs            filesystem.FileSystem
	logger        log.Logger
	path          string
	uniqueName    string
	configuration string

	doc     *etree.Document
	items   []*Item
	buffers map[string]*buffer
	changed bool
}

type buffer struct {
	item    project.Item
	content string
}

var _ project.Project = (*Project)(nil)

// LoadProject reads and parses the project file at path.
func LoadProject(fsys filesystem.FileSystem, path string, opts ...Option) (*Project, error) {
	o := newOptions(opts)

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return nil, fmt.Errorf("parsing project %s: %w", path, err)
	}
	if doc.Root() == nil || doc.Root().Tag != "Project" {
		return nil, fmt.Errorf("parsing project %s: root element is not <Project>", path)
	}

	p := &Project{
		fs:            fsys,
		logger:        log.With(o.logger, "project", filepath.Base(path)),
		path:          path,
		uniqueName:    filepath.Base(path),
		configuration: o.configuration,
		doc:           doc,
		buffers:       make(map[string]*buffer),
	}
	p.items = p.readItems()
	return p, nil
}

func (p *Project) readItems() []*Item {
	var items []*Item
	for _, group := range p.doc.Root().SelectElements("ItemGroup") {
		for _, el := range group.ChildElements() {
			if nonFileItems[el.Tag] {
				continue
			}
			include := el.SelectAttrValue("Include", "")
			if include == "" {
				continue
			}
			if strings.ContainsAny(include, "*?") {
				level.Debug(p.logger).Log("msg", "skipping wildcard item", "include", include)
				continue
			}
			items = append(items, &Item{name: toSlash(include)})
		}
	}
	return items
}

// Name returns the project file name without extension.
func (p *Project) Name() string {
	base := filepath.Base(p.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// UniqueName returns the solution-relative project path.
func (p *Project) UniqueName() string {
	return p.uniqueName
}

// FullName returns the project file path.
func (p *Project) FullName() string {
	return p.path
}

// Dir returns the directory containing the project file.
func (p *Project) Dir() string {
	return filepath.Dir(p.path)
}

// Items returns the file items in document order.
func (p *Project) Items() []project.Item {
	result := make([]project.Item, len(p.items))
	for i, item := range p.items {
		result[i] = item
	}
	return result
}

func (p *Project) itemPath(item project.Item) string {
	return filepath.Join(p.Dir(), filepath.FromSlash(item.Name()))
}

func (p *Project) GetContent(item project.Item) (string, error) {
	if b, ok := p.buffers[strings.ToLower(item.Name())]; ok {
		return b.content, nil
	}
	return p.SavedContent(item)
}

func (p *Project) SetContent(item project.Item, content string) error {
	p.buffers[strings.ToLower(item.Name())] = &buffer{item: item, content: content}
	return nil
}

func (p *Project) SavedContent(item project.Item) (string, error) {
	data, err := p.fs.ReadFile(p.itemPath(item))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", item.Name(), err)
	}
	return string(bytes.TrimPrefix(data, utf8BOM)), nil
}

// AddFromFile registers an existing file. WiX sources become Compile items,
// everything else a Content item.
func (p *Project) AddFromFile(path string) (project.Item, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Dir(), path)
	}
	if !p.fs.Exists(path) {
		return nil, fmt.Errorf("adding %s: %w", path, fs.ErrNotExist)
	}

	rel, err := filepath.Rel(p.Dir(), path)
	if err != nil {
		return nil, fmt.Errorf("adding %s: %w", path, err)
	}
	name := filepath.ToSlash(rel)
	for _, item := range p.items {
		if strings.EqualFold(item.name, name) {
			return item, nil
		}
	}

	tag := "Content"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wxs", ".wxi":
		tag = "Compile"
	}

	group := p.itemGroupFor(tag)
	el := group.CreateElement(tag)
	el.CreateAttr("Include", toBackslash(name))
	p.changed = true

	item := &Item{name: name}
	p.items = append(p.items, item)
	level.Debug(p.logger).Log("msg", "added item", "tag", tag, "include", name)
	return item, nil
}

// itemGroupFor returns the first ItemGroup already holding tag elements,
// creating a new group when there is none.
func (p *Project) itemGroupFor(tag string) *etree.Element {
	root := p.doc.Root()
	for _, group := range root.SelectElements("ItemGroup") {
		if group.SelectAttr("Condition") != nil {
			continue
		}
		if group.SelectElement(tag) != nil {
			return group
		}
	}
	return root.CreateElement("ItemGroup")
}

// OutputDir returns bin/<configuration> below the project directory.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Dir(), "bin", p.configuration)
}

// OutputFiles lists all files below OutputDir.
func (p *Project) OutputFiles() ([]string, error) {
	root := p.OutputDir()
	if !p.fs.Exists(root) {
		return []string{}, nil
	}

	files := []string{}
	err := p.fs.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing output of %s: %w", p.Name(), err)
	}
	sort.Strings(files)
	return files, nil
}

// References returns the absolute paths of all referenced projects.
func (p *Project) References() []string {
	var refs []string
	for _, el := range p.doc.Root().FindElements("./ItemGroup/ProjectReference") {
		refs = append(refs, p.resolveInclude(el.SelectAttrValue("Include", "")))
	}
	return refs
}

func (p *Project) resolveInclude(include string) string {
	return filepath.Clean(filepath.Join(p.Dir(), filepath.FromSlash(toSlash(include))))
}

func (p *Project) addReference(target *Project) bool {
	for _, ref := range p.References() {
		if strings.EqualFold(ref, filepath.Clean(target.path)) {
			return false
		}
	}

	rel, err := filepath.Rel(p.Dir(), target.path)
	if err != nil {
		rel = target.path
	}

	group := p.itemGroupFor("ProjectReference")
	el := group.CreateElement("ProjectReference")
	el.CreateAttr("Include", toBackslash(filepath.ToSlash(rel)))
	el.CreateElement("Name").SetText(target.Name())
	p.changed = true
	return true
}

func (p *Project) removeReference(target *Project) bool {
	removed := false
	for _, el := range p.doc.Root().FindElements("./ItemGroup/ProjectReference") {
		if !strings.EqualFold(p.resolveInclude(el.SelectAttrValue("Include", "")), filepath.Clean(target.path)) {
			continue
		}
		group := el.Parent()
		group.RemoveChild(el)
		if len(group.ChildElements()) == 0 {
			group.Parent().RemoveChild(group)
		}
		removed = true
	}
	if removed {
		p.changed = true
	}
	return removed
}

// Save writes buffered item content that differs from the file on disk and,
// if modified, the project file.
func (p *Project) Save() error {
	names := make([]string, 0, len(p.buffers))
	for name := range p.buffers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b := p.buffers[name]
		if saved, err := p.SavedContent(b.item); err == nil && saved == b.content {
			delete(p.buffers, name)
			continue
		}
		path := p.itemPath(b.item)
		if err := p.fs.WriteFile(path, []byte(b.content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		level.Debug(p.logger).Log("msg", "wrote item", "path", path)
		delete(p.buffers, name)
	}

	if !p.changed {
		return nil
	}

	p.doc.Indent(2)
	data, err := p.doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serializing project %s: %w", p.path, err)
	}
	if err := p.fs.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("writing project %s: %w", p.path, err)
	}
	level.Debug(p.logger).Log("msg", "wrote project file", "path", p.path)
	p.changed = false
	return nil
}

func toSlash(include string) string {
	return strings.ReplaceAll(include, "\\", "/")
}

func toBackslash(name string) string {
	return strings.ReplaceAll(name, "/", "\\")
}
