// Package wxs exposes WiX source documents (.wxs and .wxi) as flattened
// collections of directory, file, feature and component group nodes, and
// provides the mutations needed to materialize missing installer structure.
package wxs

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

const (
	SourceExtension  = ".wxs"
	IncludeExtension = ".wxi"
)

const utf8BOM = "\uFEFF"

// IsSourceFile reports whether name is a WiX source or include file.
func IsSourceFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case SourceExtension, IncludeExtension:
		return true
	}
	return false
}

// SourceFile is one parsed WiX document.
type SourceFile struct {
	name    string
	doc     *etree.Document
	changed bool
}

// Parse parses content as a WiX document. The root element must be <Wix> or
// <Include>.
func Parse(name, content string) (*SourceFile, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(strings.TrimPrefix(content, utf8BOM)); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing %s: document has no root element", name)
	}
	if root.Tag != "Wix" && root.Tag != "Include" {
		return nil, fmt.Errorf("parsing %s: unexpected root element <%s>", name, root.Tag)
	}
	return &SourceFile{name: name, doc: doc}, nil
}

// SortSourceFiles orders files by descending extension, so .wxs files come
// before .wxi files. Files with the same extension keep their order.
func SortSourceFiles(files []*SourceFile) {
	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(filepath.Ext(files[i].name)) > strings.ToLower(filepath.Ext(files[j].name))
	})
}

// Name returns the project relative name the file was parsed from.
func (f *SourceFile) Name() string {
	return f.name
}

// HasChanges reports whether the document was modified since it was parsed
// or last marked as saved.
func (f *SourceFile) HasChanges() bool {
	return f.changed
}

// MarkSaved clears the change flag.
func (f *SourceFile) MarkSaved() {
	f.changed = false
}

// String returns the indented XML text of the document.
func (f *SourceFile) String() string {
	f.doc.Indent(2)
	text, err := f.doc.WriteToString()
	if err != nil {
		// writing to a string buffer does not fail
		return ""
	}
	return text
}

// DirectoryNodes returns every Directory and StandardDirectory element in
// document order.
func (f *SourceFile) DirectoryNodes() []*DirectoryNode {
	var nodes []*DirectoryNode
	f.walk(func(el *etree.Element) {
		if el.Tag == "Directory" || el.Tag == "StandardDirectory" {
			nodes = append(nodes, &DirectoryNode{file: f, el: el})
		}
	})
	return nodes
}

// FileNodes returns every File element in document order.
func (f *SourceFile) FileNodes() []*FileNode {
	var nodes []*FileNode
	f.walk(func(el *etree.Element) {
		if el.Tag == "File" {
			nodes = append(nodes, &FileNode{file: f, el: el})
		}
	})
	return nodes
}

// FeatureNodes returns every Feature element in document order.
func (f *SourceFile) FeatureNodes() []*FeatureNode {
	var nodes []*FeatureNode
	f.walk(func(el *etree.Element) {
		if el.Tag == "Feature" {
			nodes = append(nodes, &FeatureNode{file: f, el: el})
		}
	})
	return nodes
}

// ComponentGroups returns every ComponentGroup element in document order.
func (f *SourceFile) ComponentGroups() []*ComponentGroupNode {
	var nodes []*ComponentGroupNode
	f.walk(func(el *etree.Element) {
		if el.Tag == "ComponentGroup" {
			nodes = append(nodes, &ComponentGroupNode{file: f, el: el})
		}
	})
	return nodes
}

// AddDirectory creates a top level directory below a DirectoryRef to
// parentID. The new fragment becomes the first child of the root element.
func (f *SourceFile) AddDirectory(id, name, parentID string) *DirectoryNode {
	fragment := etree.NewElement("Fragment")
	ref := fragment.CreateElement("DirectoryRef")
	ref.CreateAttr("Id", parentID)
	dir := newDirectory(ref, id, name)

	f.doc.Root().InsertChildAt(0, fragment)
	f.changed = true
	return &DirectoryNode{file: f, el: dir}
}

// AddComponentGroup appends a fragment holding a new component group that
// installs into directoryID.
func (f *SourceFile) AddComponentGroup(directoryID string) *ComponentGroupNode {
	fragment := f.doc.Root().CreateElement("Fragment")
	group := fragment.CreateElement("ComponentGroup")
	group.CreateAttr("Id", ComponentGroupID(directoryID))
	group.CreateAttr("Directory", directoryID)
	f.changed = true
	return &ComponentGroupNode{file: f, el: group}
}

// ComponentGroupID returns the id used for the component group of a directory.
func ComponentGroupID(directoryID string) string {
	return "CG_" + directoryID
}

// ComponentID returns the id used for the component wrapping a file.
func ComponentID(fileID string) string {
	return "C_" + fileID
}

func (f *SourceFile) walk(fn func(el *etree.Element)) {
	var visit func(el *etree.Element)
	visit = func(el *etree.Element) {
		fn(el)
		for _, child := range el.ChildElements() {
			visit(child)
		}
	}
	visit(f.doc.Root())
}

func newDirectory(parent *etree.Element, id, name string) *etree.Element {
	dir := parent.CreateElement("Directory")
	dir.CreateAttr("Id", id)
	dir.CreateAttr("Name", name)
	return dir
}
