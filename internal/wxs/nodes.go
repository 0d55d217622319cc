package wxs

import (
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// Node is an identifier bearing WiX element.
type Node interface {
	ID() string
}

var (
	_ Node = (*DirectoryNode)(nil)
	_ Node = (*FileNode)(nil)
	_ Node = (*FeatureNode)(nil)
	_ Node = (*ComponentGroupNode)(nil)
)

// DirectoryNode is a Directory or StandardDirectory element.
type DirectoryNode struct {
	file *SourceFile
	el   *etree.Element
}

// ID returns the Id attribute.
func (n *DirectoryNode) ID() string {
	return n.el.SelectAttrValue("Id", "")
}

// Name returns the Name attribute.
func (n *DirectoryNode) Name() string {
	return n.el.SelectAttrValue("Name", "")
}

// ParentID returns the id of the enclosing Directory, DirectoryRef or
// StandardDirectory, or "" for a top level directory.
func (n *DirectoryNode) ParentID() string {
	for p := n.el.Parent(); p != nil; p = p.Parent() {
		switch p.Tag {
		case "Directory", "DirectoryRef", "StandardDirectory":
			return p.SelectAttrValue("Id", "")
		}
	}
	return ""
}

// SourceFile returns the document that owns the node.
func (n *DirectoryNode) SourceFile() *SourceFile {
	return n.file
}

// AddDirectory appends a child directory.
func (n *DirectoryNode) AddDirectory(id, name string) *DirectoryNode {
	dir := newDirectory(n.el, id, name)
	n.file.changed = true
	return &DirectoryNode{file: n.file, el: dir}
}

// FileNode is a File element.
type FileNode struct {
	file *SourceFile
	el   *etree.Element
}

// ID returns the Id attribute.
func (n *FileNode) ID() string {
	return n.el.SelectAttrValue("Id", "")
}

// Name returns the Name attribute, falling back to the last element of Source.
func (n *FileNode) Name() string {
	if name := n.el.SelectAttrValue("Name", ""); name != "" {
		return name
	}
	return path.Base(strings.ReplaceAll(n.Source(), "\\", "/"))
}

// Source returns the Source attribute.
func (n *FileNode) Source() string {
	return n.el.SelectAttrValue("Source", "")
}

// ComponentID returns the id of the enclosing Component, or "".
func (n *FileNode) ComponentID() string {
	for p := n.el.Parent(); p != nil; p = p.Parent() {
		if p.Tag == "Component" {
			return p.SelectAttrValue("Id", "")
		}
	}
	return ""
}

// SourceFile returns the document that owns the node.
func (n *FileNode) SourceFile() *SourceFile {
	return n.file
}

// FeatureNode is a Feature element.
type FeatureNode struct {
	file *SourceFile
	el   *etree.Element
}

// ID returns the Id attribute.
func (n *FeatureNode) ID() string {
	return n.el.SelectAttrValue("Id", "")
}

// ComponentGroupRefs lists the ids of the direct ComponentGroupRef children.
func (n *FeatureNode) ComponentGroupRefs() []string {
	var ids []string
	for _, ref := range n.el.SelectElements("ComponentGroupRef") {
		ids = append(ids, ref.SelectAttrValue("Id", ""))
	}
	return ids
}

// References reports whether the feature references the component group id.
func (n *FeatureNode) References(groupID string) bool {
	for _, id := range n.ComponentGroupRefs() {
		if id == groupID {
			return true
		}
	}
	return false
}

// AddComponentGroupRef appends a reference to the component group.
func (n *FeatureNode) AddComponentGroupRef(groupID string) {
	ref := n.el.CreateElement("ComponentGroupRef")
	ref.CreateAttr("Id", groupID)
	n.file.changed = true
}

// ComponentGroupNode is a ComponentGroup element.
type ComponentGroupNode struct {
	file *SourceFile
	el   *etree.Element
}

// ID returns the Id attribute.
func (n *ComponentGroupNode) ID() string {
	return n.el.SelectAttrValue("Id", "")
}

// Directory returns the id of the directory the group installs into.
func (n *ComponentGroupNode) Directory() string {
	return n.el.SelectAttrValue("Directory", "")
}

// SourceFile returns the document that owns the node.
func (n *ComponentGroupNode) SourceFile() *SourceFile {
	return n.file
}

// AddFileComponent appends a component with a fresh GUID holding a single
// File element, which is the key path of the component.
func (n *ComponentGroupNode) AddFileComponent(id, name, source string) *FileNode {
	component := n.el.CreateElement("Component")
	component.CreateAttr("Id", ComponentID(id))
	component.CreateAttr("Guid", "{"+strings.ToUpper(uuid.New().String())+"}")

	file := component.CreateElement("File")
	file.CreateAttr("Id", id)
	file.CreateAttr("Name", name)
	file.CreateAttr("Source", source)
	file.CreateAttr("KeyPath", "yes")

	n.file.changed = true
	return &FileNode{file: n.file, el: file}
}
