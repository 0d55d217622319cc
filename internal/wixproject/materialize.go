package wixproject

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-kit/kit/log/level"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/gersonkurz/wax/internal/wxs"
)

// PlaceholderPrefix marks identifiers the user has to replace with a real
// reference.
const PlaceholderPrefix = "TODO_"

const placeholderAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrRootDirectory is returned when asked to create a node for the root path.
var ErrRootDirectory = errors.New("the root directory cannot be created, map it to an existing directory instead")

// ErrDuplicateID is returned when a node would reuse an id that already
// exists in the source files.
var ErrDuplicateID = errors.New("id is already in use")

// IsPlaceholder reports whether id was generated as a placeholder.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

func newPlaceholder() string {
	return PlaceholderPrefix + gonanoid.MustGenerate(placeholderAlphabet, 8)
}

// FindDirectoryNode returns the first directory node with id, or nil.
func (p *Project) FindDirectoryNode(id string) *wxs.DirectoryNode {
	for _, s := range p.sources {
		for _, node := range s.file.DirectoryNodes() {
			if node.ID() == id {
				return node
			}
		}
	}
	return nil
}

// FindFileNode returns the first file node with id, or nil.
func (p *Project) FindFileNode(id string) *wxs.FileNode {
	for _, s := range p.sources {
		for _, node := range s.file.FileNodes() {
			if node.ID() == id {
				return node
			}
		}
	}
	return nil
}

// directoryRef maps a directory path to its effective id. The root path only
// has an id when it is explicitly mapped.
func (p *Project) directoryRef(dirPath string) Ref {
	if dirPath == "" {
		if id, ok := p.config.DirectoryMappings.Get(""); ok {
			return Resolved(id)
		}
		return Unresolved("the root directory is not mapped")
	}
	return Resolved(p.GetDirectoryID(dirPath))
}

// ParentDirectory returns the effective id of the directory containing path.
func (p *Project) ParentDirectory(filePath string) Ref {
	filePath = normalizePath(filePath)
	if filePath == "" {
		return Unresolved("the root directory has no parent")
	}
	return p.directoryRef(parentPath(filePath))
}

// ResolveDirectory returns the id of the directory node for dirPath. The Ref
// is unresolved when no such node exists.
func (p *Project) ResolveDirectory(dirPath string) Ref {
	ref := p.directoryRef(normalizePath(dirPath))
	id, ok := ref.ID()
	if !ok {
		return ref
	}
	if p.FindDirectoryNode(id) == nil {
		return Unresolved(fmt.Sprintf("no directory with id %s", id))
	}
	return ref
}

// AddDirectoryNode creates the directory node for dirPath. When the parent
// directory exists, the node is created below it. Otherwise the node is
// added at the top of the primary source file below a placeholder parent;
// missing ancestors are not created. An id that already exists yields
// ErrDuplicateID.
func (p *Project) AddDirectoryNode(dirPath string) (*wxs.DirectoryNode, error) {
	dirPath = normalizePath(dirPath)
	if dirPath == "" {
		return nil, ErrRootDirectory
	}

	id := p.GetDirectoryID(dirPath)
	if p.FindDirectoryNode(id) != nil {
		return nil, fmt.Errorf("adding directory %s: %s: %w", dirPath, id, ErrDuplicateID)
	}
	name := path.Base(dirPath)

	parent := p.ResolveDirectory(parentPath(dirPath))
	if parentID, ok := parent.ID(); ok {
		level.Debug(p.logger).Log("msg", "adding directory", "id", id, "parent", parentID)
		return p.FindDirectoryNode(parentID).AddDirectory(id, name), nil
	}

	placeholder := newPlaceholder()
	level.Debug(p.logger).Log("msg", "adding top level directory", "id", id, "parent", placeholder, "reason", parent.Reason())
	return p.PrimarySourceFile().AddDirectory(id, name, placeholder), nil
}

// ForceComponentGroup returns the component group installing into
// directoryID, creating it in the primary source file when there is none.
func (p *Project) ForceComponentGroup(directoryID string) *wxs.ComponentGroupNode {
	for _, s := range p.sources {
		for _, group := range s.file.ComponentGroups() {
			if group.Directory() == directoryID {
				return group
			}
		}
	}
	level.Debug(p.logger).Log("msg", "adding component group", "directory", directoryID)
	return p.PrimarySourceFile().AddComponentGroup(directoryID)
}

// ForceFeatureRef makes sure some feature references the component group.
// The reference is added to the first feature. Without any feature nothing
// happens.
func (p *Project) ForceFeatureRef(groupID string) {
	var first *wxs.FeatureNode
	for _, s := range p.sources {
		for _, feature := range s.file.FeatureNodes() {
			if feature.References(groupID) {
				return
			}
			if first == nil {
				first = feature
			}
		}
	}
	if first == nil {
		level.Debug(p.logger).Log("msg", "no feature to reference component group", "group", groupID)
		return
	}
	first.AddComponentGroupRef(groupID)
	level.Debug(p.logger).Log("msg", "added component group reference", "feature", first.ID(), "group", groupID)
}

// AddFileNode creates the component and file node for mapping inside the
// component group of its directory. A directory that does not exist yet is
// referenced through a placeholder id. An id that already exists yields
// ErrDuplicateID.
func (p *Project) AddFileNode(mapping FileMapping) (*wxs.FileNode, error) {
	filePath := normalizePath(mapping.Path)
	if filePath == "" {
		return nil, errors.New("adding file: path is empty")
	}

	id := p.GetFileID(filePath)
	if p.FindFileNode(id) != nil {
		return nil, fmt.Errorf("adding file %s: %s: %w", filePath, id, ErrDuplicateID)
	}
	dirPath := parentPath(filePath)

	dirRef := p.ResolveDirectory(dirPath)
	dirID, ok := dirRef.ID()
	if !ok {
		dirID = PlaceholderPrefix + p.GetDirectoryID(dirPath)
		level.Debug(p.logger).Log("msg", "directory not found", "file", filePath, "placeholder", dirID, "reason", dirRef.Reason())
	}

	group := p.ForceComponentGroup(dirID)
	p.ForceFeatureRef(group.ID())

	src := mapping.Source
	if src == "" {
		src = strings.ReplaceAll(filePath, "/", "\\")
	}
	node := group.AddFileComponent(id, path.Base(filePath), src)
	if node == nil {
		return nil, fmt.Errorf("adding file %s: no node was created", filePath)
	}
	return node, nil
}
