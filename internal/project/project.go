// Package project defines the host collaborators the reconciliation engine
// talks to: project items with live and saved content, and the solution the
// installer project lives in.
package project

// Item is a file registered with a project.
type Item interface {
	// Name is the path of the item relative to the project directory.
	Name() string
}

// Project is one project of a solution.
type Project interface {
	// Name is the short display name, usually the project file name
	// without extension.
	Name() string
	// UniqueName identifies the project within its solution.
	UniqueName() string
	// FullName is the absolute path of the project file.
	FullName() string

	Items() []Item

	// GetContent returns the live content of item, including edits made
	// through SetContent that have not been saved yet.
	GetContent(item Item) (string, error)
	SetContent(item Item, content string) error
	// SavedContent returns the content of item as it is stored.
	SavedContent(item Item) (string, error)

	// AddFromFile registers an existing file as a project item.
	AddFromFile(path string) (Item, error)

	// OutputFiles lists the build output of the project, relative to its
	// output directory, slash separated and sorted.
	OutputFiles() ([]string, error)

	// OutputDir is the directory OutputFiles are relative to.
	OutputDir() string

	// Save writes all pending edits. Items whose pending content equals the
	// stored content are not rewritten.
	Save() error
}

// Solution is the set of sibling projects.
type Solution interface {
	Projects() ([]Project, error)
	AddReference(owner, target Project) error
	RemoveReference(owner, target Project) error
}
