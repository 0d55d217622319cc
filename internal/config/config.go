// Package config holds the per-project sidecar configuration: identifier
// overrides for directories and files, the deployed project list and the
// symbol deployment flag.
package config

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// Extension is the file extension of the sidecar configuration file.
const Extension = ".wax"

// ProjectConfiguration is the in-memory form of a .wax file.
type ProjectConfiguration struct {
	DirectoryMappings    *Mappings
	FileMappings         *Mappings
	DeployedProjectNames []string
	DeploySymbols        bool
}

// New returns the default configuration used for projects without a sidecar file.
func New() *ProjectConfiguration {
	return &ProjectConfiguration{
		DirectoryMappings:    NewMappings(),
		FileMappings:         NewMappings(),
		DeployedProjectNames: []string{},
	}
}

// SetDeployedProjectNames replaces the deployed project list. Order is kept,
// later case-insensitive duplicates are dropped.
func (c *ProjectConfiguration) SetDeployedProjectNames(names []string) {
	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, name)
	}
	c.DeployedProjectNames = result
}

// IsDeployed reports whether name is in the deployed project list.
func (c *ProjectConfiguration) IsDeployed(name string) bool {
	for _, n := range c.DeployedProjectNames {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// Mapping pairs a path with its override identifier.
type Mapping struct {
	Path string
	ID   string
}

// Mappings is a path -> identifier table with case-insensitive lookup.
// The spelling of the most recent Set is kept for output.
type Mappings struct {
	entries map[string]Mapping
}

// NewMappings creates an empty table.
func NewMappings() *Mappings {
	return &Mappings{entries: make(map[string]Mapping)}
}

// Get returns the override for path. An entry with an empty id counts as absent.
func (m *Mappings) Get(path string) (string, bool) {
	e, ok := m.entries[strings.ToLower(path)]
	if !ok || e.ID == "" {
		return "", false
	}
	return e.ID, true
}

// Set stores an override for path. An empty id removes the entry.
func (m *Mappings) Set(path, id string) {
	if id == "" {
		m.Remove(path)
		return
	}
	m.entries[strings.ToLower(path)] = Mapping{Path: path, ID: id}
}

// Remove deletes the override for path, if any.
func (m *Mappings) Remove(path string) {
	delete(m.entries, strings.ToLower(path))
}

// Len returns the number of stored entries.
func (m *Mappings) Len() int {
	return len(m.entries)
}

// All returns the entries sorted by path.
func (m *Mappings) All() []Mapping {
	result := make([]Mapping, 0, len(m.entries))
	for _, e := range m.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Path), strings.ToLower(result[j].Path)
		if a != b {
			return a < b
		}
		return result[i].Path < result[j].Path
	})
	return result
}

// XML document shape

type xmlConfiguration struct {
	XMLName           xml.Name     `xml:"ProjectConfiguration"`
	DeploySymbols     bool         `xml:"DeploySymbols"`
	DeployedProjects  []string     `xml:"DeployedProjects>Project"`
	DirectoryMappings []xmlMapping `xml:"DirectoryMappings>Mapping"`
	FileMappings      []xmlMapping `xml:"FileMappings>Mapping"`
}

type xmlMapping struct {
	Path string `xml:"Path,attr"`
	ID   string `xml:"Id,attr"`
}

// Serialize renders the configuration in its canonical text form. Two
// configurations are equal exactly when their serializations are.
func Serialize(c *ProjectConfiguration) (string, error) {
	raw := xmlConfiguration{
		DeploySymbols:     c.DeploySymbols,
		DeployedProjects:  c.DeployedProjectNames,
		DirectoryMappings: toXMLMappings(c.DirectoryMappings),
		FileMappings:      toXMLMappings(c.FileMappings),
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return "", fmt.Errorf("encoding configuration: %w", err)
	}
	buf.WriteString("\n")
	return buf.String(), nil
}

// Deserialize parses the text form produced by Serialize. Blank text yields
// the default configuration.
func Deserialize(text string) (*ProjectConfiguration, error) {
	c := New()
	if strings.TrimSpace(text) == "" {
		return c, nil
	}

	var raw xmlConfiguration
	if err := xml.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	c.DeploySymbols = raw.DeploySymbols
	c.SetDeployedProjectNames(raw.DeployedProjects)
	for _, m := range raw.DirectoryMappings {
		c.DirectoryMappings.Set(m.Path, m.ID)
	}
	for _, m := range raw.FileMappings {
		c.FileMappings.Set(m.Path, m.ID)
	}
	return c, nil
}

func toXMLMappings(m *Mappings) []xmlMapping {
	var result []xmlMapping
	for _, e := range m.All() {
		if e.ID == "" {
			continue
		}
		result = append(result, xmlMapping{Path: e.Path, ID: e.ID})
	}
	return result
}
