// Package variables handles the variable dictionary used for scaffolding new
// installer projects and its Handlebars resolution.
package variables

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aymerick/raymond"
	"github.com/google/uuid"
)

// Dictionary holds the variable name-value mappings for template resolution.
type Dictionary map[string]string

// New creates a new variable dictionary with default values seeded.
// Every call generates a fresh UPGRADE_CODE.
func New() Dictionary {
	return Dictionary{
		"PLATFORM":        "x64",
		"PRODUCT_VERSION": "1.0.0.0",
		"MANUFACTURER":    "",
		"LANGUAGE":        "en-us",

		// Install folder below Program Files, defaults to the product name
		"INSTALLDIR": "{{PRODUCT_NAME}}",

		"UPGRADE_CODE": NewGUID(),
	}
}

// NewGUID returns a new upper case GUID in registry format.
func NewGUID() string {
	return "{" + strings.ToUpper(uuid.New().String()) + "}"
}

// Get returns the value for a variable, or empty string if not found.
func (d Dictionary) Get(name string) string {
	return d[name]
}

// Set sets a variable value.
func (d Dictionary) Set(name, value string) {
	d[name] = value
}

// ParseAssignment sets a variable from a NAME=VALUE string. Names are upper
// cased.
func (d Dictionary) ParseAssignment(s string) error {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid variable assignment %q, expected NAME=VALUE", s)
	}
	d[strings.ToUpper(name)] = value
	return nil
}

// Resolve applies Handlebars template resolution to a string.
// Variables are referenced using {{VAR_NAME}} syntax.
func (d Dictionary) Resolve(s string) (string, error) {
	tpl, err := raymond.Parse(s)
	if err != nil {
		return "", err
	}
	return tpl.Exec(d)
}

// ResolveAll resolves all variable references within the dictionary itself.
// This handles cases like: INSTALLDIR = "{{MANUFACTURER}} {{PRODUCT_NAME}}"
func (d Dictionary) ResolveAll() error {
	toResolve := make(map[string]string)
	for key, value := range d {
		if containsTemplate(value) {
			toResolve[key] = value
		}
	}

	for key, value := range toResolve {
		resolved, err := d.Resolve(value)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", key, err)
		}
		d[key] = resolved
	}

	return nil
}

// containsTemplate checks if a string contains Handlebars template syntax.
func containsTemplate(s string) bool {
	return strings.Contains(s, "{{")
}

// GetBool returns the boolean value for a variable.
// Recognized true values: "True", "Yes", "On", "1" (case-insensitive)
// All other values (including empty/missing) return false.
func (d Dictionary) GetBool(name string) bool {
	switch strings.ToLower(d[name]) {
	case "true", "yes", "on", "1":
		return true
	default:
		return false
	}
}

// Platform returns the target platform (x86, x64 or arm64).
func (d Dictionary) Platform() string {
	return d.Get("PLATFORM")
}

// ProductName returns the product name.
func (d Dictionary) ProductName() string {
	return d.Get("PRODUCT_NAME")
}

// ProductVersion returns the product version.
func (d Dictionary) ProductVersion() string {
	return d.Get("PRODUCT_VERSION")
}

// UpgradeCode returns the upgrade code GUID.
func (d Dictionary) UpgradeCode() string {
	return d.Get("UPGRADE_CODE")
}

// Manufacturer returns the manufacturer name.
func (d Dictionary) Manufacturer() string {
	return d.Get("MANUFACTURER")
}

// InstallDir returns the install directory name.
func (d Dictionary) InstallDir() string {
	return d.Get("INSTALLDIR")
}

var (
	versionPattern = regexp.MustCompile(`^\d+(\.\d+){0,3}$`)
	guidPattern    = regexp.MustCompile(`^\{[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}\}$`)
)

// Validate checks the variables a new project cannot do without.
func (d Dictionary) Validate() error {
	if strings.TrimSpace(d.ProductName()) == "" {
		return fmt.Errorf("PRODUCT_NAME is required")
	}
	if !versionPattern.MatchString(d.ProductVersion()) {
		return fmt.Errorf("PRODUCT_VERSION %q is not a valid version, expected up to four numbers separated by dots", d.ProductVersion())
	}
	if !guidPattern.MatchString(d.UpgradeCode()) {
		return fmt.Errorf("UPGRADE_CODE %q is not a GUID in braces", d.UpgradeCode())
	}
	if installDir := strings.TrimSpace(d.InstallDir()); installDir == "" || strings.ContainsAny(installDir, `\/:*?"<>|`) {
		return fmt.Errorf("INSTALLDIR %q must be a single folder name", d.InstallDir())
	}
	switch strings.ToLower(d.Platform()) {
	case "x86", "x64", "arm64":
	default:
		return fmt.Errorf("PLATFORM %q is not supported, use x86, x64 or arm64", d.Platform())
	}
	return nil
}
