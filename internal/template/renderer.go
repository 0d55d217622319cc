// Package template renders the scaffold of a new WiX project using
// Handlebars.
package template

import (
	"embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aymerick/raymond"

	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/variables"
)

// InstallDirID is the directory id of the install folder in new projects.
const InstallDirID = "INSTALLFOLDER"

//go:embed scaffold/*
var scaffold embed.FS

// scaffoldFiles maps template names to output names. {{PROJECT_NAME}} is
// resolved in output names as well.
var scaffoldFiles = []struct {
	template string
	output   string
}{
	{"project.wixproj", "{{PROJECT_NAME}}.wixproj"},
	{"Product.wxs", "Product.wxs"},
}

// File is a rendered scaffold file.
type File struct {
	Name    string
	Content string
}

// Renderer fills the project scaffold with variables.
type Renderer struct {
	Variables       variables.Dictionary
	ProjectName     string
	CustomTemplates string // Overlay folder, takes precedence over the built-in scaffold

	fs filesystem.FileSystem
}

// NewRenderer creates a scaffold renderer.
// customTemplates is an optional overlay folder that takes precedence over the built-in templates.
func NewRenderer(fs filesystem.FileSystem, vars variables.Dictionary, projectName, customTemplates string) *Renderer {
	return &Renderer{
		Variables:       vars,
		ProjectName:     projectName,
		CustomTemplates: customTemplates,
		fs:              fs,
	}
}

// readTemplate finds a template in the overlay folder first, then in the
// built-in scaffold.
func (r *Renderer) readTemplate(name string) (string, error) {
	if r.CustomTemplates != "" {
		customPath := filepath.Join(r.CustomTemplates, name)
		if r.fs.Exists(customPath) {
			data, err := r.fs.ReadFile(customPath)
			if err != nil {
				return "", fmt.Errorf("reading template %s: %w", customPath, err)
			}
			return string(data), nil
		}
	}

	data, err := scaffold.ReadFile("scaffold/" + name)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), nil
}

// Render processes all scaffold templates.
func (r *Renderer) Render() ([]File, error) {
	vars := make(variables.Dictionary, len(r.Variables))
	for key, value := range r.Variables {
		vars[key] = value
	}
	if err := vars.ResolveAll(); err != nil {
		return nil, err
	}
	ctx := r.buildContext(vars)

	var files []File
	for _, f := range scaffoldFiles {
		content, err := r.readTemplate(f.template)
		if err != nil {
			return nil, err
		}

		result, err := raymond.Render(content, ctx)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", f.template, err)
		}
		name, err := raymond.Render(f.output, ctx)
		if err != nil {
			return nil, fmt.Errorf("rendering file name %s: %w", f.output, err)
		}

		files = append(files, File{Name: name, Content: result})
	}
	return files, nil
}

// Write renders the scaffold into dir and returns the written paths. Existing
// files are never overwritten.
func (r *Renderer) Write(dir string) ([]string, error) {
	files, err := r.Render()
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if r.fs.Exists(path) {
			return nil, fmt.Errorf("%s already exists", path)
		}
	}

	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var paths []string
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := r.fs.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (r *Renderer) buildContext(vars variables.Dictionary) map[string]interface{} {
	ctx := make(map[string]interface{})

	// Copy all variables
	for key, value := range vars {
		ctx[key] = value
	}

	ctx["PROJECT_NAME"] = r.ProjectName
	ctx["INSTALLDIR_ID"] = InstallDirID

	ctx["LCID"] = r.getLCID()
	ctx["CODEPAGE"] = r.getCodepage()
	ctx["PROGRAM_FILES_FOLDER"] = programFilesFolder(r.Variables.Platform())

	return ctx
}

// programFilesFolder returns the standard directory matching the platform.
func programFilesFolder(platform string) string {
	switch strings.ToLower(platform) {
	case "x86":
		return "ProgramFilesFolder"
	default:
		return "ProgramFiles64Folder"
	}
}

// languageInfo holds LCID and codepage for a language.
type languageInfo struct {
	LCID     string
	Codepage string
}

// languageMap maps language tags to LCID and codepage (matching Windows CultureInfo).
var languageMap = map[string]languageInfo{
	// English variants
	"en-us":   {"1033", "1252"},
	"en-gb":   {"2057", "1252"},
	"en-au":   {"3081", "1252"},
	"en-ca":   {"4105", "1252"},
	"english": {"1033", "1252"},
	// German variants
	"de-de":  {"1031", "1252"},
	"de-at":  {"3079", "1252"},
	"de-ch":  {"2055", "1252"},
	"german": {"1031", "1252"},
	// French variants
	"fr-fr":  {"1036", "1252"},
	"fr-ca":  {"3084", "1252"},
	"fr-ch":  {"4108", "1252"},
	"french": {"1036", "1252"},
	// Spanish variants
	"es-es":   {"3082", "1252"},
	"es-mx":   {"2058", "1252"},
	"spanish": {"3082", "1252"},
	// Italian
	"it-it":   {"1040", "1252"},
	"italian": {"1040", "1252"},
	// Portuguese
	"pt-br":      {"1046", "1252"},
	"pt-pt":      {"2070", "1252"},
	"portuguese": {"1046", "1252"},
	// Dutch
	"nl-nl": {"1043", "1252"},
	"dutch": {"1043", "1252"},
	// Polish
	"pl-pl":  {"1045", "1250"},
	"polish": {"1045", "1250"},
	// Russian
	"ru-ru":   {"1049", "1251"},
	"russian": {"1049", "1251"},
	// Japanese
	"ja-jp":    {"1041", "932"},
	"japanese": {"1041", "932"},
	// Chinese
	"zh-cn":   {"2052", "936"},
	"zh-tw":   {"1028", "950"},
	"chinese": {"2052", "936"},
	// Korean
	"ko-kr":  {"1042", "949"},
	"korean": {"1042", "949"},
}

func (r *Renderer) getLCID() string {
	lang := strings.ToLower(r.Variables["LANGUAGE"])
	if info, ok := languageMap[lang]; ok {
		return info.LCID
	}
	return "1033" // Default to English (US)
}

func (r *Renderer) getCodepage() string {
	lang := strings.ToLower(r.Variables["LANGUAGE"])
	if info, ok := languageMap[lang]; ok {
		return info.Codepage
	}
	return "1252" // Default Western European
}
