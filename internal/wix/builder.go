// Package wix provides WiX CLI integration for building the MSI package of a
// loaded installer project.
package wix

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"

	"github.com/gersonkurz/wax/internal/wixproject"
	"github.com/gersonkurz/wax/internal/wxs"
)

const localizationExtension = ".wxl"

// Builder handles WiX CLI invocation for MSI generation.
type Builder struct {
	ProjectDir    string
	Sources       []string // .wxs files, relative to ProjectDir
	Localizations []string // .wxl files, relative to ProjectDir
	OutputFile    string
	Platform      string
	Defines       []string // NAME=VALUE preprocessor definitions
	Extensions    []string

	Stdout io.Writer
	Stderr io.Writer
	logger log.Logger
}

// NewBuilder creates a builder for the project. Every deployed project gets a
// <Name>.TargetDir definition pointing at its output directory, which is what
// the Source attributes of generated files refer to. An empty outputFile
// builds <project>.msi into the output directory of the installer project.
func NewBuilder(p *wixproject.Project, outputFile, platform string, logger log.Logger) (*Builder, error) {
	owner := p.Owner()
	projectDir := filepath.Dir(owner.FullName())

	if outputFile == "" {
		outputFile = filepath.Join(owner.OutputDir(), owner.Name()+".msi")
	}

	b := &Builder{
		ProjectDir: projectDir,
		OutputFile: outputFile,
		Platform:   platform,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		logger:     logger,
	}

	for _, file := range p.SourceFiles() {
		if strings.EqualFold(filepath.Ext(file.Name()), wxs.SourceExtension) {
			b.Sources = append(b.Sources, filepath.FromSlash(file.Name()))
		}
	}
	for _, item := range owner.Items() {
		if strings.EqualFold(filepath.Ext(item.Name()), localizationExtension) {
			b.Localizations = append(b.Localizations, filepath.FromSlash(item.Name()))
		}
	}

	deployed, err := p.DeployedProjects()
	if err != nil {
		return nil, err
	}
	for _, proj := range deployed {
		targetDir := proj.OutputDir() + string(filepath.Separator)
		b.Defines = append(b.Defines, proj.Name()+".TargetDir="+targetDir)
	}

	return b, nil
}

// Args returns the arguments passed to the wix CLI.
func (b *Builder) Args() []string {
	args := []string{"build"}
	args = append(args, b.Sources...)

	if b.Platform != "" {
		args = append(args, "-arch", strings.ToLower(b.Platform))
	}
	for _, ext := range b.Extensions {
		args = append(args, "-ext", ext)
	}
	for _, loc := range b.Localizations {
		args = append(args, "-loc", loc)
	}
	for _, define := range b.Defines {
		args = append(args, "-d", define)
	}

	args = append(args, "-b", b.ProjectDir)
	args = append(args, "-pdbtype", "none")
	args = append(args, "-o", b.OutputFile)
	return args
}

// Build invokes WiX CLI to compile the sources into an MSI.
func (b *Builder) Build() error {
	if !IsWixAvailable() {
		return fmt.Errorf("wix CLI not found in PATH; install it with: dotnet tool install --global wix")
	}
	level.Debug(b.logger).Log("msg", "using wix", "path", GetWixPath(), "version", GetWixVersion())

	if err := b.ensureEulaAccepted(); err != nil {
		return fmt.Errorf("EULA check: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(b.OutputFile), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := b.runWixBuild(); err != nil {
		return fmt.Errorf("wix build: %w", err)
	}

	b.cleanup()
	return nil
}

// ensureEulaAccepted checks if WiX EULA has been accepted and accepts it if needed.
func (b *Builder) ensureEulaAccepted() error {
	wixPath := GetWixPath()

	// Try running a simple wix command to see if EULA is already accepted
	cmd := exec.Command(wixPath, "--version")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	errOutput := stderr.String()
	if strings.Contains(strings.ToLower(errOutput), "eula") {
		level.Info(b.logger).Log("msg", "accepting WiX EULA")
		acceptCmd := exec.Command(wixPath, "eula", "accept", "wix6")
		acceptCmd.Stdout = b.Stdout
		acceptCmd.Stderr = b.Stderr
		if err := acceptCmd.Run(); err != nil {
			return fmt.Errorf("accepting EULA: %w", err)
		}
		return nil
	}

	if errOutput != "" {
		return fmt.Errorf("wix --version failed: %s", strings.TrimSpace(errOutput))
	}
	return fmt.Errorf("wix --version failed: %w", err)
}

func (b *Builder) runWixBuild() error {
	args := b.Args()
	wixPath := GetWixPath()
	level.Info(b.logger).Log("msg", "running wix", "cmd", wixPath+" "+strings.Join(args, " "))

	cmd := exec.Command(wixPath, args...)
	cmd.Dir = b.ProjectDir
	cmd.Stdout = b.Stdout
	cmd.Stderr = b.Stderr
	return cmd.Run()
}

// cleanup removes the .wixpdb written next to the package.
func (b *Builder) cleanup() {
	wixpdb := strings.TrimSuffix(b.OutputFile, filepath.Ext(b.OutputFile)) + ".wixpdb"
	if _, err := os.Stat(wixpdb); err == nil {
		os.Remove(wixpdb)
	}
}

// GetWixPath returns the path to the WiX CLI.
// Prefers dotnet tools installation over system PATH.
func GetWixPath() string {
	home, _ := os.UserHomeDir()
	dotnetWix := filepath.Join(home, ".dotnet", "tools", "wix.exe")
	if _, err := os.Stat(dotnetWix); err == nil {
		return dotnetWix
	}

	// Unix-style dotnet tools
	dotnetWix = filepath.Join(home, ".dotnet", "tools", "wix")
	if _, err := os.Stat(dotnetWix); err == nil {
		return dotnetWix
	}

	return "wix"
}

// IsWixAvailable checks if wix CLI is available.
func IsWixAvailable() bool {
	wixPath := GetWixPath()
	if wixPath == "wix" {
		_, err := exec.LookPath("wix")
		return err == nil
	}
	_, err := os.Stat(wixPath)
	return err == nil
}

// GetWixVersion returns the WiX version string, or "(unavailable)".
func GetWixVersion() string {
	cmd := exec.Command(GetWixPath(), "--version")
	output, err := cmd.Output()
	if err != nil {
		return "(unavailable)"
	}
	return strings.TrimSpace(string(output))
}
