package wixproject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gersonkurz/wax/internal/config"
	"github.com/gersonkurz/wax/internal/filesystem"
	"github.com/gersonkurz/wax/internal/msbuild"
	"github.com/gersonkurz/wax/internal/project"
)

const setupProject = `<?xml version="1.0" encoding="utf-8"?>
<Project Sdk="WixToolset.Sdk/5.0.0">
  <ItemGroup>
    <Compile Include="Include\Vars.wxi" />
    <Compile Include="Product.wxs" />
  </ItemGroup>
</Project>
`

const productWxs = `<?xml version="1.0" encoding="UTF-8"?>
<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs">
  <Package Name="Demo" Manufacturer="Acme" Version="1.0.0.0" UpgradeCode="{11111111-2222-3333-4444-555555555555}">
    <Feature Id="Main">
      <ComponentGroupRef Id="CG_INSTALLFOLDER" />
    </Feature>
  </Package>
  <Fragment>
    <StandardDirectory Id="ProgramFiles6432Folder">
      <Directory Id="INSTALLFOLDER" Name="Demo" />
    </StandardDirectory>
  </Fragment>
  <Fragment>
    <ComponentGroup Id="CG_INSTALLFOLDER" Directory="INSTALLFOLDER">
      <Component Id="C_App.exe">
        <File Id="App.exe" Source="$(var.App.TargetDir)App.exe" />
      </Component>
    </ComponentGroup>
  </Fragment>
</Wix>
`

const libraryProject = `<Project Sdk="Microsoft.NET.Sdk" />
`

// recordingSolution counts reference edits made through the solution.
type recordingSolution struct {
	*msbuild.Solution
	added   []string
	removed []string
}

func (s *recordingSolution) AddReference(owner, target project.Project) error {
	s.added = append(s.added, target.UniqueName())
	return s.Solution.AddReference(owner, target)
}

func (s *recordingSolution) RemoveReference(owner, target project.Project) error {
	s.removed = append(s.removed, target.UniqueName())
	return s.Solution.RemoveReference(owner, target)
}

type fixture struct {
	fs       *filesystem.MockFileSystem
	solution *recordingSolution
	project  *Project
}

func newFileSystem(product string) *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/ws/Demo.sln", nil)
	fs.AddFile("/ws/Setup/Setup.wixproj", []byte(setupProject))
	fs.AddFile("/ws/Setup/Product.wxs", []byte(product))
	fs.AddFile("/ws/Setup/Include/Vars.wxi", []byte("<Include />"))
	fs.AddFile("/ws/App/App.csproj", []byte(libraryProject))
	fs.AddFile("/ws/App/bin/Release/App.exe", []byte("MZ"))
	fs.AddFile("/ws/App/bin/Release/App.pdb", []byte("PDB"))
	fs.AddFile("/ws/App/bin/Release/de/App.resources.dll", []byte("MZ"))
	fs.AddFile("/ws/Lib/Lib.csproj", []byte(libraryProject))
	fs.AddFile("/ws/Lib/bin/Release/Lib.dll", []byte("MZ"))
	return fs
}

func load(t *testing.T, fs *filesystem.MockFileSystem) *fixture {
	t.Helper()

	s, err := msbuild.NewSolution(fs, "/ws")
	require.NoError(t, err)
	solution := &recordingSolution{Solution: s}

	p, err := Load(fs, solution, s.Find("Setup"))
	require.NoError(t, err)
	return &fixture{fs: fs, solution: solution, project: p}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return load(t, newFileSystem(productWxs))
}

func (f *fixture) find(t *testing.T, name string) project.Project {
	t.Helper()
	p := f.solution.Find(name)
	require.NotNil(t, p, name)
	return p
}

func requireHasChanges(t *testing.T, p *Project, want bool) {
	t.Helper()
	changed, err := p.HasChanges()
	require.NoError(t, err)
	require.Equal(t, want, changed)
}

func TestLoadCreatesSidecar(t *testing.T) {
	f := newFixture(t)

	data, err := f.fs.ReadFile("/ws/Setup/Setup.wax")
	require.NoError(t, err)
	want, err := config.Serialize(config.New())
	require.NoError(t, err)
	require.Equal(t, want, string(data))

	require.Equal(t, config.New(), f.project.Configuration())
	require.False(t, f.project.Configuration().DeploySymbols)
	requireHasChanges(t, f.project, false)

	projectFile, err := f.fs.ReadFile("/ws/Setup/Setup.wixproj")
	require.NoError(t, err)
	require.Contains(t, string(projectFile), `Include="Setup.wax"`)
}

func TestLoadExistingSidecar(t *testing.T) {
	fs := newFileSystem(productWxs)
	fs.AddFile("/ws/Setup/Setup.wixproj", []byte(strings.Replace(setupProject,
		`<Compile Include="Product.wxs" />`,
		`<Compile Include="Product.wxs" /><Content Include="Setup.WAX" />`, 1)))

	cfg := config.New()
	cfg.DirectoryMappings.Set("", "INSTALLFOLDER")
	cfg.SetDeployedProjectNames([]string{"App/App.csproj"})
	text, err := config.Serialize(cfg)
	require.NoError(t, err)
	fs.AddFile("/ws/Setup/Setup.WAX", []byte(text))

	f := load(t, fs)
	require.Equal(t, cfg, f.project.Configuration())
	require.Equal(t, 0, fs.WriteCount("/ws/Setup/Setup.wixproj"))
	requireHasChanges(t, f.project, false)
}

func TestLoadOrdersSourceFiles(t *testing.T) {
	f := newFixture(t)

	var names []string
	for _, file := range f.project.SourceFiles() {
		names = append(names, file.Name())
	}
	require.Equal(t, []string{"Product.wxs", "Include/Vars.wxi"}, names)
	require.Equal(t, "Product.wxs", f.project.PrimarySourceFile().Name())
}

func TestLoadWithoutSourceFiles(t *testing.T) {
	fs := filesystem.NewMockFileSystem()
	fs.AddFile("/ws/Empty/Empty.wixproj", []byte(`<Project Sdk="WixToolset.Sdk/5.0.0" />`))

	s, err := msbuild.NewSolution(fs, "/ws")
	require.NoError(t, err)

	_, err = Load(fs, s, s.Find("Empty"))
	require.ErrorIs(t, err, ErrNoSourceFiles)
}

func TestLoadRejectsInvalidSidecar(t *testing.T) {
	fs := newFileSystem(productWxs)
	fs.AddFile("/ws/Setup/Setup.wixproj", []byte(strings.Replace(setupProject,
		`<Compile Include="Product.wxs" />`,
		`<Compile Include="Product.wxs" /><Content Include="Setup.wax" />`, 1)))
	fs.AddFile("/ws/Setup/Setup.wax", []byte("<ProjectConfiguration>"))

	s, err := msbuild.NewSolution(fs, "/ws")
	require.NoError(t, err)

	_, err = Load(fs, s, s.Find("Setup"))
	require.Error(t, err)
}

func TestHasChangesLifecycle(t *testing.T) {
	f := newFixture(t)
	p := f.project
	requireHasChanges(t, p, false)

	require.NoError(t, p.MapFile("App.exe", idNode("MainExecutable")))
	requireHasChanges(t, p, true)

	require.NoError(t, p.Save())
	requireHasChanges(t, p, false)
	require.Equal(t, 2, f.fs.WriteCount("/ws/Setup/Setup.wax"))

	saved, err := f.fs.ReadFile("/ws/Setup/Setup.wax")
	require.NoError(t, err)
	require.Contains(t, string(saved), `Id="MainExecutable"`)
}

func TestSaveSkipsUnchangedSidecar(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.project.UnmapDirectory("never/mapped"))
	requireHasChanges(t, f.project, false)

	require.NoError(t, f.project.Save())
	require.Equal(t, 1, f.fs.WriteCount("/ws/Setup/Setup.wax"))
	require.Equal(t, 0, f.fs.WriteCount("/ws/Setup/Product.wxs"))
}

func TestSaveSkipsRevertedSidecar(t *testing.T) {
	f := newFixture(t)
	p := f.project

	require.NoError(t, p.MapFile("App.exe", idNode("MainExecutable")))
	require.NoError(t, p.UnmapFile("App.exe"))
	requireHasChanges(t, p, false)

	require.NoError(t, p.Save())
	require.Equal(t, 1, f.fs.WriteCount("/ws/Setup/Setup.wax"))
	requireHasChanges(t, p, false)

	require.NoError(t, p.MapFile("App.exe", idNode("MainExecutable")))
	require.NoError(t, p.Save())
	require.Equal(t, 2, f.fs.WriteCount("/ws/Setup/Setup.wax"))
}

func TestHasChangesDetectsExternalEdit(t *testing.T) {
	f := newFixture(t)

	f.fs.AddFile("/ws/Setup/Setup.wax", []byte("<ProjectConfiguration><DeploySymbols/></ProjectConfiguration>"))
	requireHasChanges(t, f.project, true)
}

func TestHasChangesAfterSourceEdit(t *testing.T) {
	f := newFixture(t)

	_, err := f.project.AddDirectoryNode("tools")
	require.NoError(t, err)
	requireHasChanges(t, f.project, true)

	require.NoError(t, f.project.Save())
	requireHasChanges(t, f.project, false)

	data, err := f.fs.ReadFile("/ws/Setup/Product.wxs")
	require.NoError(t, err)
	require.Contains(t, string(data), `<Directory Id="tools" Name="tools"/>`)
}
