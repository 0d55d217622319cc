package wixproject

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gersonkurz/wax/internal/project"
	"github.com/gersonkurz/wax/internal/wixid"
)

type idNode string

func (n idNode) ID() string { return string(n) }

func TestGetIDs(t *testing.T) {
	p := newFixture(t).project

	require.Equal(t, "src_bin", p.GetDirectoryID("src/bin"))
	require.Equal(t, "src_bin", p.GetDirectoryID(`src\bin\`))
	require.Equal(t, "_", p.GetDirectoryID(""))
	require.Equal(t, "_1.0_App.exe", p.GetFileID("1.0/App.exe"))
	require.True(t, p.HasDefaultDirectoryID("src/bin"))
	require.True(t, p.HasDefaultFileID("App.exe"))

	p.Configuration().FileMappings.Set("App.exe", "MainExe")
	require.Equal(t, "MainExe", p.GetFileID("App.exe"))
	require.False(t, p.HasDefaultFileID("App.exe"))

	p.Configuration().DirectoryMappings.Set("Src/Bin", "BINDIR")
	require.Equal(t, "BINDIR", p.GetDirectoryID("src/bin"), "lookup is case-insensitive")
}

func TestMapAndUnmapDirectory(t *testing.T) {
	p := newFixture(t).project

	require.NoError(t, p.MapDirectory("src/bin", idNode("INSTALLFOLDER")))
	require.Equal(t, "INSTALLFOLDER", p.GetDirectoryID("src/bin"))
	require.False(t, p.HasDefaultDirectoryID("src/bin"))

	require.NoError(t, p.UnmapDirectory("src/bin"))
	require.Equal(t, wixid.DeriveDefaultID("src/bin"), p.GetDirectoryID("src/bin"))
	require.Equal(t, 0, p.Configuration().DirectoryMappings.Len())
}

func TestMapAndUnmapFile(t *testing.T) {
	p := newFixture(t).project

	require.NoError(t, p.MapFile("de/App.resources.dll", idNode("Resources")))
	require.Equal(t, "Resources", p.GetFileID("de/App.resources.dll"))

	require.NoError(t, p.UnmapFile("de/App.resources.dll"))
	require.Equal(t, "de_App.resources.dll", p.GetFileID("de/App.resources.dll"))
}

func TestMapToDefaultIDRemovesOverride(t *testing.T) {
	f := newFixture(t)
	p := f.project

	require.NoError(t, p.MapDirectory("tools", idNode("TOOLS")))
	require.NoError(t, p.MapFile("App.exe", idNode("MainExe")))
	require.NoError(t, p.Save())

	require.NoError(t, p.MapDirectory("tools", idNode("tools")))
	require.NoError(t, p.MapFile("App.exe", idNode("App.exe")))

	require.Equal(t, 0, p.Configuration().DirectoryMappings.Len())
	require.Equal(t, 0, p.Configuration().FileMappings.Len())
	require.True(t, p.HasDefaultDirectoryID("tools"))
	requireHasChanges(t, p, true)
}

func TestParentDirectory(t *testing.T) {
	p := newFixture(t).project

	ref := p.ParentDirectory("src/bin")
	id, ok := ref.ID()
	require.True(t, ok)
	require.Equal(t, "src", id)

	ref = p.ParentDirectory("src")
	require.False(t, ref.IsResolved())
	require.NotEmpty(t, ref.Reason())

	require.False(t, p.ParentDirectory("").IsResolved())

	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))
	require.Equal(t, Resolved("INSTALLFOLDER"), p.ParentDirectory("src"))
}

func TestResolveDirectory(t *testing.T) {
	p := newFixture(t).project

	require.False(t, p.ResolveDirectory("").IsResolved())
	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))
	require.True(t, p.ResolveDirectory("").IsResolved())

	ref := p.ResolveDirectory("tools")
	require.False(t, ref.IsResolved())
	require.Contains(t, ref.Reason(), "tools")
}

func TestAddDirectoryNodeWithoutParent(t *testing.T) {
	p := newFixture(t).project

	node, err := p.AddDirectoryNode("src/bin")
	require.NoError(t, err)
	require.Equal(t, "src_bin", node.ID())
	require.Equal(t, "bin", node.Name())
	require.True(t, IsPlaceholder(node.ParentID()))
	require.NotEqual(t, "src", node.ParentID())

	primary := p.PrimarySourceFile()
	require.Same(t, primary, node.SourceFile())
	require.Equal(t, "src_bin", primary.DirectoryNodes()[0].ID())

	require.Nil(t, p.FindDirectoryNode("src"))
	require.Equal(t, 0, p.Configuration().DirectoryMappings.Len())
}

func TestAddDirectoryNodeBelowParent(t *testing.T) {
	p := newFixture(t).project
	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))

	tools, err := p.AddDirectoryNode("tools")
	require.NoError(t, err)
	require.Equal(t, "INSTALLFOLDER", tools.ParentID())

	nested, err := p.AddDirectoryNode("tools/x64")
	require.NoError(t, err)
	require.Equal(t, "tools_x64", nested.ID())
	require.Equal(t, "tools", nested.ParentID())
}

func TestAddDirectoryNodeRoot(t *testing.T) {
	p := newFixture(t).project

	_, err := p.AddDirectoryNode("")
	require.ErrorIs(t, err, ErrRootDirectory)
}

func TestAddFileNodeIntoExistingStructure(t *testing.T) {
	p := newFixture(t).project
	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))

	primary := p.PrimarySourceFile()
	groups := len(primary.ComponentGroups())
	refs := primary.FeatureNodes()[0].ComponentGroupRefs()
	files := len(primary.FileNodes())

	node, err := p.AddFileNode(FileMapping{Path: "App.dll", Source: SourceExpression("App", "App.dll")})
	require.NoError(t, err)
	require.NotNil(t, node)
	require.Equal(t, "App.dll", node.ID())
	require.Equal(t, `$(var.App.TargetDir)App.dll`, node.Source())
	require.Equal(t, "C_App.dll", node.ComponentID())

	require.Len(t, primary.FileNodes(), files+1)
	require.Len(t, primary.ComponentGroups(), groups)
	require.Equal(t, refs, primary.FeatureNodes()[0].ComponentGroupRefs())
}

func TestAddFileNodeCreatesGroupAndFeatureRef(t *testing.T) {
	p := newFixture(t).project
	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))
	_, err := p.AddDirectoryNode("tools")
	require.NoError(t, err)

	_, err = p.AddFileNode(FileMapping{Path: "tools/cli.exe"})
	require.NoError(t, err)

	group := p.ForceComponentGroup("tools")
	require.Equal(t, "CG_tools", group.ID())
	require.Len(t, p.PrimarySourceFile().ComponentGroups(), 2)
	require.Equal(t, []string{"CG_INSTALLFOLDER", "CG_tools"}, p.PrimarySourceFile().FeatureNodes()[0].ComponentGroupRefs())
	require.Equal(t, `tools\cli.exe`, p.FindFileNode("tools_cli.exe").Source())
}

func TestAddFileNodeWithMissingDirectory(t *testing.T) {
	p := newFixture(t).project

	node, err := p.AddFileNode(FileMapping{Path: "lib/x.dll"})
	require.NoError(t, err)
	require.Equal(t, "lib_x.dll", node.ID())

	groups := p.PrimarySourceFile().ComponentGroups()
	last := groups[len(groups)-1]
	require.True(t, IsPlaceholder(last.Directory()))
	require.Equal(t, PlaceholderPrefix+"lib", last.Directory())

	_, err = p.AddFileNode(FileMapping{Path: ""})
	require.Error(t, err)
}

func TestAddNodesRejectDuplicateIDs(t *testing.T) {
	p := newFixture(t).project
	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))

	_, err := p.AddFileNode(FileMapping{Path: "App.exe"})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = p.AddDirectoryNode("tools")
	require.NoError(t, err)
	_, err = p.AddDirectoryNode("tools")
	require.ErrorIs(t, err, ErrDuplicateID)
	require.Len(t, p.PrimarySourceFile().FileNodes(), 1)
}

func TestForceFeatureRefWithoutFeatures(t *testing.T) {
	f := load(t, newFileSystem(`<Wix><Fragment><Directory Id="INSTALLFOLDER" Name="Demo"/></Fragment></Wix>`))
	p := f.project

	p.ForceFeatureRef("CG_INSTALLFOLDER")
	require.False(t, p.PrimarySourceFile().HasChanges())

	require.NoError(t, p.MapDirectory("", idNode("INSTALLFOLDER")))
	node, err := p.AddFileNode(FileMapping{Path: "App.exe"})
	require.NoError(t, err)
	require.NotNil(t, node)
	require.Empty(t, p.PrimarySourceFile().FeatureNodes())
}

func TestForceFeatureRefIsIdempotent(t *testing.T) {
	p := newFixture(t).project

	p.ForceFeatureRef("CG_INSTALLFOLDER")
	require.False(t, p.PrimarySourceFile().HasChanges())

	p.ForceFeatureRef("CG_other")
	p.ForceFeatureRef("CG_other")
	require.Equal(t, []string{"CG_INSTALLFOLDER", "CG_other"}, p.PrimarySourceFile().FeatureNodes()[0].ComponentGroupRefs())
}

func TestSetDeployedProjects(t *testing.T) {
	f := newFixture(t)
	p := f.project
	app, lib := f.find(t, "App"), f.find(t, "Lib")

	require.NoError(t, p.SetDeployedProjects([]project.Project{app}))
	require.Equal(t, []string{"App/App.csproj"}, f.solution.added)
	require.Empty(t, f.solution.removed)
	requireHasChanges(t, p, true)

	f.solution.added = nil
	require.NoError(t, p.SetDeployedProjects([]project.Project{lib}))
	require.Equal(t, []string{"Lib/Lib.csproj"}, f.solution.added)
	require.Equal(t, []string{"App/App.csproj"}, f.solution.removed)
	require.Equal(t, []string{"Lib/Lib.csproj"}, p.Configuration().DeployedProjectNames)

	deployed, err := p.DeployedProjects()
	require.NoError(t, err)
	require.Len(t, deployed, 1)
	require.Equal(t, "Lib", deployed[0].Name())

	require.NoError(t, p.Save())
	data, err := f.fs.ReadFile("/ws/Setup/Setup.wixproj")
	require.NoError(t, err)
	require.Contains(t, string(data), `..\Lib\Lib.csproj`)
	require.NotContains(t, string(data), `..\App\App.csproj`)
}

func TestSetDeployedProjectsKeepsOrder(t *testing.T) {
	f := newFixture(t)
	p := f.project
	app, lib := f.find(t, "App"), f.find(t, "Lib")

	require.NoError(t, p.SetDeployedProjects([]project.Project{lib, app, lib}))
	require.Equal(t, []string{"Lib/Lib.csproj", "App/App.csproj"}, p.Configuration().DeployedProjectNames)
	require.Equal(t, []string{"Lib/Lib.csproj", "App/App.csproj"}, f.solution.added)

	f.solution.added = nil
	require.NoError(t, p.SetDeployedProjects([]project.Project{app, lib}))
	require.Empty(t, f.solution.added)
	require.Empty(t, f.solution.removed)
	require.Equal(t, []string{"App/App.csproj", "Lib/Lib.csproj"}, p.Configuration().DeployedProjectNames)
}
