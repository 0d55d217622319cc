package wxs

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const productWxs = `<?xml version="1.0" encoding="UTF-8"?>
<Wix xmlns="http://wixtoolset.org/schemas/v4/wxs">
  <Package Name="Demo" Manufacturer="Acme" Version="1.0.0.0" UpgradeCode="{11111111-2222-3333-4444-555555555555}">
    <Feature Id="Main">
      <ComponentGroupRef Id="CG_INSTALLFOLDER" />
    </Feature>
    <Feature Id="Extras" />
  </Package>
  <Fragment>
    <StandardDirectory Id="ProgramFiles6432Folder">
      <Directory Id="INSTALLFOLDER" Name="Demo">
        <Directory Id="bin" Name="bin" />
      </Directory>
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

func parseProduct(t *testing.T) *SourceFile {
	t.Helper()
	f, err := Parse("Product.wxs", productWxs)
	require.NoError(t, err)
	return f
}

func TestIsSourceFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Product.wxs", true},
		{"include/Vars.WXI", true},
		{"Setup.wax", false},
		{"Setup.wixproj", false},
		{"wxs", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSourceFile(tt.name); got != tt.want {
				t.Errorf("IsSourceFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestParseRejectsForeignRoot(t *testing.T) {
	_, err := Parse("Other.wxs", "<Project/>")
	require.Error(t, err)

	_, err = Parse("Broken.wxs", "<Wix Id=></Wix>")
	require.Error(t, err)

	_, err = Parse("Empty.wxs", "")
	require.Error(t, err)

	f, err := Parse("Vars.wxi", "\uFEFF<Include/>")
	require.NoError(t, err)
	require.False(t, f.HasChanges())
}

func TestSortSourceFiles(t *testing.T) {
	names := []string{"A.wxi", "B.wxs", "C.wxi", "D.WXS"}
	var files []*SourceFile
	for _, name := range names {
		root := "Wix"
		if strings.HasSuffix(strings.ToLower(name), ".wxi") {
			root = "Include"
		}
		f, err := Parse(name, "<"+root+"/>")
		require.NoError(t, err)
		files = append(files, f)
	}

	SortSourceFiles(files)

	var got []string
	for _, f := range files {
		got = append(got, f.Name())
	}
	require.Equal(t, []string{"B.wxs", "D.WXS", "A.wxi", "C.wxi"}, got)
}

func TestNodeViews(t *testing.T) {
	f := parseProduct(t)

	dirs := f.DirectoryNodes()
	require.Len(t, dirs, 3)
	require.Equal(t, "ProgramFiles6432Folder", dirs[0].ID())
	require.Equal(t, "", dirs[0].ParentID())
	require.Equal(t, "INSTALLFOLDER", dirs[1].ID())
	require.Equal(t, "ProgramFiles6432Folder", dirs[1].ParentID())
	require.Equal(t, "bin", dirs[2].ID())
	require.Equal(t, "INSTALLFOLDER", dirs[2].ParentID())

	files := f.FileNodes()
	require.Len(t, files, 1)
	require.Equal(t, "App.exe", files[0].ID())
	require.Equal(t, "App.exe", files[0].Name())
	require.Equal(t, "C_App.exe", files[0].ComponentID())

	features := f.FeatureNodes()
	require.Len(t, features, 2)
	require.Equal(t, []string{"CG_INSTALLFOLDER"}, features[0].ComponentGroupRefs())
	require.True(t, features[0].References("CG_INSTALLFOLDER"))
	require.False(t, features[1].References("CG_INSTALLFOLDER"))

	groups := f.ComponentGroups()
	require.Len(t, groups, 1)
	require.Equal(t, "INSTALLFOLDER", groups[0].Directory())
	require.False(t, f.HasChanges())
}

func TestAddDirectoryTopLevel(t *testing.T) {
	f := parseProduct(t)

	dir := f.AddDirectory("src_bin", "bin", "TODO_abc")
	require.True(t, f.HasChanges())
	require.Equal(t, "src_bin", dir.ID())
	require.Equal(t, "TODO_abc", dir.ParentID())
	require.Same(t, f, dir.SourceFile())

	dirs := f.DirectoryNodes()
	require.Equal(t, "src_bin", dirs[0].ID(), "new fragment is the first child of the root")
	require.Len(t, dirs, 4)

	text := f.String()
	require.Contains(t, text, `<DirectoryRef Id="TODO_abc">`)
	reparsed, err := Parse(f.Name(), text)
	require.NoError(t, err)
	require.Len(t, reparsed.DirectoryNodes(), 4)
}

func TestAddChildDirectory(t *testing.T) {
	f := parseProduct(t)

	child := f.DirectoryNodes()[2].AddDirectory("bin_de", "de")
	require.True(t, f.HasChanges())
	require.Equal(t, "bin", child.ParentID())
	require.Equal(t, "de", child.Name())
}

func TestAddComponentGroupAndFile(t *testing.T) {
	f := parseProduct(t)

	group := f.AddComponentGroup("bin")
	require.Equal(t, "CG_bin", group.ID())
	require.Equal(t, "bin", group.Directory())
	require.Len(t, f.ComponentGroups(), 2)

	file := group.AddFileComponent("App.dll", "App.dll", `$(var.App.TargetDir)App.dll`)
	require.Equal(t, "App.dll", file.ID())
	require.Equal(t, "C_App.dll", file.ComponentID())
	require.Equal(t, `$(var.App.TargetDir)App.dll`, file.Source())
	require.Len(t, f.FileNodes(), 2)

	guid := regexp.MustCompile(`Guid="\{[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}\}"`)
	require.Regexp(t, guid, f.String())
	require.Contains(t, f.String(), `KeyPath="yes"`)
}

func TestAddComponentGroupRef(t *testing.T) {
	f := parseProduct(t)
	extras := f.FeatureNodes()[1]

	extras.AddComponentGroupRef("CG_bin")
	require.True(t, f.HasChanges())
	require.Equal(t, []string{"CG_bin"}, f.FeatureNodes()[1].ComponentGroupRefs())

	f.MarkSaved()
	require.False(t, f.HasChanges())
}

func TestFileNodeNameFallsBackToSource(t *testing.T) {
	f, err := Parse("Files.wxs", `<Wix><Fragment><Component Id="C"><File Id="F" Source="bin\Release\Tool.exe"/></Component></Fragment></Wix>`)
	require.NoError(t, err)
	require.Equal(t, "Tool.exe", f.FileNodes()[0].Name())
}
