package exportopts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/settingkit/internal/persist"
	"github.com/dshills/settingkit/internal/setting"
	"github.com/dshills/settingkit/internal/stream"
)

func TestNewDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, ContainerName, c.Name())
	assert.Equal(t, 8, c.Len())

	opts := Snapshot(c)
	assert.Equal(t, Options{
		FileExtension:   "png",
		OutputDirectory: ".",
		OverwriteMode:   OverwriteRenameNew,
	}, opts)

	names := make([]string, 0, c.Len())
	for name := range c.All() {
		names = append(names, name)
	}
	assert.Equal(t, []string{
		FileExtension, OutputDirectory, OverwriteMode, LayerGroupsAsFolders,
		MergeLayerGroups, IgnoreInvisible, Autocrop, UseImageSize,
	}, names)
}

func TestFileExtensionRejectsEmpty(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	err = c.MustGet(FileExtension).SetValue("")
	var verr *setting.ValueError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "you need to specify a file extension", verr.Message)
	assert.Equal(t, "png", c.MustGet(FileExtension).Value())
}

func TestOverwriteModeChoices(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	mode := c.MustGet(OverwriteMode)
	assert.Equal(t, []string{OverwriteReplace, OverwriteSkip, OverwriteRenameNew, OverwriteRenameExisting},
		mode.EnumKind().IDs())
	assert.Equal(t, 2, mode.Value())

	skip, ok := mode.EnumKind().Value(OverwriteSkip)
	require.True(t, ok)
	require.NoError(t, mode.SetValue(skip))
	assert.Equal(t, OverwriteSkip, Snapshot(c).OverwriteMode)

	assert.Error(t, mode.SetValue(7))
	assert.Contains(t, mode.ShortDescription(), "Rename existing file (3)")
}

func TestMergeLayerGroupsStreamline(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	folders := c.MustGet(LayerGroupsAsFolders)
	merge := c.MustGet(MergeLayerGroups)
	require.NoError(t, folders.SetValue(true))
	require.NoError(t, merge.SetValue(true))

	changes, err := c.Streamline(false)
	require.NoError(t, err)

	assert.False(t, folders.BoolValue())
	assert.False(t, folders.UIEnabled())
	attrs, ok := changes.Get(folders)
	require.True(t, ok)
	assert.True(t, attrs.Has(setting.AttrValue))
	assert.True(t, attrs.Has(setting.AttrUIEnabled))

	require.NoError(t, merge.SetValue(false))
	_, err = c.Streamline(false)
	require.NoError(t, err)
	assert.True(t, folders.UIEnabled())
	assert.False(t, folders.BoolValue())
}

func TestUseImageSizeStreamline(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.Streamline(true)
	require.NoError(t, err)
	assert.True(t, c.MustGet(Autocrop).UIVisible())

	require.NoError(t, c.MustGet(UseImageSize).SetValue(true))
	changes, err := c.Streamline(false)
	require.NoError(t, err)

	assert.False(t, c.MustGet(Autocrop).UIVisible())
	attrs, ok := changes.Get(c.MustGet(Autocrop))
	require.True(t, ok)
	assert.Equal(t, setting.AttrSet(0).With(setting.AttrUIVisible), attrs)
}

func TestResetRestoresDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	require.NoError(t, c.MustGet(FileExtension).SetValue("jpg"))
	require.NoError(t, c.MustGet(Autocrop).SetValue(true))
	c.Reset()

	assert.Equal(t, "png", c.MustGet(FileExtension).Value())
	assert.False(t, c.MustGet(Autocrop).BoolValue())
}

func TestSaveAndLoadThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	ctx := context.Background()

	c, err := New()
	require.NoError(t, err)
	require.NoError(t, c.MustGet(FileExtension).SetValue("jpg"))
	require.NoError(t, c.MustGet(MergeLayerGroups).SetValue(true))
	require.NoError(t, c.MustGet(OverwriteMode).SetValue(0))

	file := stream.NewFile(path)
	p := persist.New([]stream.Stream{file}, []stream.Stream{file})
	require.Equal(t, persist.Success, p.Save(ctx, c))

	loaded, err := New()
	require.NoError(t, err)
	require.Equal(t, persist.Success, p.Load(ctx, loaded))

	opts := Snapshot(loaded)
	assert.Equal(t, "jpg", opts.FileExtension)
	assert.True(t, opts.MergeLayerGroups)
	assert.Equal(t, OverwriteReplace, opts.OverwriteMode)
}
