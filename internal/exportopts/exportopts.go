// Package exportopts defines the settings of a layer export plug-in.
package exportopts

import (
	"github.com/dshills/settingkit/internal/container"
	"github.com/dshills/settingkit/internal/setting"
)

// ContainerName names the container in notifications and file sections.
const ContainerName = "export"

// Setting names.
const (
	FileExtension        = "file_extension"
	OutputDirectory      = "output_directory"
	OverwriteMode        = "overwrite_mode"
	LayerGroupsAsFolders = "layer_groups_as_folders"
	MergeLayerGroups     = "merge_layer_groups"
	IgnoreInvisible      = "ignore_invisible"
	Autocrop             = "autocrop"
	UseImageSize         = "use_image_size"
)

// Overwrite mode option IDs.
const (
	OverwriteReplace        = "replace"
	OverwriteSkip           = "skip"
	OverwriteRenameNew      = "rename_new"
	OverwriteRenameExisting = "rename_existing"
)

// Options is a typed snapshot of the container.
type Options struct {
	FileExtension        string
	OutputDirectory      string
	OverwriteMode        string
	LayerGroupsAsFolders bool
	MergeLayerGroups     bool
	IgnoreInvisible      bool
	Autocrop             bool
	UseImageSize         bool
}

// New builds the export options container with its streamline rules
// installed.
func New() (*container.Container, error) {
	return container.New(ContainerName, create)
}

func create(b *container.Builder) error {
	overwrite, err := setting.NewEnum(OverwriteMode, OverwriteRenameNew, []setting.Choice{
		setting.NewChoice(OverwriteReplace, "Replace"),
		setting.NewChoice(OverwriteSkip, "Skip"),
		setting.NewChoice(OverwriteRenameNew, "Rename new file"),
		setting.NewChoice(OverwriteRenameExisting, "Rename existing file"),
	},
		setting.WithDisplayName("Overwrite mode"),
		setting.WithDescription("What to do when a file with the same name already exists"),
	)
	if err != nil {
		return err
	}

	merge := setting.NewBool(MergeLayerGroups, false,
		setting.WithDisplayName("Merge layer groups"),
		setting.WithDescription("Export each top-level layer group as a single image"))
	folders := setting.NewBool(LayerGroupsAsFolders, false,
		setting.WithDisplayName("Treat layer groups as folders"),
		setting.WithDescription("Create a subdirectory for each layer group"))
	useImageSize := setting.NewBool(UseImageSize, false,
		setting.WithDisplayName("Use image size"),
		setting.WithDescription("Export layers with the size of the image instead of the layer"))
	autocrop := setting.NewBool(Autocrop, false,
		setting.WithDisplayName("Autocrop"),
		setting.WithDescription("Crop layers to the bounds of their content"))

	for _, s := range []*setting.Setting{
		setting.NewNonEmptyString(FileExtension, "png",
			setting.WithDisplayName("File extension"),
			setting.WithDescription("Format of the exported images, given by its extension"),
			setting.WithErrorMessage(setting.MsgInvalidValue, "you need to specify a file extension")),
		setting.NewString(OutputDirectory, ".",
			setting.WithDisplayName("Output directory"),
			setting.WithDescription("Directory the layers are exported to")),
		overwrite,
		folders,
		merge,
		setting.NewBool(IgnoreInvisible, false,
			setting.WithDisplayName("Ignore invisible layers"),
			setting.WithDescription("Skip layers that are hidden in the image")),
		autocrop,
		useImageSize,
	} {
		if err := b.Add(s); err != nil {
			return err
		}
	}

	if err := merge.SetStreamlineFunc(StreamlineMergeLayerGroups, folders); err != nil {
		return err
	}
	return useImageSize.SetStreamlineFunc(StreamlineUseImageSize, autocrop)
}

// StreamlineMergeLayerGroups turns off and locks layer_groups_as_folders
// while merging is on.
func StreamlineMergeLayerGroups(merge *setting.Setting, deps []*setting.Setting) error {
	folders := deps[0]
	if merge.BoolValue() {
		if err := folders.SetValue(false); err != nil {
			return err
		}
		folders.SetUIEnabled(false)
		return nil
	}
	folders.SetUIEnabled(true)
	return nil
}

// StreamlineUseImageSize hides autocrop unless layers keep their own size.
func StreamlineUseImageSize(useImageSize *setting.Setting, deps []*setting.Setting) error {
	deps[0].SetUIVisible(!useImageSize.BoolValue())
	return nil
}

// Snapshot reads the current values of c.
func Snapshot(c *container.Container) Options {
	mode := c.MustGet(OverwriteMode)
	modeID, _ := mode.EnumKind().ID(mode.IntValue())

	return Options{
		FileExtension:        c.MustGet(FileExtension).StringValue(),
		OutputDirectory:      c.MustGet(OutputDirectory).StringValue(),
		OverwriteMode:        modeID,
		LayerGroupsAsFolders: c.MustGet(LayerGroupsAsFolders).BoolValue(),
		MergeLayerGroups:     c.MustGet(MergeLayerGroups).BoolValue(),
		IgnoreInvisible:      c.MustGet(IgnoreInvisible).BoolValue(),
		Autocrop:             c.MustGet(Autocrop).BoolValue(),
		UseImageSize:         c.MustGet(UseImageSize).BoolValue(),
	}
}
