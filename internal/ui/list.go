package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/lectern/internal/formatter"
	"github.com/desertthunder/lectern/internal/models"
)

var (
	_ list.Item = folderItem{}
	_ list.Item = fileItem{}
)

// folderItem wraps [models.Folder] to implement [list.Item].
type folderItem struct {
	folder models.Folder
}

func (i folderItem) FilterValue() string { return i.folder.Name }
func (i folderItem) Title() string       { return i.folder.Name }
func (i folderItem) Description() string {
	if len(i.folder.Files) == 1 {
		return "1 file"
	}
	return fmt.Sprintf("%d files", len(i.folder.Files))
}

// fileItem wraps [models.File] to implement [list.Item].
type fileItem struct {
	file models.File
}

func (i fileItem) FilterValue() string { return i.file.Name }
func (i fileItem) Title() string       { return i.file.Name }
func (i fileItem) Description() string {
	desc := i.file.ID.String()
	if i.file.Size > 0 {
		desc = fmt.Sprintf("%s • %s", desc, formatter.FormatSize(i.file.Size))
	}
	if i.file.ContentType != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.file.ContentType)
	}
	return desc
}

func folderItems(folders []models.Folder) []list.Item {
	items := make([]list.Item, len(folders))
	for i, f := range folders {
		items[i] = folderItem{folder: f}
	}
	return items
}

func fileItems(files []models.File) []list.Item {
	items := make([]list.Item, len(files))
	for i, f := range files {
		items[i] = fileItem{file: f}
	}
	return items
}
