package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/plcopy/internal/services"
)

var _ list.Item = videoItem{}

// videoItem wraps [services.PlaylistItem] to implement [list.Item].
type videoItem struct {
	item services.PlaylistItem
}

func (i videoItem) FilterValue() string { return i.item.Title + " " + i.item.VideoID }
func (i videoItem) Title() string {
	if i.item.Title == "" {
		return i.item.VideoID
	}
	return i.item.Title
}
func (i videoItem) Description() string {
	return fmt.Sprintf("#%d • %s", i.item.Position+1, i.item.VideoID)
}

func newVideoList(items []services.PlaylistItem, title string, width, height int) list.Model {
	entries := make([]list.Item, len(items))
	for i, it := range items {
		entries[i] = videoItem{item: it}
	}

	l := list.New(entries, list.NewDefaultDelegate(), width, height)
	l.Title = title
	return l
}
