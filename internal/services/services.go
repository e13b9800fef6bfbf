// package services defines the HTTP API clients the transfer runs against
//
// YouTube Data API v3 (playlistItems list/insert)
package services

import (
	"context"
)

// Lister enumerates the entries of a playlist in playlist order.
type Lister interface {
	// ListPlaylistItems pages through playlistID until no continuation token remains.
	// A failure at any page discards everything fetched so far and returns a nil slice.
	ListPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error)
}

// Inserter appends a single video to a playlist.
type Inserter interface {
	// InsertPlaylistItem appends videoID to playlistID. A nil error means the API answered 2xx.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error
}

// PlaylistService is the full surface the transfer engine needs from a provider.
type PlaylistService interface {
	Lister
	Inserter

	// Name returns the name of the service (e.g., "YouTube")
	Name() string
}

// PlaylistItem represents one playable entry of a playlist
type PlaylistItem struct {
	ID       string `json:"id"`       // playlistItem resource ID
	VideoID  string `json:"video_id"` // Item identifier carried over to the destination
	Title    string `json:"title,omitempty"`
	Position int    `json:"position"`
}

// VideoIDs extracts the ordered item identifiers from items.
func VideoIDs(items []PlaylistItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.VideoID)
	}
	return ids
}
