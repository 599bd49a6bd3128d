package driven

import (
	"context"
	"errors"
)

// ErrTileNotFound indicates the upstream has no tile at the requested address.
var ErrTileNotFound = errors.New("tile not found")

// Tile is a single raster map tile.
type Tile struct {
	ContentType string
	Data        []byte
}

// TileSource defines the driven port for fetching map tiles.
type TileSource interface {
	FetchTile(ctx context.Context, z, x, y int) (*Tile, error)
}
