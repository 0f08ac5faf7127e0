package ivf

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-video/engine/media"
)

// FileAsset is a media.AssetHandle for an IVF file on disk.
type FileAsset struct {
	// Path is the file to open.
	Path string
	// Options are applied to every source opened from this asset.
	Options []SourceBuilderOption
}

var _ media.AssetHandle = FileAsset{}

// Open opens the file and returns an unprepared source that closes it on Release.
func (a FileAsset) Open() (media.MediaSource, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ivf file %q: %w", a.Path, err)
	}
	return NewSource(f, a.Options...), nil
}

// BytesAsset is a media.AssetHandle for an IVF stream held in memory, e.g. from go:embed.
type BytesAsset struct {
	Data    []byte
	Options []SourceBuilderOption
}

var _ media.AssetHandle = BytesAsset{}

// Open returns an unprepared source reading from a private reader over Data.
func (a BytesAsset) Open() (media.MediaSource, error) {
	if len(a.Data) == 0 {
		return nil, ErrEmptyAsset
	}
	return NewSource(bytes.NewReader(a.Data), a.Options...), nil
}
