package ffmpeg

import (
	"path/filepath"
	"testing"

	"github.com/gogpu/imgres/video"
)

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"), video.NewConfig(false))
	if err == nil {
		t.Fatal("Open(missing file) succeeded")
	}
}
