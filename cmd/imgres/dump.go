package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/imgres"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <ref>",
	Short: "Write frames as PNG files",
	Long: `Composite every frame of a resource at the requested size and write it as
frame_NNNN.png. Width and height default to the intrinsic size. Video and
vector resources produce a single frame.`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringP("out", "o", ".", "output directory")
	dumpCmd.Flags().Int("width", 0, "frame width (0 = intrinsic)")
	dumpCmd.Flags().Int("height", 0, "frame height (0 = intrinsic)")
	dumpCmd.Flags().Int("frames", 0, "maximum number of frames (0 = all)")
}

func runDump(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	limit, _ := cmd.Flags().GetInt("frames")

	r := imgres.OpenContext(cmd.Context(), args[0], resourceOptions()...)
	defer r.Dispose()
	if !r.Loaded() {
		return r.Err()
	}

	size := r.Size()
	if width <= 0 {
		width = size.X
	}
	if height <= 0 {
		height = size.Y
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%s has no intrinsic size; pass --width and --height", r.Ref())
	}

	n := 1
	if r.Kind() == imgres.KindAnimated {
		n = int(r.FrameCount())
	}
	if limit > 0 {
		n = min(n, limit)
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for i := range n {
		img, err := r.RenderFrame(i, width, height)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		path := filepath.Join(out, fmt.Sprintf("frame_%04d.png", i))
		if err := writePNG(path, img); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
