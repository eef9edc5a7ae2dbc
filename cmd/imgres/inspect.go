package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/imgres"
)

var inspectFrames bool

var inspectCmd = &cobra.Command{
	Use:   "inspect <ref>...",
	Short: "Print what each reference opens as",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, ref := range args {
			r := imgres.OpenContext(cmd.Context(), ref, resourceOptions()...)
			printInfo(cmd.OutOrStdout(), r, inspectFrames)
			if !r.Loaded() {
				failed++
			}
			r.Dispose()
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d references failed to load", failed, len(args))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().BoolVar(&inspectFrames, "frames", false, "list per-frame durations")
}

func printInfo(w io.Writer, r *imgres.Resource, frames bool) {
	fmt.Fprintf(w, "%s\n", r.Ref())
	if !r.Loaded() {
		fmt.Fprintf(w, "  error:    %v\n", r.Err())
		return
	}
	size := r.Size()
	fmt.Fprintf(w, "  kind:     %s\n", r.Kind())
	fmt.Fprintf(w, "  size:     %dx%d\n", size.X, size.Y)
	fmt.Fprintf(w, "  frames:   %d\n", r.FrameCount())
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(w, "  duration: %v\n", d.Round(time.Millisecond))
		fmt.Fprintf(w, "  fps:      %.2f\n", r.FrameRate())
	}
	if r.Kind() == imgres.KindAnimated {
		loops := "forever"
		if n := r.LoopCount(); n > 0 {
			loops = fmt.Sprint(n)
		}
		fmt.Fprintf(w, "  loops:    %s\n", loops)
	}
	if r.IsLive() {
		fmt.Fprintln(w, "  live:     true")
	}
	if frames && r.Kind() == imgres.KindAnimated {
		for i := range int(r.FrameCount()) {
			fmt.Fprintf(w, "  %4d  %v\n", i, r.FrameDuration(i))
		}
	}
}
