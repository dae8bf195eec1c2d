// Command oxy-viewer opens a window showing a glTF model with an orbit camera
// and animated viewpoints.
//
// Controls:
//
//	Left drag    - Orbit
//	Right drag   - Pan (middle drag too)
//	Scroll       - Zoom
//	1-6          - Fly to a viewpoint
//	Esc          - Quit
package main

import (
	"context"
	"os"
	"runtime"

	"github.com/charmbracelet/fang"
)

func init() {
	// GLFW must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := fang.Execute(context.Background(), newRootCommand()); err != nil {
		os.Exit(1)
	}
}
