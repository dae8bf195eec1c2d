package window

// WindowBuilderOption configures a window before the platform window is created.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the base title bar text. Defaults to "oxy-viewer".
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithResizable controls whether the user can resize the window. Defaults to true.
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithSize sets the initial logical client size. Non-positive dimensions keep the default 1280x720.
//
// Parameters:
//   - width: client width in screen coordinates
//   - height: client height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width = width
		}
		if height > 0 {
			w.height = height
		}
	}
}

// WithSizeLimits bounds interactive resizing. A zero max leaves that axis unbounded;
// negative values are treated as zero.
//
// Parameters:
//   - minWidth, minHeight: smallest client size
//   - maxWidth, maxHeight: largest client size, 0 for none
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth, w.minHeight = max(minWidth, 0), max(minHeight, 0)
		w.maxWidth, w.maxHeight = max(maxWidth, 0), max(maxHeight, 0)
	}
}
