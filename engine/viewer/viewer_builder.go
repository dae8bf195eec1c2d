package viewer

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader"
	"github.com/Carmen-Shannon/oxy-viewer/engine/ui"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
type ViewerBuilderOption func(*Viewer)

// WithConfig sets the viewer settings. Defaults to config.Default().
//
// Parameters:
//   - cfg: the settings
//
// Returns:
//   - ViewerBuilderOption: a function that applies the settings to a viewer
func WithConfig(cfg config.Config) ViewerBuilderOption {
	return func(v *Viewer) {
		v.cfg = cfg
	}
}

// WithLoader replaces the asset loader built from the config.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - ViewerBuilderOption: a function that applies the loader to a viewer
func WithLoader(l loader.Loader) ViewerBuilderOption {
	return func(v *Viewer) {
		v.loader = l
	}
}

// WithIndicator sets where load progress is shown. Defaults to a log indicator.
//
// Parameters:
//   - ind: the indicator
//
// Returns:
//   - ViewerBuilderOption: a function that applies the indicator to a viewer
func WithIndicator(ind ui.ProgressIndicator) ViewerBuilderOption {
	return func(v *Viewer) {
		v.indicator = ind
	}
}

// WithMenu replaces the menu built from the config.
func WithMenu(m ui.Menu) ViewerBuilderOption {
	return func(v *Viewer) {
		v.menu = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *Viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}
