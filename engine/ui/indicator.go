// Package ui adapts viewer state to what the host can show: a progress indicator
// and a keyboard menu of viewpoints.
package ui

import (
	"log/slog"
	"sync"
)

// ProgressIndicator shows short status text while an asset loads.
type ProgressIndicator interface {
	// SetText replaces the displayed text and shows the indicator.
	//
	// Parameters:
	//   - text: the status text
	SetText(text string)

	// Hide removes the indicator.
	Hide()

	// Text returns the last text set.
	//
	// Returns:
	//   - string: the text
	Text() string

	// Visible reports whether the indicator is shown.
	//
	// Returns:
	//   - bool: false after Hide
	Visible() bool
}

// TitleSetter is anything with a title bar, such as window.Window.
type TitleSetter interface {
	SetTitle(title string)
}

// indicatorState is the text and visibility shared by every indicator.
type indicatorState struct {
	mu      *sync.Mutex
	text    string
	visible bool
}

func newIndicatorState() indicatorState {
	return indicatorState{mu: &sync.Mutex{}}
}

func (s *indicatorState) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *indicatorState) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// titleIndicator shows the text as a suffix of the window title.
type titleIndicator struct {
	indicatorState
	target    TitleSetter
	baseTitle string
}

var _ ProgressIndicator = &titleIndicator{}

// NewTitleIndicator creates an indicator that appends its text to a window title.
// While hidden the title is baseTitle alone.
//
// Parameters:
//   - target: the window whose title is updated
//   - baseTitle: the title without any status text
//
// Returns:
//   - ProgressIndicator: the indicator
func NewTitleIndicator(target TitleSetter, baseTitle string) ProgressIndicator {
	return &titleIndicator{
		indicatorState: newIndicatorState(),
		target:         target,
		baseTitle:      baseTitle,
	}
}

func (t *titleIndicator) SetText(text string) {
	t.mu.Lock()
	t.text = text
	t.visible = true
	title := t.baseTitle + " - " + text
	t.mu.Unlock()
	t.target.SetTitle(title)
}

func (t *titleIndicator) Hide() {
	t.mu.Lock()
	t.visible = false
	title := t.baseTitle
	t.mu.Unlock()
	t.target.SetTitle(title)
}

// logIndicator writes each distinct text to a logger.
type logIndicator struct {
	indicatorState
	logger *slog.Logger
}

var _ ProgressIndicator = &logIndicator{}

// NewLogIndicator creates an indicator that logs its text at info level.
// Repeated identical text is logged once.
//
// Parameters:
//   - logger: the destination logger
//
// Returns:
//   - ProgressIndicator: the indicator
func NewLogIndicator(logger *slog.Logger) ProgressIndicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &logIndicator{
		indicatorState: newIndicatorState(),
		logger:         logger.With("component", "indicator"),
	}
}

func (l *logIndicator) SetText(text string) {
	l.mu.Lock()
	changed := text != l.text || !l.visible
	l.text = text
	l.visible = true
	l.mu.Unlock()
	if changed {
		l.logger.Info(text)
	}
}

func (l *logIndicator) Hide() {
	l.mu.Lock()
	l.visible = false
	l.mu.Unlock()
	l.logger.Debug("indicator hidden")
}

// multiIndicator fans out to several indicators.
type multiIndicator []ProgressIndicator

var _ ProgressIndicator = multiIndicator{}

// NewMultiIndicator combines indicators so that every call reaches each of them.
// Text and Visible report the first indicator.
//
// Parameters:
//   - indicators: the indicators to drive, nil entries are skipped
//
// Returns:
//   - ProgressIndicator: the combined indicator
func NewMultiIndicator(indicators ...ProgressIndicator) ProgressIndicator {
	m := make(multiIndicator, 0, len(indicators))
	for _, ind := range indicators {
		if ind != nil {
			m = append(m, ind)
		}
	}
	return m
}

func (m multiIndicator) SetText(text string) {
	for _, ind := range m {
		ind.SetText(text)
	}
}

func (m multiIndicator) Hide() {
	for _, ind := range m {
		ind.Hide()
	}
}

func (m multiIndicator) Text() string {
	if len(m) == 0 {
		return ""
	}
	return m[0].Text()
}

func (m multiIndicator) Visible() bool {
	return len(m) > 0 && m[0].Visible()
}
