package ui

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type titleRecorder struct {
	titles []string
}

func (r *titleRecorder) SetTitle(title string) {
	r.titles = append(r.titles, title)
}

func TestTitleIndicator(t *testing.T) {
	rec := &titleRecorder{}
	ind := NewTitleIndicator(rec, "oxy-viewer")
	assert.False(t, ind.Visible())

	ind.SetText("Loading: 12.50%")
	assert.True(t, ind.Visible())
	assert.Equal(t, "Loading: 12.50%", ind.Text())
	assert.Equal(t, "oxy-viewer - Loading: 12.50%", rec.titles[len(rec.titles)-1])

	ind.Hide()
	assert.False(t, ind.Visible())
	assert.Equal(t, "Loading: 12.50%", ind.Text(), "hiding keeps the last text")
	assert.Equal(t, "oxy-viewer", rec.titles[len(rec.titles)-1])
}

func TestLogIndicatorSkipsRepeats(t *testing.T) {
	var buf bytes.Buffer
	ind := NewLogIndicator(slog.New(slog.NewTextHandler(&buf, nil)))

	ind.SetText("Loading: 50.00%")
	ind.SetText("Loading: 50.00%")
	ind.SetText("Loading: 100.00%")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "Loading: 50.00%"))
	assert.Contains(t, out, "Loading: 100.00%")
	assert.Contains(t, out, "component=indicator")

	ind.Hide()
	assert.False(t, ind.Visible())
}

func TestMultiIndicator(t *testing.T) {
	rec := &titleRecorder{}
	title := NewTitleIndicator(rec, "v")
	logged := NewLogIndicator(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ind := NewMultiIndicator(title, nil, logged)

	ind.SetText("Loading failed: falcon")
	assert.Equal(t, "Loading failed: falcon", title.Text())
	assert.Equal(t, "Loading failed: falcon", logged.Text())
	assert.Equal(t, "Loading failed: falcon", ind.Text())

	ind.Hide()
	assert.False(t, title.Visible())
	assert.False(t, logged.Visible())
	assert.False(t, ind.Visible())

	empty := NewMultiIndicator()
	empty.SetText("x")
	assert.Equal(t, "", empty.Text())
	assert.False(t, empty.Visible())
}

func TestDefaultMenu(t *testing.T) {
	m, err := NewMenu(config.DefaultMenu())
	require.NoError(t, err)

	id, ok := m.Lookup(common.Key1)
	require.True(t, ok)
	assert.Equal(t, "satellite", id)

	id, ok = m.Lookup(common.Key6)
	require.True(t, ok)
	assert.Equal(t, "warpDrive", id)

	_, ok = m.Lookup(common.Key7)
	assert.False(t, ok)

	assert.True(t, strings.HasPrefix(m.Hint(), "1 Satellite  2 Machine gun"))
	assert.Len(t, m.Entries(), 6)
}

func TestMenuRejectsUnknownIDs(t *testing.T) {
	_, err := NewMenu([]config.MenuEntry{{ID: "hyperspace", Key: "h"}})
	assert.ErrorIs(t, err, viewpoint.ErrUnknownViewpoint)
}

func TestMenuCustomEntries(t *testing.T) {
	m, err := NewMenu([]config.MenuEntry{
		{ID: "warpDrive", Key: "h"},
		{ID: "frontal", Label: "Front"},
	})
	require.NoError(t, err)

	id, ok := m.Lookup('H')
	require.True(t, ok)
	assert.Equal(t, "warpDrive", id)
	assert.Equal(t, "h warpDrive", m.Hint(), "unlabelled entries show their id, keyless entries are omitted")

	var buf bytes.Buffer
	require.NoError(t, m.Print(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[h]")
	assert.Contains(t, lines[1], "[-]")
	assert.Contains(t, lines[1], "Front")
}

func TestMenuRejectsBadKeys(t *testing.T) {
	_, err := NewMenu([]config.MenuEntry{{ID: "frontal", Key: "F13"}})
	assert.Error(t, err)

	_, err = NewMenu([]config.MenuEntry{{ID: "frontal", Key: "1"}, {ID: "sidePod", Key: "1"}})
	assert.Error(t, err)
}

func TestMenuEntriesAreCopied(t *testing.T) {
	entries := []config.MenuEntry{{ID: "frontal", Key: "3"}}
	m, err := NewMenu(entries)
	require.NoError(t, err)

	entries[0].ID = "changed"
	got := m.Entries()
	got[0].ID = "also changed"
	assert.Equal(t, "frontal", m.Entries()[0].ID)
}
