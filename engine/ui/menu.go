package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewpoint"
)

type menuImpl struct {
	entries []config.MenuEntry
	byKey   map[uint32]string
}

// Menu maps keys to viewpoint ids. Entries keep their configured order.
type Menu interface {
	// Entries returns a copy of the menu entries in display order.
	//
	// Returns:
	//   - []config.MenuEntry: the entries
	Entries() []config.MenuEntry

	// Lookup returns the viewpoint id bound to a key code.
	//
	// Parameters:
	//   - key: the key code (see common.KeyName)
	//
	// Returns:
	//   - string: the viewpoint id
	//   - bool: false when nothing is bound to key
	Lookup(key uint32) (string, bool)

	// Hint returns a one-line summary such as "1 Satellite  2 Machine gun".
	//
	// Returns:
	//   - string: the summary, empty when no entry has a key
	Hint() string

	// Print writes one line per entry.
	//
	// Parameters:
	//   - w: the destination
	//
	// Returns:
	//   - error: the first write error
	Print(w io.Writer) error
}

var _ Menu = &menuImpl{}

// NewMenu builds a menu from configured entries. Entries without a key are listed
// but cannot be triggered from the keyboard. Every id must name a viewpoint.
//
// Parameters:
//   - entries: the menu entries in display order
//
// Returns:
//   - Menu: the menu
//   - error: error if an id is not a viewpoint, or a key name is unknown or bound twice
func NewMenu(entries []config.MenuEntry) (Menu, error) {
	m := &menuImpl{
		entries: append([]config.MenuEntry(nil), entries...),
		byKey:   make(map[uint32]string, len(entries)),
	}
	for _, e := range m.entries {
		if _, err := viewpoint.Lookup(e.ID); err != nil {
			return nil, fmt.Errorf("menu entry: %w", err)
		}
		if e.Key == "" {
			continue
		}
		code, err := common.ParseKey(e.Key)
		if err != nil {
			return nil, fmt.Errorf("menu entry %q: %w", e.ID, err)
		}
		if other, dup := m.byKey[code]; dup {
			return nil, fmt.Errorf("menu key %q bound to both %q and %q", e.Key, other, e.ID)
		}
		m.byKey[code] = e.ID
	}
	return m, nil
}

func (m *menuImpl) Entries() []config.MenuEntry {
	return append([]config.MenuEntry(nil), m.entries...)
}

func (m *menuImpl) Lookup(key uint32) (string, bool) {
	id, ok := m.byKey[key]
	return id, ok
}

func (m *menuImpl) Hint() string {
	parts := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		if e.Key == "" {
			continue
		}
		parts = append(parts, e.Key+" "+label(e))
	}
	return strings.Join(parts, "  ")
}

func (m *menuImpl) Print(w io.Writer) error {
	for _, e := range m.entries {
		key := e.Key
		if key == "" {
			key = "-"
		}
		if _, err := fmt.Fprintf(w, "  [%s] %-18s %s\n", key, label(e), e.ID); err != nil {
			return err
		}
	}
	return nil
}

func label(e config.MenuEntry) string {
	return common.Coalesce(e.Label, e.ID)
}
