// Package viewpoint holds the predefined camera viewpoints and animates the camera between them.
package viewpoint

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownViewpoint is returned when a viewpoint id is not in the table.
var ErrUnknownViewpoint = errors.New("unknown viewpoint")

// Viewpoint is a camera pose: where the camera sits and the point it orbits.
type Viewpoint struct {
	// Label is the human-readable menu text.
	Label string
	// Position is the world-space camera position.
	Position [3]float32
	// LookAt is the world-space orbit target.
	LookAt [3]float32

	order int
}

// table is keyed by the ids used in menu bindings.
var table = map[string]Viewpoint{
	"satellite": {
		Label:    "Satellite",
		Position: [3]float32{2.2363356030075563, 2.820678683267509, 2.684753953671324},
		LookAt:   [3]float32{0, 2, -0.5},
		order:    0,
	},
	"machineGun": {
		Label:    "Machine gun",
		Position: [3]float32{0.5760624910715781, 3.051817229890369, 0.4757104852229018},
		LookAt:   [3]float32{-0.3332266219157822, 2.2358192826928676, -0.5257846919885497},
		order:    1,
	},
	"frontal": {
		Label:    "Frontal",
		Position: [3]float32{-1.6956829343157755, 2.911476432638847, 6.006285240809736},
		LookAt:   [3]float32{-0.12111220935307855, 1.2546289604273042, -0.3443322137823006},
		order:    2,
	},
	"sidePod": {
		Label:    "Side pod",
		Position: [3]float32{-3.842264605996623, 2.531246896437086, 3.2344043181914017},
		LookAt:   [3]float32{-1.2075112121972915, 1.598525061225214, -1.0790626359441582},
		order:    3,
	},
	"airConditioning": {
		Label:    "Air conditioning",
		Position: [3]float32{-0.5680513933598731, 3.8647939449647435, -2.8722469298357245},
		LookAt:   [3]float32{-0.03259431926139941, 2.3942898229981293, -1.899660839467895},
		order:    4,
	},
	"warpDrive": {
		Label:    "Warp drive",
		Position: [3]float32{-2.2960948510395087, 2.3045136500926064, -3.7251187837076998},
		LookAt:   [3]float32{-0.22176763221662282, 1.7171330696876503, -1.974151811476235},
		order:    5,
	},
}

// Lookup returns the viewpoint registered under id.
//
// Parameters:
//   - id: the viewpoint id, e.g. "satellite"
//
// Returns:
//   - Viewpoint: the camera pose
//   - error: ErrUnknownViewpoint wrapped with the id if it is not in the table
func Lookup(id string) (Viewpoint, error) {
	vp, ok := table[id]
	if !ok {
		return Viewpoint{}, fmt.Errorf("%w: %q", ErrUnknownViewpoint, id)
	}
	return vp, nil
}

// IDs returns every viewpoint id in menu order.
//
// Returns:
//   - []string: the ids
func IDs() []string {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return table[a].order - table[b].order
	})
	return ids
}
