package sink

import (
	"encoding/json"

	"github.com/matzehuels/infinicanvas/pkg/core/visibility"
)

// RenderJSON encodes the pass with its visible items in paint order.
func RenderJSON(p *visibility.Pass) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}
