package xs

import (
	"fmt"
	"math"
	"slices"

	"github.com/wildstyl3r/lxgata"
)

const barn = 1e-28 // [m^2]

// LXCat blocks carrying neutron channels. A set without an EFFECTIVE block
// gets its total as the sum of every block, ELASTIC included.
var channelOfKind = map[lxgata.CollisionType]Channel{
	lxgata.EFFECTIVE:  Total,
	lxgata.IONIZATION: Fission,
	lxgata.ATTACHMENT: Capture,
	lxgata.EXCITATION: Inelastic,
}

func LoadLXCat(name, path string, energyGrid []float64) (*Table, error) {
	collisions, err := lxgata.LoadCrossSections(path)
	if err != nil {
		return nil, fmt.Errorf("invalid cross section file %s: %w", path, err)
	}
	return FromCollisions(name, &collisions, energyGrid)
}

// crossSectionAt interpolates linearly between the data points of c.
// Collision.CrossSectionAt returns the first value over the whole first data
// segment, which for a thresholded block is the zero put at its threshold.
func crossSectionAt(c *lxgata.Collision, e float64) float64 {
	if len(c.Data) == 0 {
		return 0
	}
	if c.ExpandedData == nil && len(c.Data) > 1 && c.Data[0].Energy <= e && e < c.Data[1].Energy {
		lo, hi := c.Data[0], c.Data[1]
		return lo.Value + (e-lo.Energy)*(hi.Value-lo.Value)/(hi.Energy-lo.Energy)
	}
	return c.CrossSectionAt(e)
}

// FromCollisions tabulates an LXCat collision set at the given energies [eV].
// Cross sections are read in m^2 and stored in barns, the inelastic threshold
// is the lowest nonzero EXCITATION threshold, 0 when there is none.
func FromCollisions(name string, collisions *lxgata.Collisions, energyGrid []float64) (*Table, error) {
	if len(energyGrid) < 2 {
		return nil, fmt.Errorf("%s: energy grid needs at least 2 points, got %d", name, len(energyGrid))
	}
	if collisions == nil || len(*collisions) == 0 {
		return nil, fmt.Errorf("%s: empty collision set", name)
	}

	hasEffective, hasExcitation := false, false
	for i := range *collisions {
		switch (*collisions)[i].Type {
		case lxgata.EFFECTIVE:
			hasEffective = true
		case lxgata.EXCITATION:
			hasExcitation = true
		}
	}

	n := len(energyGrid)
	d := Data{
		Energy:    slices.Clone(energyGrid),
		Total:     make([]float64, n),
		Fission:   make([]float64, n),
		Capture:   make([]float64, n),
		Inelastic: make([]float64, n),
	}
	if hasExcitation {
		// MaxFloat64 when every EXCITATION threshold is 0
		if threshold := collisions.MinThresholdOfKind(lxgata.EXCITATION); threshold < math.MaxFloat64 {
			d.Threshold = threshold
		}
	}
	target := d.channels()
	for k, e := range energyGrid {
		for i := range *collisions {
			sigma := crossSectionAt(&(*collisions)[i], e) / barn
			channel, known := channelOfKind[(*collisions)[i].Type]
			if known && channel != Total {
				target[channel][k] += sigma
			}
			if !hasEffective || (known && channel == Total) {
				target[Total][k] += sigma
			}
		}
	}
	return NewTable(name, d)
}
