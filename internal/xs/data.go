package xs

// Point-wise approximations of ENDF/B-VIII evaluations on a common grid.

var grid = []float64{
	1e-5, 0.0253, 0.1, 1.0, 10.0,
	100.0, 1000.0, 1e4, 1e5, 1e6,
	2e6, 10e6, 20e6,
}

const FissileThreshold = 40e3 // [eV]
const FertileThreshold = 45e3 // [eV]

func U235Data() Data {
	return Data{
		Energy: append([]float64(nil), grid...),
		Total: []float64{
			2500.0, 698.0, 280.0, 100.0, 60.0,
			35.0, 20.0, 15.0, 10.0, 7.5,
			7.2, 7.5, 8.0,
		},
		Fission: []float64{
			2100.0, 584.0, 200.0, 40.0, 20.0,
			15.0, 7.0, 2.5, 1.5, 1.2,
			1.3, 2.2, 2.0,
		},
		Capture: []float64{
			350.0, 99.0, 40.0, 10.0, 5.0,
			4.0, 3.0, 1.5, 0.6, 0.1,
			0.05, 0.01, 0.01,
		},
		Inelastic: []float64{
			0.0, 0.0, 0.0, 0.0, 0.0,
			0.0, 0.0, 0.0, 0.5, 1.5,
			1.8, 2.0, 2.0,
		},
		Threshold: FissileThreshold,
	}
}

func U238Data() Data {
	return Data{
		Energy: append([]float64(nil), grid...),
		Total: []float64{
			400.0, 12.0, 10.5, 15.0, 25.0,
			20.0, 15.0, 13.0, 10.0, 7.5,
			7.2, 7.5, 7.8,
		},
		Fission: []float64{
			1e-9, 1e-9, 1e-9, 1e-9, 1e-9,
			1e-9, 1e-9, 1e-5, 1e-3, 0.05,
			0.55, 1.0, 1.2,
		},
		Capture: []float64{
			6.0, 2.68, 1.5, 0.5, 20.0, // resonance
			1.5, 0.8, 0.4, 0.15, 0.13,
			0.05, 0.01, 0.005,
		},
		Inelastic: []float64{
			0.0, 0.0, 0.0, 0.0, 0.0,
			0.0, 0.0, 0.0, 0.8, 2.5,
			2.8, 2.5, 2.4,
		},
		Threshold: FertileThreshold,
	}
}

// DefaultGrid returns the energy grid of the built-in tables [eV].
func DefaultGrid() []float64 {
	return append([]float64(nil), grid...)
}

func U235() *Table {
	return MustNewTable("U235", U235Data())
}

func U238() *Table {
	return MustNewTable("U238", U238Data())
}
