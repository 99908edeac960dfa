package constants

const ThermalEnergy float64 = 0.025 // [eV]
const MeV float64 = 1e6             // [eV]

const NuThermal float64 = 2.43 // neutrons per fission at E <= NuBoundary
const NuFast float64 = 2.50
const NuBoundary float64 = 1. // [eV]

const WattA float64 = 0.988       // [MeV^-1]
const WattB float64 = 2.249       // [MeV^-1]
const WattMaxEnergy float64 = 15. // [MeV]
const WattEnvelope float64 = 0.4  // rejection envelope, below the density peak of about 0.81
const WattAttempts int = 100000

const InelasticMinEnergy float64 = 50e3  // [eV]
const InelasticMaxEnergy float64 = 400e3 // [eV]
const InelasticFallback float64 = 0.9
const ElasticMinFactor float64 = 0.98

const Quantile95 = 1.96
