package ppp

import "time"

// The interfaces below are the "external collaborators" spec.md §1/§6 name
// as out of scope: RINEX/SP3/CLK/ANTEX I/O, broadcast-ephemeris propagation,
// the ambiguity-resolution search, IERS tide models, and SBAS/TEC product
// lookups. The estimator depends on them, never on a concrete file format.

// Ephemeris resolves satellite positions/clocks/health at observation
// transmission time (broadcast propagation or precise-product interpolation
// — the caller's choice, out of scope here).
type Ephemeris interface {
	SatPositions(t time.Time, obs []Observation) ([]SatPosClock, error)
}

// AntennaModel supplies PCO/PCV corrections and satellite-body metadata
// (ANTEX, out of scope).
type AntennaModel interface {
	ReceiverPCV(freq int, az, el float64) float64
	SatellitePCV(sat int, nadir float64) float64
	// SatelliteType returns the antenna/block type string (e.g. "BLOCK
	// IIA"). Nothing in this package calls it; eclipseTest takes no type.
	SatelliteType(sat int) string
}

// CodeBiasProvider supplies differential/SSR code biases.
type CodeBiasProvider interface {
	// DCB returns the P1-C1 / P2-C2 style differential code bias (m) to add
	// to the raw pseudorange for the given satellite/code.
	DCB(sat int, code uint8) float64
	// SSRCodeBias returns an SSR state-space code bias (m), when SSR
	// ephemerides are in use; ok is false if none is available.
	SSRCodeBias(sat int, code uint8) (bias float64, ok bool)
	// UseSSR reports whether SSR biases should be preferred over DCB for
	// this session (mirrors spec.md §4.2's "SSR ephemerides are in use").
	UseSSR() bool
}

// WavelengthTable resolves the carrier wavelength (m) for a satellite/code;
// zero means "not available" (spec.md §4.2 failure mode).
type WavelengthTable interface {
	Wavelength(sat int, code uint8) float64
}

// TideModel supplies the solid-earth/ocean/pole tide displacement at the
// receiver (IERS conventions, out of scope).
type TideModel interface {
	Displacement(t time.Time, recv [3]float64) [3]float64
}

// SBASCorrector supplies SBAS tropo/iono corrections.
type SBASCorrector interface {
	TropCorrection(t time.Time, pos [3]float64, az, el float64) (delay, vari float64, ok bool)
	IonoCorrection(t time.Time, pos [3]float64, az, el float64) (delay, vari float64, ok bool)
}

// TECProvider supplies IONEX/TEC-map slant ionospheric delay.
type TECProvider interface {
	SlantDelay(t time.Time, pos [3]float64, az, el float64) (delay, vari float64, ok bool)
}

// BroadcastIono supplies Klobuchar-style broadcast ionosphere coefficients
// (a0..a3,b0..b3); the model evaluation itself (IonModel in iono.go) stays
// in-repo since only the *product* is external, not the math.
type BroadcastIono interface {
	Coefficients(sys int) (alpha, beta [4]float64, ok bool)
}

// LinearSolver performs the symmetric EKF measurement update (dense GEMM +
// inversion, spec.md §1's "matrix linear-algebra kernel"). No type in the
// repo implements it: ekf.go calls internal/linalg's KalmanUpdate directly.
type LinearSolver interface {
	Update(x, p, h, v, r []float64, n, m int) error
}

// AmbiguityResolver performs integer ambiguity search (LAMBDA, out of
// scope) — only its inputs/outputs are specified. The default
// NoAmbiguityResolver mirrors the teacher's PPPAmbiguity stub.
type AmbiguityResolver interface {
	// Resolve attempts to fix the float ambiguities in x/p (laid out per
	// layout). ok is false if no fixed solution was produced.
	Resolve(x, p []float64, layout Layout) (fixed, fixedP []float64, ratio float64, ok bool)
}

// NoAmbiguityResolver never fixes — PPP-AR's integer search is genuinely
// out of scope (spec.md §1); this exists so Estimator always has a valid
// AmbiguityResolver to call.
type NoAmbiguityResolver struct{}

func (NoAmbiguityResolver) Resolve(x, p []float64, layout Layout) ([]float64, []float64, float64, bool) {
	return nil, nil, 0, false
}

// StatusWriter renders a solution + diagnostics into the line-oriented
// status stream spec.md §6 names ($POS,$VELACC,...). Formatting is
// explicitly out of scope for the estimator's core logic but is provided as
// a default, PPPStatusWriter, in status.go — callers may substitute their
// own.
type StatusWriter interface {
	WriteEpoch(sol Solution, diag []SatDiagnostics) error
}
