package ppp

import "time"

// Observation is one satellite's undifferenced observables for a single
// epoch: per-frequency carrier phase (cycles), pseudorange (m), SNR (dBHz),
// and the loss-of-lock indicator. Ported from the teacher's ObsD, trimmed to
// what the PPP core consumes (Doppler/receiver-id are the caller's concern).
type Observation struct {
	Sat  int // satellite number, 1-based index into the MAXSAT arena
	Time time.Time

	L    [NFREQ]float64 // carrier phase (cycles), 0 = not tracked
	P    [NFREQ]float64 // pseudorange (m), 0 = not tracked
	SNR  [NFREQ]float64 // signal strength (dBHz)
	LLI  [NFREQ]uint8   // loss-of-lock indicator, low two bits are slip flags
	Code [NFREQ]uint8   // observation code (CodeL1C, CodeL2C, ...)
}

// SatPosClock is one satellite's precise position/clock/variance at the
// observation's transmission time, as supplied by the external Ephemeris
// collaborator (spec.md §6).
type SatPosClock struct {
	Sat      int
	Pos      [3]float64 // ECEF position (m), Sagnac-uncorrected
	ClockBias float64   // seconds
	Variance float64    // URA-derived position/clock variance (m^2)
	SVH      int        // sv health flag, <0 means unavailable
}

// SlipProvenance records which detector(s) raised a cycle slip, per
// spec.md §3's "provenance sub-bits".
type SlipProvenance struct {
	LLI bool
	GF  bool
	MW  bool
}

// Slipped reports whether any detector marked a slip.
func (s SlipProvenance) Slipped() bool { return s.LLI || s.GF || s.MW }

// SatState is the per-satellite record carried across epochs (spec.md §3).
// One instance lives at a fixed arena slot (sat-1); no hashing, no
// allocation on the hot path (spec.md §9 design note).
type SatState struct {
	Valid      bool // true once this slot has carried at least one valid obs
	Sys        int
	Az, El     float64
	VisibleF   [NFREQ]bool
	ValidF     [NFREQ]bool // per-sat-per-freq valid-solution flag (Vsat)

	GF float64 // previous geometry-free value (spec.md invariant: updated every epoch)

	MWMean float64 // running MW mean
	MWM2   float64 // running MW second moment
	MWArc  int     // arc length, saturates at MWArcMax, resets to 1 on slip
	MWPrev float64 // previous raw MW sample, for the |mw-mw_prev| gap test

	Slip     [NFREQ]SlipProvenance
	Phw      float64 // phase-windup accumulator (cycles)
	Outc     [NFREQ]int
	Lock     [NFREQ]int
	Slipc    [NFREQ]int
	RejcCode  int
	RejcPhase int

	// LastRejectReason carries the most recent epoch's exclusion reason
	// through to SatDiagnostics.RejectReason; empty when the satellite
	// wasn't excluded this epoch.
	LastRejectReason string

	ResPrefitCode  [NFREQ]float64
	ResPrefitPhase [NFREQ]float64
	ResPostCode    [NFREQ]float64
	ResPostPhase   [NFREQ]float64

	Fix [NFREQ]uint8 // 0 none, 1 fix, 2 float candidate, 3 hold
	SNR [NFREQ]float64
}

// AmbiguityControl tracks cross-satellite fix-and-hold bookkeeping, ported
// from the teacher's AmbC (flags bitset only — LC/LCv belong to the
// out-of-scope LAMBDA search).
type AmbiguityControl struct {
	PairFixed [MAXSAT]bool // upper-triangular pairing bitset for hold mode
	FixCount  int
}

// Solution is the per-epoch output record (spec.md §6 Outputs).
type Solution struct {
	Time   time.Time
	Stat   Status
	Pos    [3]float64 // ECEF (m)
	Cov6   [6]float64 // xx,yy,zz,xy,yz,zx (m^2)
	ClkSys [NSYS]float64 // receiver clock bias per system (m)
	NSat   int
}

// SatDiagnostics is the optional per-satellite output (spec.md §6 Outputs).
type SatDiagnostics struct {
	Sat          int
	Az, El       float64
	ResCode      [NFREQ]float64
	ResPhase     [NFREQ]float64
	Slip         [NFREQ]SlipProvenance
	Lock         [NFREQ]int
	Outage       [NFREQ]int
	MWMean       float64
	MWArc        int
	Ambiguity    [NFREQ]float64
	AmbiguityStd [NFREQ]float64
	RejectReason string
}
