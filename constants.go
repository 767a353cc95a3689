package ppp

import "math"

// Physical and system constants, ported from the teacher's types.go/common.go
// top-of-file const blocks (RTKLIB rtkcmn.c/rtkcmn.h equivalents).
const (
	PI      = math.Pi
	D2R     = PI / 180.0
	R2D     = 180.0 / PI
	CLIGHT  = 299792458.0       // speed of light (m/s)
	FREQ1   = 1.57542e9         // L1/E1 frequency (Hz)
	AU      = 149597870691.0   // astronomical unit (m)
	RE_WGS84 = 6378137.0        // WGS84 earth semimajor axis (m)
	FE_WGS84 = 1.0 / 298.257223563
	OMGE    = 7.2921151467e-5   // earth angular velocity (rad/s)
)

// Navigation system bitmask, ported from types.go.
const (
	SysGPS = 0x01
	SysSBS = 0x02
	SysGLO = 0x04
	SysGAL = 0x08
	SysQZS = 0x10
	SysCMP = 0x20
	SysIRN = 0x40
)

// NSYS is the number of supported constellations (one clock bias each); see
// Layout.Clock in index.go.
const NSYS = 7

// MAXSAT is the size of the fixed per-satellite arena (C9 design note:
// arena-addressed fixed array, no hashing, no allocation on the hot path).
const MAXSAT = 223

// MAXOBS bounds a single epoch's observation list.
const MAXOBS = 96

// NFREQ is the max number of tracked carrier frequencies per satellite.
const NFREQ = 3

// Observation code identifiers relevant to DCB bookkeeping (subset of the
// teacher's CODE_??? table — only what corrector.go needs).
const (
	CodeL1C = 1
	CodeL2C = 14
)

// Error factors by system, used by the measurement-variance model (C5).
const (
	EfactGPS = 1.0
	EfactGLO = 1.5
	EfactGAL = 1.0
	EfactQZS = 1.0
	EfactCMP = 1.0
	EfactIRN = 1.5
	EfactSBS = 3.0
	EfactGPSL5 = 10.0 // error factor of GPS/QZS L5 (matches teacher PPPVarianceErr)
)

// IonoOpt enumerates ionosphere handling modes (spec.md §6 Configuration).
type IonoOpt int

const (
	IonoOff IonoOpt = iota
	IonoBroadcast
	IonoSBAS
	IonoIFLC
	IonoEst
	IonoTEC
	IonoSTEC
)

// TropOpt enumerates troposphere handling modes.
type TropOpt int

const (
	TropOff TropOpt = iota
	TropSaastamoinen
	TropSBAS
	TropEst
	TropEstGrad
	TropZTD
)

// Mode enumerates the positioning mode (only the PPP variants are in scope;
// spec.md Non-goals exclude relative/DGPS modes).
type Mode int

const (
	ModeKinematic Mode = iota
	ModeStatic
	ModeFixed
)

// ARMode enumerates ambiguity-resolution handling (the search itself is
// external — see AmbiguityResolver in navigation.go).
type ARMode int

const (
	ARModeOff ARMode = iota
	ARModeContinuous
	ARModeInstant
	ARModeFixHold
)

// EphOpt selects the satellite ephemeris/clock source.
type EphOpt int

const (
	EphBroadcast EphOpt = iota
	EphPrecise
	EphSBAS
)

// Status is the solution quality flag returned in Solution.Stat.
type Status int

const (
	StatusNone Status = iota
	StatusFix
	StatusFloat
	StatusSingle
)

// FreqPairMode resolves spec.md §9 Open Question 1: which second frequency
// feeds the iono-free combination when three frequencies are tracked.
type FreqPairMode int

const (
	// FreqPairL1L2 uses frequencies 1 and 2 (matches the teacher's CorrMeas,
	// which tries L1/L2 before L1/L5).
	FreqPairL1L2 FreqPairMode = iota
	// FreqPairL1L3 uses frequencies 1 and 3 (L1/L5-style pairing).
	FreqPairL1L3
)

// Filter tuning constants, ported verbatim from ppp.go.
const (
	MaxIter     = 8    // max number of EKF iterations per epoch
	MaxStdFix   = 0.15 // max std-dev (3D) to accept a fixed solution (m)
	MinNSatSol  = 4     // minimum satellite count for a non-NONE solution
	ThresReject = 4.0   // post-fit outlier rejection threshold (sigma)
)

// PhaseCodeJumpThresh is the mean phase-code offset (m) that must be
// exceeded across at least two active, slip-free ambiguity states before a
// common correction is applied to every bias at that frequency, ppp.go's
// UpdateBiasPPP 0.0005*CLIGHT literal.
const PhaseCodeJumpThresh = 0.0005 * CLIGHT

// Slip-detector constants, ported from ppp.go / enriched per spec.md §4.3.
const (
	MWGapMax   = 10.0 // MW jump that always resets the running statistics (m)
	MWCSMin    = 0.8  // floor on the adaptive MW threshold (m)
	MWArcMax   = 100  // saturation point of the MW arc-length counter
	GapResionDefault = 120 // default outage count before resetting iono state (epochs)
)

// Initial/process-noise variances, ported verbatim from ppp.go (VAR_* block).
var (
	VarPos    = sqr(60.0)
	VarVel    = sqr(10.0)
	VarAcc    = sqr(10.0)
	VarClk    = sqr(60.0)
	VarZTD    = sqr(0.6)
	VarGrad   = sqr(0.01)
	VarDCB    = sqr(30.0)
	VarBias   = sqr(60.0)
	VarIono   = sqr(60.0)
	VarGloIFB = sqr(0.6)
)

func sqr(x float64) float64 { return x * x }
