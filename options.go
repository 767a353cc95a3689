package ppp

// SnrMask holds the per-frequency elevation-dependent SNR floor (dBHz), nine
// nodes at 5, 15, ..., 85 deg (10-deg spacing), ported from types.go's SnrMask.
type SnrMask struct {
	Enabled bool
	Mask    [NFREQ][9]float64
}

// test returns true if snr (dBHz) fails the mask at elevation el (rad) for
// frequency index idx, mirroring common.go's TestSnr.
func (m *SnrMask) test(idx int, el, snr float64) bool {
	if !m.Enabled || idx < 0 || idx >= NFREQ {
		return false
	}
	a := (el*R2D + 5.0) / 10.0
	i := int(a)
	a -= float64(i)
	var minSNR float64
	switch {
	case i < 1:
		minSNR = m.Mask[idx][0]
	case i > 8:
		minSNR = m.Mask[idx][8]
	default:
		minSNR = (1.0-a)*m.Mask[idx][i-1] + a*m.Mask[idx][i]
	}
	return snr < minSNR
}

// Config carries every processing option spec.md §6 names. It is the
// idiomatic rename of the teacher's PrcOpt; configuration *parsing* (from a
// file or flags) is the caller's job — this struct is pure data.
type Config struct {
	Mode     Mode
	Nf       int // number of frequencies tracked: 1, 2, or 3
	Dynamics bool
	IonoOpt  IonoOpt
	TropOpt  TropOpt
	ModeAr   ARMode
	SatEph   EphOpt
	FreqPair FreqPairMode

	Elmin   float64 // elevation mask (rad)
	SnrMask SnrMask

	MaxOut    int     // obs outage count before ambiguity reset
	MinFix    int     // min consecutive fixes to hold
	MaxInno   float64 // pre-fit innovation rejection threshold (m); <=0 disables
	GapResion int     // outage epochs before resetting iono state

	// ErrRatio is the code/phase error ratio per frequency (teacher eratio).
	ErrRatio [NFREQ]float64
	// Err[1..3] are phase error factors a/b/c (m); Err[0] reserved.
	Err [5]float64
	// Prn[0..5]: bias, iono, trop, acc-horizontal, acc-vertical, position
	// process-noise std-devs.
	Prn [6]float64

	// ThresSlip is the GF-combination slip threshold (m).
	ThresSlip float64

	// PosOpt carries the teacher's boolean posopt[0..5] flags. Only two
	// change behaviour here: [0] applies satellite and receiver PCV, and [5]
	// handles day-boundary clock jumps and ambiguity resets. [2] is passed to
	// satYaw, which ignores it (nominal yaw always); [1], [3] and [4] are not
	// read anywhere in the package.
	PosOpt [6]bool

	TideCorr   int // 0 off, 1 solid only, 2 solid+otl+pole
	AntDelRecv [3]float64
	FixedPos   [3]float64 // receiver position for Mode == ModeFixed (ECEF, m)

	// ExSats marks per-satellite exclusion: 0 default, 1 excluded, 2 forced
	// included regardless of NavSys.
	ExSats [MAXSAT]uint8
	NavSys int // bitmask of SysGPS|SysGLO|...
}

// NF returns the number of frequencies folded into the filter state: 1 for
// iono-free combination mode, else Config.Nf (index.go §4.1).
func (c *Config) NF() int {
	if c.IonoOpt == IonoIFLC {
		return 1
	}
	return c.Nf
}

// NP returns the number of position-block states: 9 with dynamics
// (pos/vel/acc), else 3 (position only).
func (c *Config) NP() int {
	if c.Dynamics {
		return 9
	}
	return 3
}

// NT returns the number of troposphere states: 0 off, 1 ZTD-only, 3 with
// horizontal gradients.
func (c *Config) NT() int {
	switch {
	case c.TropOpt < TropEst:
		return 0
	case c.TropOpt == TropEst:
		return 1
	default:
		return 3
	}
}

// NI returns the number of ionosphere states (one per possible satellite,
// only in IonoEst mode).
func (c *Config) NI() int {
	if c.IonoOpt == IonoEst {
		return MAXSAT
	}
	return 0
}

// ND returns the number of receiver-DCB states (present only with a third
// frequency — spec.md §9 Open Question 3).
func (c *Config) ND() int {
	if c.Nf >= 3 {
		return 1
	}
	return 0
}

// DefaultConfig returns a Config with the teacher's documented defaults
// (ppp.go VAR_*/THRES_* block, options.go defaults) for dual-frequency
// iono-free kinematic PPP.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeKinematic,
		Nf:        2,
		Dynamics:  false,
		IonoOpt:   IonoIFLC,
		TropOpt:   TropEst,
		ModeAr:    ARModeOff,
		SatEph:    EphPrecise,
		FreqPair:  FreqPairL1L2,
		Elmin:     10.0 * D2R,
		MaxOut:    5,
		MinFix:    20,
		MaxInno:   0, // disabled
		GapResion: GapResionDefault,
		ErrRatio:  [NFREQ]float64{100, 100, 100},
		Err:       [5]float64{0, 0.003, 0.003, 0, 1},
		Prn:       [6]float64{1e-4, 1e-3, 1e-4, 1e-1, 1e-2, 0},
		ThresSlip: 0.05,
		NavSys:    SysGPS | SysGLO | SysGAL | SysCMP,
	}
}
