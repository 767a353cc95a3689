package ppp

import (
	"math"
	"time"
)

// Measurement model (C5): builds the design matrix, predicted observables,
// and variance for one epoch's corrected observations. Ported from ppp.go's
// PPPResidual/PPPVarianceErr.

// measBatch accumulates the design rows, innovations, and variances for one
// EKF iteration across all visible satellites, mirroring the flat v/H/R
// arrays ppp.go's PPPResidual builds before calling filter_.
type measBatch struct {
	V []float64 // innovations (m), length nv
	H []float64 // design matrix, n x nv column-major (n = state size)
	R []float64 // measurement variances (m^2), length nv, diagonal R

	rowSat     []int
	rowFreq    []int
	rowIsPhase []bool
}

// varModel returns the combined code/phase measurement variance (m^2) for
// constellation sys at elevation el, folded-frequency f, ppp.go's
// PPPVarianceErr. Iono-free combination mode (IFLC) amplifies both terms by
// a factor of 3 before squaring (PPPVarianceErr's fact*=3.0), so the
// variance itself scales by 9; GLONASS code (pseudorange) residuals also
// carry an inter-frequency-bias term added at the PPPResidual call site
// (VAR_GLO_IFB), not folded into PPPVarianceErr itself.
func varModel(cfg *Config, sys int, el float64, f int, isPhase bool) float64 {
	efact := EfactGPS
	switch sys {
	case SysGLO:
		efact = EfactGLO
	case SysGAL:
		efact = EfactGAL
	case SysQZS:
		efact = EfactQZS
	case SysCMP:
		efact = EfactCMP
	case SysIRN:
		efact = EfactIRN
	case SysSBS:
		efact = EfactSBS
	}
	fact := 1.0
	if !isPhase {
		fact *= cfg.ErrRatio[f]
	}
	fact *= efact
	if f == 2 && (sys == SysGPS || sys == SysQZS) {
		fact *= EfactGPSL5
	}
	if cfg.IonoOpt == IonoIFLC {
		fact *= 3.0
	}
	sinEl := math.Sin(el)
	if sinEl < 0.1 {
		sinEl = 0.1
	}
	a, b := fact*cfg.Err[1], fact*cfg.Err[2]/sinEl
	varr := a*a + b*b
	if !isPhase && sys == SysGLO {
		varr += VarGloIFB
	}
	return varr
}

// measurementDeps bundles the external lookups measurement construction
// needs beyond what's already folded into CorrectedObs.
type measurementDeps struct {
	Alpha, Beta [4]float64 // broadcast Klobuchar coefficients, zero-value falls back to defaults
}

// BuildDesignRows constructs satNum's code/phase design rows against the
// linearization point (x, p) — either the session's persisted state for a
// pre-fit pass, or a Kalman-updated working copy for a post-fit pass
// (ekf.go's EKFIteration alternates between the two, never mutating the
// persisted state until an iteration survives rejection). approxPos is the
// receiver position implied by x's position block; los is the unit
// receiver-to-satellite line-of-sight vector from the same geoDist call
// CorrectMeasurements used. Ported from ppp.go's PPPResidual inner
// per-satellite loop.
func BuildDesignRows(cfg *Config, l Layout, x, p []float64, t time.Time, satNum int, sat *SatState, corr CorrectedObs, approxPos, los [3]float64, deps measurementDeps, batch *measBatch) {
	n := len(x)
	pos := ecef2Pos(approxPos)

	clkIdx := l.Clock(sat.Sys)
	if clkIdx < 0 || !activeIn(x, p, n, clkIdx) {
		return
	}

	for f := 0; f < l.nf; f++ {
		var code, phase float64
		if l.nf == 1 {
			code, phase = corr.Pc, corr.Lc
		} else {
			code, phase = corr.P[f], corr.L[f]
		}

		if code != 0 {
			h := make([]float64, n)
			for i := 0; i < 3; i++ {
				h[l.Pos(i)] = -los[i]
			}
			h[clkIdx] = 1.0

			predicted := x[clkIdx]
			delay, dZtd, dGn, dGe := modelTropInto(cfg, l, x, pos, sat, h)
			predicted += delay
			_ = dZtd
			_ = dGn
			_ = dGe

			if ii := l.Iono(satNum); ii >= 0 {
				delay, dState := modelIono(cfg, t, pos, sat.Az, sat.El, f, deps.Alpha, deps.Beta, x[ii])
				predicted += delay
				h[ii] = dState
			} else if cfg.IonoOpt == IonoBroadcast {
				predicted += ionoFreqScale(ionModelKlobuchar(t, pos, sat.Az, sat.El, deps.Alpha, deps.Beta), f)
			}
			if di := l.DCB(); di >= 0 && f == 2 {
				predicted += x[di]
				h[di] = 1.0
			}

			v := code - predicted
			appendRow(batch, h, v, varModel(cfg, sat.Sys, sat.El, f, false), satNum, f, false)
		}

		if phase != 0 {
			bi := l.Bias(satNum, f)
			if bi < 0 || !activeIn(x, p, n, bi) {
				continue
			}
			h := make([]float64, n)
			for i := 0; i < 3; i++ {
				h[l.Pos(i)] = -los[i]
			}
			h[clkIdx] = 1.0
			h[bi] = 1.0

			predicted := x[clkIdx] + x[bi]
			delay, _, _, _ := modelTropInto(cfg, l, x, pos, sat, h)
			predicted += delay

			if ii := l.Iono(satNum); ii >= 0 {
				delay, dState := modelIono(cfg, t, pos, sat.Az, sat.El, f, deps.Alpha, deps.Beta, x[ii])
				predicted -= delay
				h[ii] = -dState
			}

			v := phase - predicted
			appendRow(batch, h, v, varModel(cfg, sat.Sys, sat.El, f, true), satNum, f, true)
		}
	}
}

// modelTropInto evaluates the troposphere delay and writes its partial
// derivatives directly into design row h, returning the delay alongside the
// raw partials for callers that want them.
func modelTropInto(cfg *Config, l Layout, x []float64, pos [3]float64, sat *SatState, h []float64) (delay, dZtd, dGn, dGe float64) {
	ti := l.Trop()
	if ti < 0 {
		return 0, 0, 0, 0
	}
	delay, dZtd, dGn, dGe = modelTrop(cfg, pos, sat.Az, sat.El, x[ti], tropGradVal(l, x, 0), tropGradVal(l, x, 1))
	h[ti] = dZtd
	if gi := l.TropGrad(0); gi >= 0 {
		h[gi] = dGn
	}
	if gi := l.TropGrad(1); gi >= 0 {
		h[gi] = dGe
	}
	return
}

func tropGradVal(l Layout, x []float64, axis int) float64 {
	if gi := l.TropGrad(axis); gi >= 0 {
		return x[gi]
	}
	return 0
}

func appendRow(batch *measBatch, h []float64, v, r float64, sat, freq int, isPhase bool) {
	batch.H = append(batch.H, h...)
	batch.V = append(batch.V, v)
	batch.R = append(batch.R, r)
	batch.rowSat = append(batch.rowSat, sat)
	batch.rowFreq = append(batch.rowFreq, freq)
	batch.rowIsPhase = append(batch.rowIsPhase, isPhase)
}
