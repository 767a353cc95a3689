package ppp

import "math"

// Cycle-slip detection (C3): LLI flag, geometry-free (GF) jump test, and
// Melbourne-Wubbena (MW) recursive mean/variance arc test. Ported from
// ppp.go's DetectSlp_ll/DetectSlp_gf/DetectSlp_mw, with the MW detector
// enriched to carry real running mean/variance/arc-length statistics rather
// than the teacher's single-previous-sample jump check — spec.md §4.3
// specifies the fuller algorithm and the teacher's simplified version
// undershoots it.

// detectSlipLLI reports a slip when any frequency's loss-of-lock indicator
// has either of its low two slip bits set (bit 0 loss of lock, bit 1
// half-cycle ambiguity), ppp.go's DetectSlp_ll.
func detectSlipLLI(lli [NFREQ]uint8) bool {
	for _, v := range lli {
		if v&3 != 0 {
			return true
		}
	}
	return false
}

// detectSlipGF reports a slip when the geometry-free combination jumps by
// more than thres (m) between epochs, ppp.go's DetectSlp_gf. gf is the new
// sample; gfPrev is the previous epoch's value (0 means "no prior sample").
func detectSlipGF(gf, gfPrev, thres float64) bool {
	if gfPrev == 0 {
		return false
	}
	return math.Abs(gf-gfPrev) > thres
}

// geometryFree forms L1-L2 (or L1-L3) geometry-free phase range (m) from two
// corrected phase observables at folded-frequency slots i, j.
func geometryFree(li, lj float64) float64 {
	if li == 0 || lj == 0 {
		return 0
	}
	return li - lj
}

// melbourneWubbena forms the MW wide-lane combination (m) from raw
// dual-frequency phase (cycles) and code (m) observables, ppp.go's GfMeas
// counterpart MWMeas.
func melbourneWubbena(l1, l2 cycles, p1, p2 float64, f1, f2 float64) float64 {
	if l1 == 0 || l2 == 0 || p1 == 0 || p2 == 0 {
		return 0
	}
	wl := CLIGHT / (f1 - f2)
	return wl*(float64(l1)-float64(l2)) - (f1*p1+f2*p2)/(f1+f2)
}

// cycles is carrier phase measured in cycles (not yet scaled by
// wavelength) — melbourneWubbena takes raw L, not the range-equivalent
// CorrectedObs.L.
type cycles = float64

// slipDetectResult carries the per-detector provenance plus the updated GF/
// MW running values a caller must write back into SatState.
type slipDetectResult struct {
	Slip     SlipProvenance
	GF       float64
	MWSample float64
	MWMean   float64
	MWM2     float64
	MWArc    int
}

// seedMW resets the running MW statistics to a fresh one-sample arc. mw_m2
// is seeded to half the wide-lane wavelength rather than zero, so the gate
// in detectSlip isn't degenerately tight the epoch right after a slip.
func seedMW(lambdaW, mw float64) (mean, m2 float64, arc int) {
	return mw, lambdaW / 2, 1
}

// detectSlip runs all three detectors for one satellite/epoch and returns
// the combined provenance plus the updated running MW statistics to persist
// back into SatState. thresGF is the GF jump threshold (m); mwGapMax is the
// unconditional-reset MW jump (m); mwMinThresh floors the adaptive
// sigma-based MW gate; lambdaW is the wide-lane wavelength (m) used only to
// seed mw_m2 on a fresh arc.
func detectSlip(sat *SatState, lli [NFREQ]uint8, gfNew float64, mwNew float64, hasMW bool, thresGF, mwGapMax, mwMinThresh, lambdaW float64) slipDetectResult {
	var res slipDetectResult
	res.Slip.LLI = detectSlipLLI(lli)
	res.Slip.GF = detectSlipGF(gfNew, sat.GF, thresGF)
	res.GF = gfNew

	if !hasMW || mwNew == 0 {
		res.MWMean, res.MWM2, res.MWArc = sat.MWMean, sat.MWM2, sat.MWArc
		return res
	}

	res.MWSample = mwNew

	if sat.MWArc == 0 || res.Slip.LLI || res.Slip.GF {
		// first sample in a fresh arc, or an LLI/GF slip this epoch: seed
		// the running stats, no slip to report from MW alone.
		res.MWMean, res.MWM2, res.MWArc = seedMW(lambdaW, mwNew)
		return res
	}

	gap := math.Abs(mwNew - sat.MWPrev)
	slipped := gap > mwGapMax
	if !slipped && sat.MWArc >= 4 {
		sigma := math.Sqrt(sat.MWM2)
		gate := 4 * sigma
		if gate < mwMinThresh {
			gate = mwMinThresh
		}
		if gate > mwGapMax {
			gate = mwGapMax
		}
		slipped = math.Abs(mwNew-sat.MWMean) > gate
	}
	res.Slip.MW = slipped

	if slipped {
		res.MWMean, res.MWM2, res.MWArc = seedMW(lambdaW, mwNew)
		return res
	}

	arc := sat.MWArc + 1
	if arc > MWArcMax {
		arc = MWArcMax
	}
	n := float64(arc)
	meanPrev := sat.MWMean
	mean := ((n-1)*sat.MWMean + mwNew) / n
	m2 := ((n-1)*sat.MWM2 + (mwNew-meanPrev)*(mwNew-meanPrev)) / n
	res.MWMean = mean
	res.MWM2 = m2
	res.MWArc = arc
	return res
}

// applySlip writes a slipDetectResult back into sat and, for any slipped
// frequency, resets the corresponding ambiguity state in the filter (caller
// passes the bias-reset callback so slip.go stays free of Layout/State
// plumbing).
func applySlip(sat *SatState, res slipDetectResult, resetBias func(freqIdx int)) {
	sat.GF = res.GF
	sat.MWMean = res.MWMean
	sat.MWM2 = res.MWM2
	sat.MWArc = res.MWArc
	sat.MWPrev = res.MWSample

	for f := 0; f < NFREQ; f++ {
		sat.Slip[f] = res.Slip
	}
	if !res.Slip.Slipped() {
		return
	}
	for f := 0; f < NFREQ; f++ {
		sat.Slipc[f]++
		resetBias(f)
	}
}
