package ppp

// seedAmbiguity initializes satNum's folded-frequency ambiguity state from
// the phase-minus-code combination at first acquisition, ppp.go's initx
// call site inside UpdateBiasPPP/CorrMeas. Kept separate from
// timeupdate.go's updateBias so the corrected observation (needed for the
// phase-code difference) can be supplied once it's available, instead of
// forcing TimeUpdate to run after corrections.
func seedAmbiguity(s *State, satNum int, f int, corr CorrectedObs) {
	bi := s.Layout.Bias(satNum, f)
	if bi < 0 || s.active(bi) {
		return
	}
	var phase, code float64
	if s.Layout.nf == 1 {
		phase, code = corr.Lc, corr.Pc
	} else {
		phase, code = corr.L[f], corr.P[f]
	}
	if phase == 0 || code == 0 {
		return
	}
	s.initx(bi, phase-code, VarBias)
}

// phaseCodeCoherence gates a mean phase-code offset against threshold,
// returning the correction to apply (the mean offset itself) or 0 if it
// isn't large enough to act on — spec.md §9 Open Question 2 calls for a
// sign-invariant guard using |offset| so the correction direction never
// depends on which satellite triggered it.
func phaseCodeCoherence(meanOffset float64, threshold float64) float64 {
	if absF(meanOffset) < threshold {
		return 0
	}
	return meanOffset
}

// ambObs bundles one observed satellite's corrected phase/code combination
// for applyPhaseCodeCoherence, which needs every satellite's correction
// available at once to compute a common offset before any of them reseed.
type ambObs struct {
	sat  int
	corr CorrectedObs
}

// applyPhaseCodeCoherence detects and corrects a receiver-clock-induced
// common offset between phase-derived and code-derived range, per
// frequency, ppp.go's UpdateBiasPPP "correct phase-code jump" pass. For
// each frequency it averages (freshBias - X[bias]) across every satellite
// whose ambiguity is already active and free of a slip this epoch; if at
// least two satellites agree, no single satellite dominates (the
// sign-invariant guard max|offset| <= 2*sum|offset|/n, compared in
// magnitude), and the mean offset exceeds PhaseCodeJumpThresh, every
// active ambiguity at that frequency — including
// satellites not observed this epoch — is shifted by the same amount, since
// the cause (a stepped receiver clock) affects phase tracking uniformly
// rather than satellite by satellite. Must run before seedAmbiguity reseeds
// any satellite this epoch, so a fresh seed never gets double-corrected.
func applyPhaseCodeCoherence(s *State, entries []ambObs) {
	l := s.Layout
	for f := 0; f < l.nf; f++ {
		var offset, sumAbs, maxAbs float64
		var k int
		for _, e := range entries {
			bi := l.Bias(e.sat, f)
			if bi < 0 || !s.active(bi) {
				continue
			}
			st := &s.Sat[e.sat-1]
			if st.Slip[f].Slipped() {
				continue
			}
			var phase, code float64
			if l.nf == 1 {
				phase, code = e.corr.Lc, e.corr.Pc
			} else {
				phase, code = e.corr.L[f], e.corr.P[f]
			}
			if phase == 0 || code == 0 {
				continue
			}
			bias := phase - code
			if bias == 0 {
				continue
			}
			d := bias - s.X[bi]
			offset += d
			sumAbs += absF(d)
			if absF(d) > maxAbs {
				maxAbs = absF(d)
			}
			k++
		}
		if k < 2 {
			continue
		}
		if maxAbs > 2*sumAbs/float64(k) {
			continue
		}
		corr := phaseCodeCoherence(offset/float64(k), PhaseCodeJumpThresh)
		if corr == 0 {
			continue
		}
		for sat := 1; sat <= MAXSAT; sat++ {
			bi := l.Bias(sat, f)
			if bi >= 0 && s.active(bi) {
				s.X[bi] += corr
			}
		}
	}
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
