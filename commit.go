package ppp

import (
	"math"
	"time"
)

// Solution commit (C7): turns the converged filter state into a Solution
// record, updates per-satellite lock/outage counters, and runs the
// fix-and-hold bookkeeping. Ported from ppp.go's UpdateStat/TestHoldAmb.

// CommitSolution builds s.Sol from the current filter state and observation
// list, and advances lock/outage counters for every tracked satellite
// (seen or not). Ported from ppp.go's UpdateStat.
func CommitSolution(s *State, t time.Time, obs []Observation) {
	l := s.Layout
	n := s.n()

	seen := make(map[int]bool, len(obs))
	for _, o := range obs {
		seen[o.Sat] = true
	}

	nsat := 0
	for sat := 1; sat <= MAXSAT; sat++ {
		st := &s.Sat[sat-1]
		if !st.Valid {
			continue
		}
		if seen[sat] {
			nsat++
			for f := 0; f < NFREQ; f++ {
				if st.Slip[f].Slipped() {
					st.Lock[f] = 0
				} else {
					st.Lock[f]++
				}
				st.Outc[f] = 0
			}
		} else {
			for f := 0; f < NFREQ; f++ {
				st.Outc[f]++
			}
		}
	}

	s.Sol.Time = t
	s.Sol.Pos = [3]float64{s.X[l.Pos(0)], s.X[l.Pos(1)], s.X[l.Pos(2)]}
	s.Sol.Cov6 = [6]float64{
		s.P[l.Pos(0)+l.Pos(0)*n],
		s.P[l.Pos(1)+l.Pos(1)*n],
		s.P[l.Pos(2)+l.Pos(2)*n],
		s.P[l.Pos(0)+l.Pos(1)*n],
		s.P[l.Pos(1)+l.Pos(2)*n],
		s.P[l.Pos(2)+l.Pos(0)*n],
	}
	for i, sys := range sysOrder {
		if l.sysIdx[i] < 0 {
			continue
		}
		ci := l.Clock(sys)
		s.Sol.ClkSys[i] = s.X[ci]
	}
	s.Sol.NSat = nsat

	if nsat < MinNSatSol {
		s.Sol.Stat = StatusNone
	} else {
		s.Sol.Stat = StatusFloat
	}
	if s.Config.ModeAr == ARModeFixHold {
		TestHoldAmb(s, obs)
		std := math.Sqrt(s.Sol.Cov6[0] + s.Sol.Cov6[1] + s.Sol.Cov6[2])
		if s.Nfix > 0 && std <= MaxStdFix {
			s.Sol.Stat = StatusFix
		}
	}
}

// TestHoldAmb implements the fix-and-hold policy: once a satellite's
// ambiguity has been continuously locked for MinFix epochs, mark it as held
// rather than re-estimated from scratch, ppp.go's TestHoldAmb. The actual
// integer search is AmbiguityResolver's job (out of scope); this only
// manages the hold/float bookkeeping that governs whether the resolver is
// even consulted.
func TestHoldAmb(s *State, obs []Observation) {
	held := 0
	for _, o := range obs {
		st := &s.Sat[o.Sat-1]
		for f := 0; f < s.Layout.nf; f++ {
			if st.Lock[f] >= s.Config.MinFix && st.Outc[f] == 0 {
				st.Fix[f] = 3 // hold
				held++
			} else if st.Fix[f] == 3 && st.Outc[f] > 0 {
				st.Fix[f] = 0
			}
		}
	}
	if held > 0 {
		s.Nfix++
	} else {
		s.Nfix = 0
	}
}
