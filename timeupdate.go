package ppp

import (
	"math"
	"time"

	"github.com/ppp-core/estimator/internal/linalg"
)

// Time update (C4): propagates the filter state and injects process noise
// ahead of the measurement update. Ported from ppp.go's UpdatePosPPP/
// UpdateClkPPP/UpdateTropPPP/UpdateIonoPPP/UpdateDcbPPP/UpdateBiasPPP/
// UpdateStatePPP.

// TimeUpdate advances s by the elapsed time since s.Sol.Time (or performs
// first-epoch initialization if s.Sol.Time is zero), given the current
// epoch's observations and satellite positions. It must run before the
// measurement update each epoch.
func TimeUpdate(s *State, t time.Time, obs []Observation, sats []SatPosClock, approxPos [3]float64) {
	var dt float64
	if !s.Sol.Time.IsZero() {
		dt = t.Sub(s.Sol.Time).Seconds()
	}
	if dt < 0 || dt > 86400 {
		dt = 0
	}

	updatePos(s, dt)
	updateClock(s, dt, t, obs)
	updateTrop(s, dt)
	updateIono(s, dt, obs)
	updateDCB(s)
	updateBias(s, dt, obs, approxPos)

	linalg.Symmetrize(s.P, s.n())
}

// updatePos propagates position (and velocity/acceleration, if dynamic) and
// injects process noise, ppp.go's UpdatePosPPP.
func updatePos(s *State, dt float64) {
	l := s.Layout
	np := l.np
	if !s.active(l.Pos(0)) {
		for i := 0; i < 3; i++ {
			s.initx(l.Pos(i), 1e-6, VarPos)
		}
		if np > 3 {
			for i := 3; i < 6; i++ {
				s.initx(l.Pos(i), 1e-6, VarVel)
			}
			for i := 6; i < np; i++ {
				s.initx(l.Pos(i), 1e-6, VarAcc)
			}
		}
		return
	}
	if np > 3 {
		if dt > 0 {
			// constant-acceleration propagation: pos += vel*dt + 0.5*acc*dt^2,
			// vel += acc*dt.
			for i := 0; i < 3; i++ {
				pi, vi, ai := l.Pos(i), l.Pos(3+i), l.Pos(6+i)
				s.X[pi] += s.X[vi]*dt + 0.5*s.X[ai]*dt*dt
				s.X[vi] += s.X[ai] * dt
			}
			propagateDynamics(s, l, dt)
		}
		return
	}
	// static mode (no velocity/acceleration states): position is a random
	// walk, ppp.go's UpdatePosPPP PMODE_PPP_STATIC branch.
	n := s.n()
	for i := 0; i < np; i++ {
		pi := l.Pos(i)
		s.P[pi+pi*n] += s.Config.Prn[5] * s.Config.Prn[5] * math.Abs(dt)
	}
}

// propagateDynamics advances the position/velocity/acceleration block's
// covariance under the constant-acceleration transition matrix F
// (F[i,i+3]=dt for i=0..5, F[i,i+6]=dt^2/2 for i=0..2, identity elsewhere)
// and injects acceleration process noise rotated from local ENU into ECEF,
// ppp.go's UpdatePosPPP. F differs from identity only inside the 9x9
// position/velocity/acceleration block b, so P<-F*P*F' partitions into
// Pbb'=Fb*Pbb*Fb', Pbr'=Fb*Pbr (mirrored to Prb'=Pbr''), with the rest-block
// Prr left untouched — an O(n) pass over the state instead of an O(n^3)
// multiply against the full covariance, since n grows with every tracked
// ambiguity bias.
func propagateDynamics(s *State, l Layout, dt float64) {
	n := s.n()
	var pbb [9][9]float64
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			pbb[i][j] = s.P[l.Pos(i)+l.Pos(j)*n]
		}
	}

	// a = Fb*pbb: row i picks up dt*row(i+3) for i<6 and dt^2/2*row(i+6)
	// for i<3.
	var a [9][9]float64
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			v := pbb[i][j]
			if i < 6 {
				v += dt * pbb[i+3][j]
			}
			if i < 3 {
				v += 0.5 * dt * dt * pbb[i+6][j]
			}
			a[i][j] = v
		}
	}
	// pbb' = a*Fb': the same combination applied to a's columns.
	var pbbNew [9][9]float64
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			v := a[i][j]
			if j < 6 {
				v += dt * a[i][j+3]
			}
			if j < 3 {
				v += 0.5 * dt * dt * a[i][j+6]
			}
			pbbNew[i][j] = v
		}
	}
	for i := 0; i < 9; i++ {
		for j := 0; j < 9; j++ {
			s.P[l.Pos(i)+l.Pos(j)*n] = pbbNew[i][j]
		}
	}

	blockLo, blockHi := l.Pos(0), l.Pos(8)
	for col := 0; col < n; col++ {
		if col >= blockLo && col <= blockHi {
			continue
		}
		var pbr [9]float64
		for i := 0; i < 9; i++ {
			pbr[i] = s.P[l.Pos(i)+col*n]
		}
		var pbrNew [9]float64
		for i := 0; i < 9; i++ {
			v := pbr[i]
			if i < 6 {
				v += dt * pbr[i+3]
			}
			if i < 3 {
				v += 0.5 * dt * dt * pbr[i+6]
			}
			pbrNew[i] = v
		}
		for i := 0; i < 9; i++ {
			s.P[l.Pos(i)+col*n] = pbrNew[i]
			s.P[col+l.Pos(i)*n] = pbrNew[i]
		}
	}

	var q [9]float64
	q[0] = s.Config.Prn[3] * s.Config.Prn[3] * math.Abs(dt)
	q[4] = q[0]
	q[8] = s.Config.Prn[4] * s.Config.Prn[4] * math.Abs(dt)
	pos := ecef2Pos([3]float64{s.X[l.Pos(0)], s.X[l.Pos(1)], s.X[l.Pos(2)]})
	qv := cov2Ecef(pos, q)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ai, aj := l.Pos(6+i), l.Pos(6+j)
			s.P[ai+aj*n] += qv[i*3+j]
		}
	}
}

// updateClock resets each active system's receiver clock bias to a fresh
// white-noise state every epoch (clock has no useful dynamics to
// propagate) and detects day-boundary jumps, ppp.go's UpdateClkPPP plus the
// day-boundary handling from PosOpt[5].
func updateClock(s *State, dt float64, t time.Time, obs []Observation) {
	l := s.Layout
	for i, sys := range sysOrder {
		if l.sysIdx[i] < 0 {
			continue
		}
		idx := l.Clock(sys)
		if !s.active(idx) {
			s.initx(idx, 1e-6, VarClk)
			continue
		}
		if s.Config.PosOpt[5] && dayBoundaryJump(s, t, idx) {
			s.reset(idx)
			s.initx(idx, 1e-6, VarClk)
			continue
		}
		s.initx(idx, s.X[idx], VarClk)
	}
}

// dayBoundaryJump detects the receiver-clock-steered millisecond jump RTKLIB
// observes at UTC midnight for some receivers: a large, same-epoch offset
// shared by all satellites (spec.md §4.4 sign-invariant guard, Open
// Question 2). Using |offset| instead of the raw signed value means the
// detector fires whether the receiver clock was stepped forward or back.
func dayBoundaryJump(s *State, t time.Time, clockIdx int) bool {
	if t.Hour() != 0 || t.Minute() != 0 {
		return false
	}
	offset := s.X[clockIdx]
	return math.Abs(offset) > 1e-3*CLIGHT
}

// updateTrop re-injects ZTD/gradient process noise each epoch, ppp.go's
// UpdateTropPPP.
func updateTrop(s *State, dt float64) {
	l := s.Layout
	if l.nt == 0 {
		return
	}
	n := s.n()
	zi := l.Trop()
	if !s.active(zi) {
		s.initx(zi, 0.1, VarZTD)
	} else {
		s.P[zi+zi*n] += s.Config.Prn[2] * s.Config.Prn[2] * math.Abs(dt)
	}
	if l.nt < 3 {
		return
	}
	for axis := 0; axis < 2; axis++ {
		gi := l.TropGrad(axis)
		if !s.active(gi) {
			s.initx(gi, 1e-6, VarGrad)
		} else {
			s.P[gi+gi*n] += VarGrad * 0.01 * math.Abs(dt)
		}
	}
}

// updateIono re-injects per-satellite slant-ionosphere process noise, or
// resets a satellite's state after a long outage (spec.md §4.4's
// GapResion), ppp.go's UpdateIonoPPP.
func updateIono(s *State, dt float64, obs []Observation) {
	l := s.Layout
	if l.ni == 0 {
		return
	}
	n := s.n()
	for sat := 1; sat <= MAXSAT; sat++ {
		ii := l.Iono(sat)
		st := &s.Sat[sat-1]
		seen := obsHasSat(obs, sat)
		if !seen {
			if st.Outc[0] > s.Config.GapResion {
				s.reset(ii)
			}
			continue
		}
		if !s.active(ii) {
			s.initx(ii, 1e-6, VarIono)
			continue
		}
		s.P[ii+ii*n] += s.Config.Prn[1] * s.Config.Prn[1] * math.Abs(dt)
	}
}

func obsHasSat(obs []Observation, sat int) bool {
	for _, o := range obs {
		if o.Sat == sat {
			return true
		}
	}
	return false
}

// updateDCB re-injects the receiver inter-frequency code-bias process
// noise (spec.md §9 Open Question 3: only active with Nf>=3), ppp.go's
// UpdateDcbPPP.
func updateDCB(s *State) {
	di := s.Layout.DCB()
	if di < 0 {
		return
	}
	n := s.n()
	if !s.active(di) {
		s.initx(di, 1e-6, VarDCB)
		return
	}
	s.P[di+di*n] += 1e-8
}

// updateBias resets per-satellite, per-frequency ambiguity states on
// slip/outage, resets every ambiguity state in instant-AR mode
// (ARModeInstant) and, when PosOpt[5] is set, at a GPS day boundary (first
// observation's round(tow*10) mod 864000 == 0), and otherwise carries them
// forward unchanged (ambiguities have no dynamics), ppp.go's
// UpdateBiasPPP. It never initializes a bias
// state itself — seedAmbiguity (ambiguity.go) does that once the corrected
// phase-minus-code value is available, later in Estimator.ProcessEpoch, so
// a reset here always leaves room for a fresh, real seed rather than a
// placeholder the measurement update would otherwise have to converge
// away from. approxPos is accepted for signature symmetry with the other
// update* functions even though this one doesn't need geometry.
func updateBias(s *State, dt float64, obs []Observation, approxPos [3]float64) {
	l := s.Layout
	resetAll := s.Config.ModeAr == ARModeInstant
	if s.Config.PosOpt[5] && len(obs) > 0 {
		tow := gpsSecOfWeek(obs[0].Time)
		resetAll = resetAll || math.Mod(math.Round(tow*10), 864000) == 0
	}
	if resetAll {
		for sat := 1; sat <= MAXSAT; sat++ {
			for f := 0; f < l.nf; f++ {
				s.reset(l.Bias(sat, f))
			}
		}
	}
	for _, o := range obs {
		st := &s.Sat[o.Sat-1]
		for f := 0; f < l.nf; f++ {
			bi := l.Bias(o.Sat, f)
			if bi < 0 {
				continue
			}
			if st.Slip[f].Slipped() || st.Outc[f] > s.Config.MaxOut {
				s.reset(bi)
				st.Outc[f] = 0
			}
		}
	}
}

