package ppp

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ppp-core/estimator/internal/linalg"
	"github.com/sirupsen/logrus"
)

// Estimator is the top-level PPP session object: owns the filter State and
// the external collaborators, and exposes the single entry point callers
// use each epoch. Ported from ppp.go's (rtk *Rtk) PPPos, split so the Rtk
// god-object's RTK-specific fields (base station, DGPS) are gone — this is
// PPP-only.
type Estimator struct {
	State *State

	Eph   Ephemeris
	Ant   AntennaModel
	Bias  CodeBiasProvider
	Wave  WavelengthTable
	Iono  BroadcastIono
	SBAS  SBASCorrector
	TEC   TECProvider
	Tide  TideModel
	AR    AmbiguityResolver
	Out   StatusWriter
}

// NewEstimator wires cfg/log into a fresh State and installs
// NoAmbiguityResolver as the default AR collaborator (PPP-AR's search is
// out of scope; callers that have one substitute their own).
func NewEstimator(cfg Config, log logrus.FieldLogger) *Estimator {
	return &Estimator{
		State: NewState(cfg, log),
		AR:    NoAmbiguityResolver{},
	}
}

// ProcessEpoch runs one full estimation cycle for the observations at time
// t: satellite positions, slip detection, time update, measurement update,
// and solution commit. Ported from ppp.go's PPPos top level.
func (est *Estimator) ProcessEpoch(ctx context.Context, t time.Time, obs []Observation) (Solution, error) {
	s := est.State
	if err := ctx.Err(); err != nil {
		return Solution{}, &EpochError{Time: t, Err: err}
	}
	if est.Eph == nil {
		return Solution{}, &EpochError{Time: t, Err: fmt.Errorf("no ephemeris collaborator configured")}
	}

	sats, err := est.Eph.SatPositions(t, obs)
	if err != nil {
		return Solution{}, &EpochError{Time: t, Err: err}
	}
	satByNum := make(map[int]SatPosClock, len(sats))
	for _, sp := range sats {
		satByNum[sp.Sat] = sp
	}

	markVisible(s, obs, satByNum)

	if !s.active(s.Layout.Pos(0)) {
		pos, ok := bootstrapPosition(&s.Config, obs, sats)
		if !ok {
			return Solution{}, &EpochError{Time: t, Err: fmt.Errorf("single-point bootstrap failed: insufficient satellites")}
		}
		for i := 0; i < 3; i++ {
			s.initx(s.Layout.Pos(i), pos[i], VarPos)
		}
	}
	approxPos := [3]float64{s.X[s.Layout.Pos(0)], s.X[s.Layout.Pos(1)], s.X[s.Layout.Pos(2)]}

	runSlipDetection(s, obs, satByNum, approxPos)

	TimeUpdate(s, t, obs, sats, approxPos)
	seedAmbiguitiesFromObs(est, s, t, obs, satByNum, approxPos)

	deps := ekfIterDeps{Ant: est.Ant, Bias: est.Bias, Wave: est.Wave, Iono: est.Iono, SBAS: est.SBAS, TEC: est.TEC, Tide: est.Tide}
	velByNum := satVelocities(sats)
	if err := EKFIteration(ctx, s, t, obs, sats, velByNum, deps); err != nil {
		return Solution{}, err
	}

	CommitSolution(s, t, obs)
	logEpoch(s.Log, s)

	if est.Out != nil {
		diag := BuildDiagnostics(s, obs)
		if err := est.Out.WriteEpoch(s.Sol, diag); err != nil {
			s.Log.WithError(err).Warn("ppp: status writer failed")
		}
	}

	return s.Sol, nil
}

// markVisible flags each tracked satellite's per-epoch visibility/validity
// based on whether it appears in this epoch's observation list.
func markVisible(s *State, obs []Observation, satByNum map[int]SatPosClock) {
	seen := make(map[int]bool, len(obs))
	for _, o := range obs {
		seen[o.Sat] = true
	}
	for sat := 1; sat <= MAXSAT; sat++ {
		st := &s.Sat[sat-1]
		if !seen[sat] {
			continue
		}
		if sp, ok := satByNum[sat]; ok && sp.SVH >= 0 {
			st.Valid = true
		}
	}
	for _, o := range obs {
		st := &s.Sat[o.Sat-1]
		if sp, ok := satByNum[o.Sat]; ok {
			st.Sys = sysOfSat(sp.Sat)
		}
		for f := 0; f < NFREQ; f++ {
			st.VisibleF[f] = o.L[f] != 0 || o.P[f] != 0
		}
	}
}

// sysOfSat maps a 1-based satellite number to its constellation bitmask,
// using the same PRN partitioning as ppp.go's Satsys.
func sysOfSat(sat int) int {
	switch {
	case sat >= 1 && sat <= 32:
		return SysGPS
	case sat >= 33 && sat <= 59:
		return SysSBS
	case sat >= 60 && sat <= 83:
		return SysGLO
	case sat >= 84 && sat <= 119:
		return SysGAL
	case sat >= 120 && sat <= 155:
		return SysCMP
	case sat >= 156 && sat <= 165:
		return SysQZS
	default:
		return SysIRN
	}
}

// runSlipDetection evaluates LLI/GF/MW detectors for every observed
// satellite, writing results back into SatState.
func runSlipDetection(s *State, obs []Observation, satByNum map[int]SatPosClock, approxPos [3]float64) {
	for _, o := range obs {
		sp, ok := satByNum[o.Sat]
		if !ok {
			continue
		}
		st := &s.Sat[o.Sat-1]
		_, los := geoDist(sp.Pos, approxPos)
		_, el := satAzel(ecef2Pos(approxPos), los)
		if el < s.Config.Elmin {
			continue
		}

		gf := geometryFree(o.L[0]*carrierWavelength(0), o.L[1]*carrierWavelength(1))
		var mw float64
		hasMW := o.L[0] != 0 && o.L[1] != 0 && o.P[0] != 0 && o.P[1] != 0
		if hasMW {
			mw = melbourneWubbena(o.L[0], o.L[1], o.P[0], o.P[1], carrierFreqHz[0], carrierFreqHz[1])
		}

		lambdaW := CLIGHT / (carrierFreqHz[0] - carrierFreqHz[1])
		res := detectSlip(st, o.LLI, gf, mw, hasMW, s.Config.ThresSlip, MWGapMax, MWCSMin, lambdaW)
		applySlip(st, res, func(f int) {
			if bi := s.Layout.Bias(o.Sat, f); bi >= 0 {
				s.reset(bi)
			}
		})
	}
}

func carrierWavelength(f int) float64 {
	if f < 0 || f >= NFREQ || carrierFreqHz[f] == 0 {
		return 0
	}
	return CLIGHT / carrierFreqHz[f]
}

// seedAmbiguitiesFromObs corrects each visible satellite's observation,
// applies the phase-code coherence correction to every frequency's already
// active ambiguities, and only then seeds any not-yet-active ambiguity
// state from the resulting phase-minus-code combination — all before the
// EKF iteration that refines it.
func seedAmbiguitiesFromObs(est *Estimator, s *State, t time.Time, obs []Observation, satByNum map[int]SatPosClock, approxPos [3]float64) {
	velByNum := satVelocities(nil)
	entries := make([]ambObs, 0, len(obs))
	for _, o := range obs {
		sp, ok := satByNum[o.Sat]
		if !ok {
			continue
		}
		st := &s.Sat[o.Sat-1]
		vel := velByNum[o.Sat]
		corrDeps := correctorDeps{Ant: est.Ant, Bias: est.Bias, Wave: est.Wave}
		corr := CorrectMeasurements(&s.Config, st, o, sp, vel, approxPos, corrDeps)
		entries = append(entries, ambObs{sat: o.Sat, corr: corr})
	}

	applyPhaseCodeCoherence(s, entries)

	for _, e := range entries {
		for f := 0; f < s.Layout.nf; f++ {
			seedAmbiguity(s, e.sat, f, e.corr)
		}
	}
}

// satVelocities derives a crude finite-difference-free velocity map; true
// velocity comes from the Ephemeris collaborator's richer product, which
// spec.md leaves to the caller. Without one, zero velocity degrades
// attitude/windup modeling gracefully rather than failing the epoch.
func satVelocities(sats []SatPosClock) map[int][3]float64 {
	m := make(map[int][3]float64, len(sats))
	for _, sp := range sats {
		m[sp.Sat] = [3]float64{}
	}
	return m
}

// bootstrapPosition computes a rough single-point code-only position
// estimate to seed the filter's first epoch, via iterative least squares.
// This exists purely to start the EKF near the truth; it is deliberately
// simple next to rtkpos.go's full point-positioning pipeline (ambiguity
// resolution, SBAS, ionosphere-free combinations are not needed for a seed
// this coarse).
func bootstrapPosition(cfg *Config, obs []Observation, sats []SatPosClock) ([3]float64, bool) {
	satByNum := make(map[int]SatPosClock, len(sats))
	for _, sp := range sats {
		satByNum[sp.Sat] = sp
	}
	x := [4]float64{} // x,y,z,clk
	for iter := 0; iter < 8; iter++ {
		var rows [][5]float64 // dx,dy,dz,1,residual
		for _, o := range obs {
			sp, ok := satByNum[o.Sat]
			if !ok || sp.SVH < 0 {
				continue
			}
			pr := o.P[0]
			if pr == 0 {
				pr = o.P[1]
			}
			if pr == 0 {
				continue
			}
			r, e := geoDist(sp.Pos, [3]float64{x[0], x[1], x[2]})
			if r <= 0 {
				continue
			}
			resid := pr - (r + x[3] - sp.ClockBias*CLIGHT)
			rows = append(rows, [5]float64{-e[0], -e[1], -e[2], 1, resid})
		}
		if len(rows) < 4 {
			return [3]float64{}, false
		}
		dx, ok := leastSquares4(rows)
		if !ok {
			return [3]float64{}, false
		}
		for i := 0; i < 4; i++ {
			x[i] += dx[i]
		}
		if absF(dx[0])+absF(dx[1])+absF(dx[2]) < 1e-3 {
			break
		}
	}
	return [3]float64{x[0], x[1], x[2]}, true
}

// leastSquares4 solves the normal equations for a 4-unknown (dx,dy,dz,dclk)
// linear least squares problem from design rows [a,b,c,d,residual].
func leastSquares4(rows [][5]float64) ([4]float64, bool) {
	var ata [16]float64
	var atb [4]float64
	for _, row := range rows {
		a := [4]float64{row[0], row[1], row[2], row[3]}
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				ata[i+j*4] += a[i] * a[j]
			}
			atb[i] += a[i] * row[4]
		}
	}
	if err := linalg.MatInv(ata[:], 4); err != nil {
		return [4]float64{}, false
	}
	var dx [4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			dx[i] += ata[i+j*4] * atb[j]
		}
	}
	return dx, true
}

// BuildDiagnostics assembles the optional per-satellite diagnostics record
// for the epoch's status output.
func BuildDiagnostics(s *State, obs []Observation) []SatDiagnostics {
	diag := make([]SatDiagnostics, 0, len(obs))
	for _, o := range obs {
		st := &s.Sat[o.Sat-1]
		d := SatDiagnostics{
			Sat:      o.Sat,
			Az:       st.Az,
			El:       st.El,
			ResCode:  st.ResPostCode,
			ResPhase: st.ResPostPhase,
			Slip:     st.Slip,
			Lock:     st.Lock,
			Outage:   st.Outc,
			MWMean:   st.MWMean,
			MWArc:    st.MWArc,
			RejectReason: st.LastRejectReason,
		}
		for f := 0; f < s.Layout.nf; f++ {
			if bi := s.Layout.Bias(o.Sat, f); bi >= 0 {
				d.Ambiguity[f] = s.X[bi]
				n := s.n()
				d.AmbiguityStd[f] = sqrtNonNeg(s.P[bi+bi*n])
			}
		}
		diag = append(diag, d)
	}
	return diag
}

func sqrtNonNeg(v float64) float64 {
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
