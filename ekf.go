package ppp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ppp-core/estimator/internal/linalg"
)

// ErrNoPriorEpoch is returned by EKFIteration when the state has never been
// initialized with a position.
var ErrNoPriorEpoch = errors.New("ppp: state has no prior position")

// ErrIterationOverflow is returned when the pre-fit/post-fit rejection loop
// exhausts MaxIter without converging to a residual set clean of 4-sigma
// outliers.
var ErrIterationOverflow = errors.New("ppp: rejection loop iteration overflow")

// EpochError wraps a failure processing one epoch, carrying the epoch time
// for the caller's logs (spec.md §7 Error Handling Design).
type EpochError struct {
	Time time.Time
	Err  error
}

func (e *EpochError) Error() string {
	return fmt.Sprintf("ppp: epoch %s: %v", e.Time.Format(time.RFC3339), e.Err)
}

func (e *EpochError) Unwrap() error { return e.Err }

// ekfIterDeps bundles every external collaborator one EKF iteration round
// needs (spec.md §6).
type ekfIterDeps struct {
	Ant  AntennaModel
	Bias CodeBiasProvider
	Wave WavelengthTable
	Iono BroadcastIono
	SBAS SBASCorrector
	TEC  TECProvider
	Tide TideModel
}

// EKFIteration runs the bounded pre-fit/post-fit rejection loop for one
// epoch, ported from ppp.go's (rtk *Rtk) PPPos outer loop and its
// PPPResidual helper. Each iteration: snapshot the persisted state into a
// working copy, drop any pre-fit row whose innovation exceeds MaxInno,
// Kalman-update the working copy, rebuild residuals at the updated
// linearization point, and if any post-fit residual exceeds
// ThresReject-sigma, exclude the single worst satellite and retry — the
// persisted state is only ever overwritten on the iteration that survives
// both passes clean, so a rejected iteration's updates are implicitly
// discarded rather than explicitly rolled back.
func EKFIteration(ctx context.Context, s *State, t time.Time, obs []Observation, sats []SatPosClock, satVel map[int][3]float64, deps ekfIterDeps) error {
	if err := ctx.Err(); err != nil {
		return &EpochError{Time: t, Err: err}
	}
	if !s.active(s.Layout.Pos(0)) {
		return &EpochError{Time: t, Err: ErrNoPriorEpoch}
	}

	satByNum := make(map[int]SatPosClock, len(sats))
	for _, sp := range sats {
		satByNum[sp.Sat] = sp
	}

	for _, o := range obs {
		s.Sat[o.Sat-1].LastRejectReason = ""
	}

	excluded := make(map[int]bool)

	for iter := 0; iter < MaxIter; iter++ {
		pre := buildEpochBatch(s, t, obs, satByNum, satVel, deps, s.X, s.P, excluded)
		pre = rejectPrefitOutliers(s, pre, excluded)

		nv := len(pre.V)
		if nv < MinNSatSol {
			return &EpochError{Time: t, Err: fmt.Errorf("insufficient valid measurements: %d", nv)}
		}

		n := s.n()
		xp := append([]float64(nil), s.X...)
		pp := append([]float64(nil), s.P...)

		r := linalg.Mat(nv, nv)
		for i, vari := range pre.R {
			r[i+i*nv] = vari
		}
		if err := linalg.KalmanUpdate(xp, pp, pre.H, pre.V, r, n, nv); err != nil {
			return &EpochError{Time: t, Err: err}
		}
		linalg.Symmetrize(pp, n)

		post := buildEpochBatch(s, t, obs, satByNum, satVel, deps, xp, pp, excluded)
		if len(post.V) == 0 {
			return &EpochError{Time: t, Err: fmt.Errorf("insufficient valid measurements after update")}
		}

		worst, worstVal, found := worstPostfitResidual(post)
		if !found {
			copy(s.X, xp)
			copy(s.P, pp)
			writePostfit(s, post)
			return nil
		}

		sat := post.rowSat[worst]
		isPhase := post.rowIsPhase[worst]
		reason := fmt.Sprintf("post-fit residual %.3f exceeds %.1f-sigma", worstVal, ThresReject)
		excludeSat(s, sat, isPhase, reason)
		excluded[sat] = true
	}
	return &EpochError{Time: t, Err: ErrIterationOverflow}
}

// buildEpochBatch builds design rows for every observed, non-excluded
// satellite against linearization point (x, p).
func buildEpochBatch(s *State, t time.Time, obs []Observation, satByNum map[int]SatPosClock, satVel map[int][3]float64, deps ekfIterDeps, x, p []float64, excluded map[int]bool) *measBatch {
	l := s.Layout
	batch := &measBatch{}
	approxPos := [3]float64{x[l.Pos(0)], x[l.Pos(1)], x[l.Pos(2)]}

	for _, o := range obs {
		if excluded[o.Sat] {
			continue
		}
		sp, ok := satByNum[o.Sat]
		if !ok || sp.SVH < 0 {
			continue
		}
		st := &s.Sat[o.Sat-1]
		if !st.Valid {
			continue
		}
		_, los := geoDist(sp.Pos, approxPos)
		_, el := satAzel(ecef2Pos(approxPos), los)
		if el < s.Config.Elmin {
			continue
		}

		vel := satVel[o.Sat]
		corrDeps := correctorDeps{Ant: deps.Ant, Bias: deps.Bias, Wave: deps.Wave}
		corr := CorrectMeasurements(&s.Config, st, o, sp, vel, approxPos, corrDeps)

		var alpha, beta [4]float64
		if deps.Iono != nil {
			if a, b, ok := deps.Iono.Coefficients(st.Sys); ok {
				alpha, beta = a, b
			}
		}
		BuildDesignRows(&s.Config, l, x, p, t, o.Sat, st, corr, approxPos, los, measurementDeps{Alpha: alpha, Beta: beta}, batch)
	}
	return batch
}

// rejectPrefitOutliers drops every row of any satellite that has a row whose
// pre-fit innovation exceeds Config.MaxInno, and adds that satellite to
// excluded so buildEpochBatch leaves it out of every remaining iteration
// this epoch (ppp.go's PPPResidual post==0 branch, exc[i]=1). MaxInno<=0
// disables the check, matching the teacher's opt.MaxInno>0.0 guard.
func rejectPrefitOutliers(s *State, batch *measBatch, excluded map[int]bool) *measBatch {
	if s.Config.MaxInno <= 0 {
		return batch
	}
	for i, v := range batch.V {
		if math.Abs(v) <= s.Config.MaxInno {
			continue
		}
		reason := fmt.Sprintf("pre-fit innovation %.3f exceeds MaxInno %.3f", v, s.Config.MaxInno)
		excludeSat(s, batch.rowSat[i], batch.rowIsPhase[i], reason)
		excluded[batch.rowSat[i]] = true
	}
	out := &measBatch{}
	for i, v := range batch.V {
		if !excluded[batch.rowSat[i]] {
			appendRow(out, rowH(batch, i, len(batch.V)), v, batch.R[i], batch.rowSat[i], batch.rowFreq[i], batch.rowIsPhase[i])
		}
	}
	return out
}

// rowH extracts the i'th design row (width n = len(batch.H)/nv) from batch.
func rowH(batch *measBatch, i, nv int) []float64 {
	if nv == 0 {
		return nil
	}
	n := len(batch.H) / nv
	return batch.H[i*n : (i+1)*n]
}

// worstPostfitResidual scans batch for rows exceeding ThresReject-sigma and
// returns the index of the single largest, mirroring ppp.go's post-fit
// "reject satellite with large and max post-fit residual" pass.
func worstPostfitResidual(batch *measBatch) (idx int, val float64, found bool) {
	worstAbs := -1.0
	for i, v := range batch.V {
		sigma := math.Sqrt(batch.R[i])
		if math.Abs(v) <= ThresReject*sigma {
			continue
		}
		if math.Abs(v) > worstAbs {
			worstAbs = math.Abs(v)
			idx, val, found = i, v, true
		}
	}
	return idx, val, found
}

// excludeSat records a satellite's rejection for diagnostics and the
// per-satellite counters spec.md §4.6 tracks (RejcCode/RejcPhase), logging
// it at warn level.
func excludeSat(s *State, sat int, isPhase bool, reason string) {
	st := &s.Sat[sat-1]
	if isPhase {
		st.RejcPhase++
	} else {
		st.RejcCode++
	}
	st.LastRejectReason = reason
	logRejection(s.Log, sat, reason)
}

// writePostfit records each row's final innovation back into the
// per-satellite diagnostics (SatState.ResPostCode/ResPostPhase).
func writePostfit(s *State, batch *measBatch) {
	for i, sat := range batch.rowSat {
		st := &s.Sat[sat-1]
		f := batch.rowFreq[i]
		if batch.rowIsPhase[i] {
			st.ResPostPhase[f] = batch.V[i]
		} else {
			st.ResPostCode[f] = batch.V[i]
		}
	}
}
