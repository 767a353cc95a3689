package ppp

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the full mutable estimator state carried across epochs: the
// filter vector/covariance, per-satellite bookkeeping, and the session's
// identity/logging collaborators. Ported from the teacher's Rtk struct,
// trimmed to PPP (no RTK base-station fields) and split so navigation/
// ephemeris collaborators live outside it (spec.md §6).
type State struct {
	Config Config
	Layout Layout

	X []float64 // state vector, length Layout.Size()
	P []float64 // covariance, Layout.Size() x Layout.Size(), column-major

	Sat [MAXSAT]SatState
	Amb [MAXSAT]AmbiguityControl

	Sol  Solution
	Nfix int // consecutive fix-and-hold epoch counter (spec.md §4.7)

	SessionID uuid.UUID
	Log       logrus.FieldLogger
}

// NewState allocates a State sized for cfg and returns it ready for the
// first epoch. log may be nil, in which case a disabled logrus logger is
// installed so callers never need a nil check (bramburn-gnssgo's
// pkg/server.Server constructor pattern).
func NewState(cfg Config, log logrus.FieldLogger) *State {
	layout := NewLayout(&cfg)
	n := layout.Size()
	s := &State{
		Config:    cfg,
		Layout:    layout,
		X:         make([]float64, n),
		P:         make([]float64, n*n),
		SessionID: uuid.New(),
		Log:       log,
	}
	if s.Log == nil {
		discard := logrus.New()
		discard.SetOutput(logrusDiscard{})
		s.Log = discard
	}
	return s
}

// logrusDiscard is an io.Writer that drops everything, used when the caller
// supplies no logger.
type logrusDiscard struct{}

func (logrusDiscard) Write(p []byte) (int, error) { return len(p), nil }

// n is the full state dimension, a shorthand used throughout the component
// files (ppp.go addresses its vectors the same way via pppnx(opt)).
func (s *State) n() int { return s.Layout.Size() }

// initx initializes state index i to value x0 with variance var0, zeroing
// any prior contents of that row/column of P — mirrors ppp.go's initx,
// which is called whenever a state enters or re-enters the active set
// (spec.md invariant 1: X[i]!=0 && P[i,i]>0 together mean "active").
func (s *State) initx(i int, x0, var0 float64) {
	if i < 0 {
		return
	}
	n := s.n()
	s.X[i] = x0
	for j := 0; j < n; j++ {
		s.P[i+j*n] = 0.0
		s.P[j+i*n] = 0.0
	}
	s.P[i+i*n] = var0
}

// active reports whether state index i currently participates in the filter
// (spec.md invariant 1).
func (s *State) active(i int) bool {
	return activeIn(s.X, s.P, s.n(), i)
}

// activeIn is active's free-function form, usable against any x/p pair of
// the session's size — the pre-fit linearization point (s.X/s.P) or a
// Kalman-updated working copy the EKF iteration hasn't committed yet.
func activeIn(x, p []float64, n, i int) bool {
	if i < 0 {
		return false
	}
	return x[i] != 0.0 && p[i+i*n] > 0.0
}

// reset clears state index i back to inactive (X=0, P row/col=0), used by
// slip/outage handling in timeupdate.go and pppos.go's runSlipDetection.
func (s *State) reset(i int) {
	if i < 0 {
		return
	}
	n := s.n()
	s.X[i] = 0.0
	for j := 0; j < n; j++ {
		s.P[i+j*n] = 0.0
		s.P[j+i*n] = 0.0
	}
}
