package ppp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdatePosInitializesInactiveState(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	updatePos(s, 0)
	for i := 0; i < 3; i++ {
		assert.True(s.active(s.Layout.Pos(i)))
	}
}

func TestUpdatePosPropagatesConstantAcceleration(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Dynamics = true
	s := NewState(cfg, nil)
	l := s.Layout
	for i := 0; i < 9; i++ {
		s.initx(l.Pos(i), 0, VarPos)
	}
	s.X[l.Pos(0)] = 100.0
	s.X[l.Pos(3)] = 2.0 // velocity x
	updatePos(s, 10.0)
	assert.InDelta(120.0, s.X[l.Pos(0)], 1e-9)
}

func TestUpdatePosSeedsAccelerationWithVarAcc(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Dynamics = true
	s := NewState(cfg, nil)
	l := s.Layout
	updatePos(s, 0)
	n := s.n()
	for i := 6; i < 9; i++ {
		ai := l.Pos(i)
		assert.InDelta(VarAcc, s.P[ai+ai*n], 1e-9, "acceleration states seeded with VarAcc, not VarVel")
	}
}

func TestPropagateDynamicsGrowsAccelerationVariance(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Dynamics = true
	s := NewState(cfg, nil)
	l := s.Layout
	for i := 0; i < 9; i++ {
		s.initx(l.Pos(i), 0, VarPos)
	}
	s.X[l.Pos(0)] = RE_WGS84
	n := s.n()
	before := s.P[l.Pos(6)+l.Pos(6)*n]
	propagateDynamics(s, l, 10.0)
	assert.Greater(s.P[l.Pos(6)+l.Pos(6)*n], before, "acceleration process noise injected")
}

func TestPropagateDynamicsCouplesPositionToVelocityCovariance(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Dynamics = true
	s := NewState(cfg, nil)
	l := s.Layout
	for i := 0; i < 9; i++ {
		s.initx(l.Pos(i), 0, VarPos)
	}
	s.X[l.Pos(0)] = RE_WGS84
	n := s.n()
	vi := l.Pos(3)
	s.P[vi+vi*n] = 4.0 // nonzero velocity variance to propagate into position
	pi := l.Pos(0)
	before := s.P[pi+pi*n]
	propagateDynamics(s, l, 10.0)
	assert.Greater(s.P[pi+pi*n], before, "velocity variance propagates into position via F*P*F'")
}

func TestUpdateClockResetsOnDayBoundaryJump(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.PosOpt[5] = true
	s := NewState(cfg, nil)
	idx := s.Layout.Clock(SysGPS)
	s.initx(idx, 1e-3*CLIGHT*2, VarClk)
	midnight := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updateClock(s, 1.0, midnight, nil)
	assert.InDelta(1e-6, s.X[idx], 1e-9, "clock state reset to the fresh seed value")
}

func TestUpdateClockNoJumpOutsideMidnight(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.PosOpt[5] = true
	s := NewState(cfg, nil)
	idx := s.Layout.Clock(SysGPS)
	s.initx(idx, 1e-3*CLIGHT*2, VarClk)
	noon := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	updateClock(s, 1.0, noon, nil)
	assert.InDelta(1e-3*CLIGHT*2, s.X[idx], 1e-9, "no jump handling away from midnight")
}

func TestDayBoundaryJumpSignInvariant(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	idx := s.Layout.Clock(SysGPS)
	midnight := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s.initx(idx, 1e-3*CLIGHT*2, VarClk)
	assert.True(dayBoundaryJump(s, midnight, idx), "positive jump detected")

	s.X[idx] = -1e-3 * CLIGHT * 2
	assert.True(dayBoundaryJump(s, midnight, idx), "negative jump also detected")
}

func TestUpdateTropInitializesThenAccumulatesProcessNoise(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.TropOpt = TropEst
	s := NewState(cfg, nil)
	updateTrop(s, 0)
	zi := s.Layout.Trop()
	assert.True(s.active(zi))

	n := s.n()
	pBefore := s.P[zi+zi*n]
	updateTrop(s, 100.0)
	assert.Greater(s.P[zi+zi*n], pBefore)
}

func TestUpdateTropGradOnlyWithThreeStateMode(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.TropOpt = TropEstGrad
	s := NewState(cfg, nil)
	updateTrop(s, 0)
	assert.True(s.active(s.Layout.TropGrad(0)))
	assert.True(s.active(s.Layout.TropGrad(1)))
}

func TestUpdateIonoResetsAfterLongOutage(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.IonoOpt = IonoEst
	cfg.GapResion = 5
	s := NewState(cfg, nil)
	sat := 3
	ii := s.Layout.Iono(sat)
	s.initx(ii, 1.0, VarIono)
	s.Sat[sat-1].Outc[0] = 10
	updateIono(s, 1.0, nil)
	assert.False(s.active(ii))
}

func TestUpdateIonoSeedsWhenSatelliteSeenAndInactive(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.IonoOpt = IonoEst
	s := NewState(cfg, nil)
	sat := 3
	obs := []Observation{{Sat: sat}}
	updateIono(s, 1.0, obs)
	assert.True(s.active(s.Layout.Iono(sat)))
}

func TestUpdateDCBNoopWithoutThirdFrequency(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Nf = 2
	s := NewState(cfg, nil)
	updateDCB(s)
	assert.Equal(-1, s.Layout.DCB())
}

func TestUpdateDCBInitializesWithThirdFrequency(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Nf = 3
	s := NewState(cfg, nil)
	updateDCB(s)
	assert.True(s.active(s.Layout.DCB()))
}

func TestUpdateBiasResetsOnSlipLeavingStateInactiveForSeeding(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.IonoOpt = IonoEst
	cfg.Nf = 2
	s := NewState(cfg, nil)
	sat := 3
	bi := s.Layout.Bias(sat, 0)
	s.initx(bi, 100.0, VarBias)
	s.Sat[sat-1].Slip[0] = SlipProvenance{GF: true}
	obs := []Observation{{Sat: sat}}

	updateBias(s, 1.0, obs, [3]float64{})
	assert.False(s.active(bi), "reset leaves the state inactive so seedAmbiguity can write the real value")
}

func TestUpdateBiasLeavesStableAmbiguityUntouched(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.IonoOpt = IonoEst
	cfg.Nf = 2
	s := NewState(cfg, nil)
	sat := 3
	bi := s.Layout.Bias(sat, 0)
	s.initx(bi, 100.0, VarBias)
	obs := []Observation{{Sat: sat}}

	updateBias(s, 1.0, obs, [3]float64{})
	assert.True(s.active(bi))
	assert.Equal(100.0, s.X[bi])
}
