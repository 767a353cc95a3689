package ppp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeEphemeris struct {
	sats []SatPosClock
}

func (f fakeEphemeris) SatPositions(t time.Time, obs []Observation) ([]SatPosClock, error) {
	return f.sats, nil
}

func fourSatFixture(recv [3]float64) ([]Observation, []SatPosClock) {
	// all four satellites sit 67-90 deg above the test receiver's horizon
	positions := [][3]float64{
		{17000000, 13000000, 15000000},
		{12000000, 19500000, 15000000},
		{22000000, 6500000, 15000000},
		{13000000, 10000000, 21500000},
	}
	var obs []Observation
	var sats []SatPosClock
	for i, pos := range positions {
		satNum := i + 1
		r, _ := geoDist(pos, recv)
		obs = append(obs, Observation{
			Sat:  satNum,
			Time: time.Now(),
			P:    [NFREQ]float64{r + 5.0, r + 5.0, 0},
			L:    [NFREQ]float64{0, 0, 0},
			Code: [NFREQ]uint8{CodeL1C, CodeL2C, 0},
		})
		sats = append(sats, SatPosClock{Sat: satNum, Pos: pos, SVH: 0})
	}
	return obs, sats
}

func TestProcessEpochFailsWithoutEphemeris(t *testing.T) {
	assert := assert.New(t)
	est := NewEstimator(DefaultConfig(), nil)
	_, err := est.ProcessEpoch(context.Background(), time.Now(), nil)
	assert.Error(err)
}

func TestProcessEpochBootstrapsAndProducesASolution(t *testing.T) {
	assert := assert.New(t)
	recv := [3]float64{4000000.0, 3000000.0, 3500000.0}
	obs, sats := fourSatFixture(recv)

	est := NewEstimator(DefaultConfig(), nil)
	est.Eph = fakeEphemeris{sats: sats}

	sol, err := est.ProcessEpoch(context.Background(), time.Now(), obs)
	assert.NoError(err)
	assert.Equal(4, sol.NSat)
	assert.NotEqual(StatusNone, sol.Stat)
}

func TestProcessEpochFailsWhenBootstrapHasTooFewSatellites(t *testing.T) {
	assert := assert.New(t)
	recv := [3]float64{4000000.0, 3000000.0, 3500000.0}
	obs, sats := fourSatFixture(recv)
	obs = obs[:2]
	sats = sats[:2]

	est := NewEstimator(DefaultConfig(), nil)
	est.Eph = fakeEphemeris{sats: sats}

	_, err := est.ProcessEpoch(context.Background(), time.Now(), obs)
	assert.Error(err)
}

func TestBootstrapPositionConvergesNearTruth(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	truth := [3]float64{4000000.0, 3000000.0, 3500000.0}
	obs, sats := fourSatFixture(truth)

	pos, ok := bootstrapPosition(&cfg, obs, sats)
	assert.True(ok)
	for i := 0; i < 3; i++ {
		assert.InDelta(truth[i], pos[i], 1.0)
	}
}

func TestBootstrapPositionFailsWithTooFewSatellites(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	truth := [3]float64{4000000.0, 3000000.0, 3500000.0}
	obs, sats := fourSatFixture(truth)

	_, ok := bootstrapPosition(&cfg, obs[:3], sats[:3])
	assert.False(ok)
}

func TestSysOfSatPartitionsPRNRanges(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(SysGPS, sysOfSat(5))
	assert.Equal(SysSBS, sysOfSat(40))
	assert.Equal(SysGLO, sysOfSat(70))
	assert.Equal(SysGAL, sysOfSat(90))
	assert.Equal(SysCMP, sysOfSat(130))
	assert.Equal(SysQZS, sysOfSat(160))
	assert.Equal(SysIRN, sysOfSat(200))
}

func TestBuildDiagnosticsReportsPerSatelliteAmbiguity(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	satNum := 2
	bi := s.Layout.Bias(satNum, 0)
	s.initx(bi, 12.5, VarBias)
	s.Sat[satNum-1].Az = 1.0
	s.Sat[satNum-1].El = 0.5

	diag := BuildDiagnostics(s, []Observation{{Sat: satNum}})
	assert.Len(diag, 1)
	assert.Equal(12.5, diag[0].Ambiguity[0])
	assert.Greater(diag[0].AmbiguityStd[0], 0.0)
}
