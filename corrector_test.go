package ppp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreqPairResolvesOpenQuestion1(t *testing.T) {
	assert := assert.New(t)
	f1, f2 := freqPair(FreqPairL1L2)
	assert.Equal(0, f1)
	assert.Equal(1, f2)

	f1, f2 = freqPair(FreqPairL1L3)
	assert.Equal(0, f1)
	assert.Equal(2, f2)
}

func TestIonoFreeCombinationZeroWhenEitherInputMissing(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(0.0, ionoFree(0, 5, 0, 1))
	assert.Equal(0.0, ionoFree(5, 0, 0, 1))
	assert.NotEqual(0.0, ionoFree(5, 5.5, 0, 1))
}

func TestCorrectMeasurementsProducesRangeEquivalentPhase(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	sat := &SatState{Sys: SysGPS}
	obs := Observation{
		Sat:  3,
		Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		L:    [NFREQ]float64{100000000, 90000000, 0},
		P:    [NFREQ]float64{20000000, 20000005, 0},
		Code: [NFREQ]uint8{CodeL1C, CodeL2C, 0},
	}
	satpc := SatPosClock{
		Sat:       3,
		Pos:       [3]float64{20000000, 10000000, 10000000},
		ClockBias: 0,
		SVH:       0,
	}
	recv := [3]float64{6378137 + 500, 0, 0}

	wave := fakeWavelengthTable{}
	out := CorrectMeasurements(&cfg, sat, obs, satpc, [3]float64{}, recv, correctorDeps{Wave: wave})

	assert.NotEqual(0.0, out.L[0])
	assert.NotEqual(0.0, out.P[0])
	assert.Equal(3, out.Sat)
}

type fakeWavelengthTable struct{}

func (fakeWavelengthTable) Wavelength(sat int, code uint8) float64 {
	if code == CodeL2C {
		return CLIGHT / 1227.60e6
	}
	return CLIGHT / 1575.42e6
}

func TestBDSMultipathCorrInterpolatesBetweenBins(t *testing.T) {
	assert := assert.New(t)
	low := bdsMultipathCorr(1, 0, 0)
	high := bdsMultipathCorr(1, 0, 90*D2R)
	mid := bdsMultipathCorr(1, 0, 45*D2R)
	assert.NotEqual(low, high)
	assert.Greater(mid, low)
}

func TestBDSSatIsIGSOClassification(t *testing.T) {
	assert := assert.New(t)
	assert.True(bdsSatIsIGSO(6))
	assert.False(bdsSatIsIGSO(1))
}
