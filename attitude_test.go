package ppp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYawNominalZeroForDegenerateOrbit(t *testing.T) {
	assert := assert.New(t)
	rs := [6]float64{0, 0, 0, 0, 0, 0}
	esun := [3]float64{1, 0, 0}
	assert.Equal(0.0, yawNominal(rs, esun))
}

func TestYawNominalFinitForRealisticOrbit(t *testing.T) {
	assert := assert.New(t)
	rs := [6]float64{20000000, 10000000, 5000000, -500, 1000, 2000}
	esun := [3]float64{1, 0, 0}
	y := yawNominal(rs, esun)
	assert.False(math.IsNaN(y))
	assert.LessOrEqual(math.Abs(y), PI)
}

func TestSatYawMatchesNominalModel(t *testing.T) {
	assert := assert.New(t)
	rs := [6]float64{20000000, 10000000, 5000000, -500, 1000, 2000}
	esun := [3]float64{1, 0, 0}
	assert.Equal(yawNominal(rs, esun), satYaw(rs, esun, true))
	assert.Equal(yawNominal(rs, esun), satYaw(rs, esun, false))
}

func TestPhaseWindupResolvesTwoPiAmbiguityNearPreviousValue(t *testing.T) {
	assert := assert.New(t)
	satPos := [3]float64{20000000, 10000000, 5000000}
	satVel := [3]float64{-500, 1000, 2000}
	recvPos := [3]float64{RE_WGS84, 0, 0}

	phw1 := phaseWindup(satPos, satVel, recvPos, 0, 0)
	assert.False(math.IsNaN(phw1))

	phw2 := phaseWindup(satPos, satVel, recvPos, 0, phw1+50.0)
	assert.InDelta(phw1+50.0, phw2, 0.5, "stays within half a cycle of the seeded previous value")
}

func TestPhaseWindupDegenerateLineOfSightReturnsPrevious(t *testing.T) {
	assert := assert.New(t)
	satPos := [3]float64{1, 0, 0}
	recvPos := [3]float64{1, 0, 0}
	assert.Equal(3.5, phaseWindup(satPos, [3]float64{}, recvPos, 0, 3.5))
}

func TestEclipseTestSunSideNeverEclipsed(t *testing.T) {
	assert := assert.New(t)
	satPos := [3]float64{20000000, 0, 0}
	esun := [3]float64{1, 0, 0}
	assert.False(eclipseTest(satPos, esun))
}

func TestEclipseTestAntiSunWithinShadowCylinder(t *testing.T) {
	assert := assert.New(t)
	satPos := [3]float64{-20000000, 0, 0}
	esun := [3]float64{1, 0, 0}
	assert.True(eclipseTest(satPos, esun))
}

func TestEclipseTestAntiSunOutsideShadowCylinder(t *testing.T) {
	assert := assert.New(t)
	satPos := [3]float64{-20000000, 20000000, 0}
	esun := [3]float64{1, 0, 0}
	assert.False(eclipseTest(satPos, esun))
}
