package ppp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutBlockSizes(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	l := NewLayout(&cfg)

	assert.Equal(3, l.np, "kinematic non-dynamic mode uses position-only block")
	assert.Equal(1, l.nf, "iono-free combination folds to a single frequency")
	assert.Equal(1, l.nt, "TropEst uses ZTD-only, no gradients")
	assert.Equal(0, l.ni, "iono-free mode does not estimate slant ionosphere")

	// GPS, GLO, GAL, CMP all enabled by default
	assert.GreaterOrEqual(l.Clock(SysGPS), 0)
	assert.GreaterOrEqual(l.Clock(SysGLO), 0)
	assert.GreaterOrEqual(l.Clock(SysGAL), 0)
	assert.GreaterOrEqual(l.Clock(SysCMP), 0)
	assert.Equal(-1, l.Clock(SysQZS), "QZSS not in default NavSys mask")
}

func TestLayoutBiasIndicesAreUnique(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	l := NewLayout(&cfg)

	b1 := l.Bias(1, 0)
	b2 := l.Bias(2, 0)
	assert.NotEqual(b1, b2)
	assert.Equal(-1, l.Bias(0, 0), "satellite numbers are 1-based")
	assert.Equal(-1, l.Bias(1, 5), "frequency out of range")
}

func TestLayoutSizeCoversBiasBlock(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	l := NewLayout(&cfg)
	assert.Equal(l.biasOff+MAXSAT*l.nf, l.Size())
}

func TestGradientStatesOnlyWithTropEstGrad(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.TropOpt = TropEstGrad
	l := NewLayout(&cfg)
	assert.Equal(3, l.nt)
	assert.GreaterOrEqual(l.TropGrad(0), 0)
	assert.GreaterOrEqual(l.TropGrad(1), 0)

	cfg2 := DefaultConfig()
	l2 := NewLayout(&cfg2)
	assert.Equal(-1, l2.TropGrad(0))
}

func TestDCBStateOnlyWithThreeFrequencies(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	cfg.Nf = 3
	cfg.IonoOpt = IonoEst // avoid collapsing nf back to 1
	l := NewLayout(&cfg)
	assert.GreaterOrEqual(l.DCB(), 0)

	cfg2 := DefaultConfig()
	l2 := NewLayout(&cfg2)
	assert.Equal(-1, l2.DCB(), "dual-frequency sessions carry no receiver-DCB state")
}
