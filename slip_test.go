package ppp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSlipLLI(t *testing.T) {
	assert := assert.New(t)
	assert.True(detectSlipLLI([NFREQ]uint8{1, 0, 0}))
	assert.True(detectSlipLLI([NFREQ]uint8{2, 0, 0}), "bit 1 (half-cycle ambiguity) is also a slip flag")
	assert.False(detectSlipLLI([NFREQ]uint8{0, 0, 0}))
}

func TestDetectSlipGF(t *testing.T) {
	assert := assert.New(t)
	assert.False(detectSlipGF(1.0, 0, 0.05), "no prior GF sample means no slip verdict yet")
	assert.False(detectSlipGF(1.00, 1.02, 0.05))
	assert.True(detectSlipGF(1.00, 1.20, 0.05))
}

func TestDetectSlipMWFirstSampleSeedsArc(t *testing.T) {
	assert := assert.New(t)
	sat := &SatState{}
	res := detectSlip(sat, [NFREQ]uint8{}, 0, 10.5, true, 0.05, MWGapMax, MWCSMin, 0.86)
	assert.False(res.Slip.MW)
	assert.Equal(1, res.MWArc)
	assert.Equal(10.5, res.MWMean)
}

func TestDetectSlipMWBigJumpAlwaysSlips(t *testing.T) {
	assert := assert.New(t)
	sat := &SatState{MWMean: 10.0, MWArc: 5, MWPrev: 10.0}
	res := detectSlip(sat, [NFREQ]uint8{}, 0, 25.0, true, 0.05, MWGapMax, MWCSMin, 0.86)
	assert.True(res.Slip.MW)
	assert.Equal(1, res.MWArc, "a detected slip resets the arc")
}

func TestDetectSlipMWStableArcGrowsAndUpdatesMean(t *testing.T) {
	assert := assert.New(t)
	sat := &SatState{MWMean: 10.0, MWArc: 5, MWPrev: 10.1, MWM2: 0.04}
	res := detectSlip(sat, [NFREQ]uint8{}, 0, 10.05, true, 0.05, MWGapMax, MWCSMin, 0.86)
	assert.False(res.Slip.MW)
	assert.Equal(6, res.MWArc)
	assert.InDelta(10.008, res.MWMean, 1e-3)
}

func TestDetectSlipMWArcSaturates(t *testing.T) {
	assert := assert.New(t)
	sat := &SatState{MWMean: 10.0, MWArc: MWArcMax, MWPrev: 10.0, MWM2: 1.0}
	res := detectSlip(sat, [NFREQ]uint8{}, 0, 10.0, true, 0.05, MWGapMax, MWCSMin, 0.86)
	assert.Equal(MWArcMax, res.MWArc)
}

func TestApplySlipResetsAllFrequenciesOnAnyDetectorFiring(t *testing.T) {
	assert := assert.New(t)
	sat := &SatState{}
	resetCount := 0
	res := slipDetectResult{Slip: SlipProvenance{GF: true}}
	applySlip(sat, res, func(f int) { resetCount++ })
	assert.Equal(NFREQ, resetCount)
	for f := 0; f < NFREQ; f++ {
		assert.True(sat.Slip[f].GF)
	}
}

func TestSlipProvenanceSlipped(t *testing.T) {
	assert := assert.New(t)
	assert.False(SlipProvenance{}.Slipped())
	assert.True(SlipProvenance{MW: true}.Slipped())
}
