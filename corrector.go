package ppp

import (
	"math"
	"time"
)

// CorrectedObs holds the fully-corrected per-frequency observables for one
// satellite at one epoch, ready for slip detection and design-row
// construction (spec.md §4.2 Observable Corrector). Ported from ppp.go's
// CorrMeas, which folds PCV/PCO, phase windup, BDS multipath, and DCB/SSR
// code bias into the raw L/P arrays in place — this keeps the corrections
// as a separate, inspectable record instead.
type CorrectedObs struct {
	Sat int

	L [NFREQ]float64 // corrected carrier phase range-equivalent (m), 0 = unusable
	P [NFREQ]float64 // corrected pseudorange (m), 0 = unusable

	Lc float64 // iono-free phase combination (m), only valid if IFLC in use
	Pc float64 // iono-free code combination (m)

	Wavelength [NFREQ]float64
	Az, El     float64
}

// correctorDeps bundles the external collaborators CorrectMeasurements
// needs, grouped so call sites don't have to thread five parameters through
// every helper (spec.md §6 External Interfaces).
type correctorDeps struct {
	Ant  AntennaModel
	Bias CodeBiasProvider
	Wave WavelengthTable
}

// CorrectMeasurements applies antenna PCO/PCV, phase-windup, BDS-2
// elevation multipath, and code-bias corrections to one satellite's raw
// observation, given its precise position/clock and the receiver's
// geodetic position. sat carries the running phase-windup accumulator
// (SatState.Phw) which is updated in place. Ported from ppp.go's CorrMeas.
func CorrectMeasurements(cfg *Config, sat *SatState, obs Observation, satpc SatPosClock, satVel [3]float64, recvEcef [3]float64, deps correctorDeps) CorrectedObs {
	var out CorrectedObs
	out.Sat = obs.Sat

	recvPos := ecef2Pos(recvEcef)
	r, e := geoDist(satpc.Pos, recvEcef)
	az, el := satAzel(recvPos, e)
	out.Az, out.El = az, el
	sat.Az, sat.El = az, el

	esun := sunPosEcef(epochSeconds(obs.Time))
	yaw := satYaw([6]float64{satpc.Pos[0], satpc.Pos[1], satpc.Pos[2], satVel[0], satVel[1], satVel[2]}, esun, cfg.PosOpt[2])
	sat.Phw = phaseWindup(satpc.Pos, satVel, recvEcef, yaw, sat.Phw)

	isBDS := sat.Sys == SysCMP
	prn := obs.Sat - 119 // BDS satellite numbers 120-155 are PRNs 1-36 (sysOfSat)

	for f := 0; f < NFREQ; f++ {
		code := obs.Code[f]
		wl := 0.0
		if deps.Wave != nil {
			wl = deps.Wave.Wavelength(obs.Sat, code)
		}
		out.Wavelength[f] = wl

		if obs.L[f] != 0 && wl > 0 {
			phaseRange := obs.L[f] * wl
			if deps.Ant != nil && cfg.PosOpt[0] {
				phaseRange -= deps.Ant.SatellitePCV(obs.Sat, nadirAngle(satpc.Pos, recvEcef))
				phaseRange += deps.Ant.ReceiverPCV(f, az, el)
			}
			phaseRange += sat.Phw * wl
			out.L[f] = phaseRange - r + satpc.ClockBias*CLIGHT
		}

		if obs.P[f] != 0 {
			pr := obs.P[f]
			if isBDS && f < 3 {
				pr -= bdsMultipathCorr(prn, f, el)
			}
			if deps.Bias != nil {
				if deps.Bias.UseSSR() {
					if b, ok := deps.Bias.SSRCodeBias(obs.Sat, code); ok {
						pr -= b
					}
				} else {
					pr += deps.Bias.DCB(obs.Sat, code)
				}
			}
			out.P[f] = pr - r + satpc.ClockBias*CLIGHT
		}
	}

	if cfg.IonoOpt == IonoIFLC {
		f1, f2 := freqPair(cfg.FreqPair)
		out.Lc = ionoFree(out.L[f1], out.L[f2], f1, f2)
		out.Pc = ionoFree(out.P[f1], out.P[f2], f1, f2)
	}

	return out
}

// freqPair resolves spec.md §9 Open Question 1: which two folded-frequency
// slots feed the iono-free combination.
func freqPair(mode FreqPairMode) (int, int) {
	switch mode {
	case FreqPairL1L3:
		return 0, 2
	default:
		return 0, 1
	}
}

// carrierFreqHz is the nominal carrier frequency (Hz) per folded-frequency
// slot, GPS L1/L2/L5 values (other constellations' exact values don't
// matter for the iono-free combining ratio used here — see DESIGN.md).
var carrierFreqHz = [NFREQ]float64{1575.42e6, 1227.60e6, 1176.45e6}

// ionoFree forms the dual-frequency iono-free linear combination of two
// range-equivalent observables at folded-frequency slots i, j.
func ionoFree(a, b float64, i, j int) float64 {
	if a == 0 || b == 0 {
		return 0
	}
	fi2 := carrierFreqHz[i] * carrierFreqHz[i]
	fj2 := carrierFreqHz[j] * carrierFreqHz[j]
	return (fi2*a - fj2*b) / (fi2 - fj2)
}

// nadirAngle returns the satellite-frame nadir angle (rad) to the receiver,
// used for satellite PCV interpolation.
func nadirAngle(satPos, recvPos [3]float64) float64 {
	d := subtract(recvPos, satPos)
	dn, ok := normV3(d)
	if !ok {
		return 0
	}
	up, ok := normV3(scale(satPos, -1))
	if !ok {
		return 0
	}
	c := dot3(dn, up)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.Unix()%86400) + float64(t.Nanosecond())/1e9
}
