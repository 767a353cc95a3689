package ppp

import "math"

// Troposphere delay modeling (part of C5 Measurement Model). Ported from
// common.go's TropModel/TropMapFunc and ppp.go's TropModelPrec/ModelTrop.

// tropModelSaastamoinen returns the zenith hydrostatic+wet delay (m) via the
// Saastamoinen model given geodetic position pos (rad,rad,m), relative
// humidity humi in [0,1], and day-of-year fraction unused beyond standard
// atmosphere (no meteorological collaborator is wired — spec.md treats
// met-data sourcing as the caller's concern, defaulting to standard
// atmosphere like the teacher).
func tropModelSaastamoinen(pos [3]float64, humi float64) float64 {
	if pos[2] < -100 || pos[2] > 20000 {
		return 0
	}
	hgt := pos[2]
	if hgt < 0 {
		hgt = 0
	}
	// standard atmosphere at sea level, lapse-rate adjusted
	const (
		temp0 = 15.0
		pres0 = 1013.25
	)
	pres := pres0 * math.Pow(1.0-2.2557e-5*hgt, 5.2568)
	temp := temp0 - 6.5e-3*hgt + 273.16
	e := 6.108 * humi * math.Exp((17.15*temp-4684.0)/(temp-38.45))

	trph := 0.0022768 * pres / (1.0 - 0.00266*math.Cos(2*pos[0]) - 0.00028e-3*hgt)
	trpw := 0.002277 * (1255.0/temp + 0.05) * e
	return trph + trpw
}

// tropMapFunc returns the Niell-style simplified mapping function value for
// elevation el (rad), ppp.go's simplified 1/sin(el) form used when no
// precise gradient mapping is requested.
func tropMapFunc(el float64) float64 {
	if el <= 0 {
		return 0
	}
	return 1.0 / math.Sin(el)
}

// tropMapFuncPrec returns (mapping-wet, mapping-grad-north, mapping-grad-
// east) for elevation/azimuth, an approximate Niell wet mapping plus the
// standard Chen & Herring gradient mapping functions, ppp.go's
// TropModelPrec.
func tropMapFuncPrec(az, el float64) (mw, mgN, mgE float64) {
	if el <= 0 {
		return 0, 0, 0
	}
	sinEl := math.Sin(el)
	mw = 1.0/sinEl - 0.00035/(sinEl*sinEl+0.018)
	mg := 1.0 / (sinEl*math.Tan(el) + 0.0032)
	mgN = mg * math.Cos(az)
	mgE = mg * math.Sin(az)
	return
}

// modelTrop evaluates the total slant troposphere delay (m) given the
// current ZTD (+ optional gradient) filter states, elevation/azimuth, and
// config. Ported from ppp.go's ModelTrop. When opt.TropOpt < TropEst, the
// delay is the Saastamoinen zenith delay (70% relative humidity) mapped
// with tropMapFunc, and all partial derivatives are zero; when
// TropEst/TropEstGrad, the filter's ZTD state is mapped instead and its
// partial derivatives are returned so measurement.go can build the design
// row.
func modelTrop(cfg *Config, pos [3]float64, az, el float64, ztd, gradN, gradE float64) (delay float64, dDdZtd, dDdGradN, dDdGradE float64) {
	switch {
	case cfg.TropOpt < TropEst:
		return tropModelSaastamoinen(pos, 0.7) * tropMapFunc(el), 0, 0, 0
	default:
		zhd := tropModelSaastamoinen(pos, 0.0)
		mw, mgN, mgE := tropMapFuncPrec(az, el)
		mapDry := tropMapFunc(el)
		// zhd*mapDry is the a-priori hydrostatic delay; ztd is the filter's
		// estimated residual (wet + unmodeled) delay, mapped with the wet
		// mapping function — standard PPP ZTD decomposition.
		delay = zhd*mapDry + mw*ztd
		if cfg.TropOpt >= TropEstGrad {
			delay += mgN*gradN + mgE*gradE
			dDdGradN = mgN
			dDdGradE = mgE
		}
		dDdZtd = mw
		return
	}
}
