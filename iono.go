package ppp

import (
	"math"
	"time"
)

// Ionosphere delay modeling (part of C5 Measurement Model). Ported from
// common.go's IonModel/IonMapf and ppp.go's ModelIono.

// ionMapf returns the single-layer ionospheric mapping function for
// elevation el (rad), common.go's IonMapf (thin-shell height 350 km).
func ionMapf(pos [3]float64, el float64) float64 {
	if pos[2] >= 350000 {
		return 1.0
	}
	arg := (RE_WGS84 + pos[2]) / (RE_WGS84 + 350000.0) * math.Cos(el)
	if arg > 1 {
		arg = 1
	}
	return 1.0 / math.Cos(math.Asin(arg))
}

// ionModelKlobuchar evaluates the broadcast Klobuchar model at time t,
// geodetic position pos (rad,rad,m), azimuth/elevation az/el (rad), using
// broadcast coefficients alpha/beta. Returns the L1 slant ionospheric delay
// (m). Ported from common.go's IonModel.
func ionModelKlobuchar(t time.Time, pos [3]float64, az, el float64, alpha, beta [4]float64) float64 {
	if pos[2] < -1e3 || el <= 0 {
		return 0
	}
	if norm4(alpha) == 0 {
		alpha = [4]float64{0.1118e-07, -0.7451e-08, -0.5960e-07, 0.1192e-06}
	}
	if norm4(beta) == 0 {
		beta = [4]float64{0.1167e+06, -0.2294e+06, -0.1311e+06, 0.1049e+07}
	}

	psi := 0.0137/(el/PI+0.11) - 0.022

	phiI := pos[0]/PI + psi*math.Cos(az)
	if phiI > 0.416 {
		phiI = 0.416
	} else if phiI < -0.416 {
		phiI = -0.416
	}

	lamI := pos[1]/PI + psi*math.Sin(az)/math.Cos(phiI*PI)

	phiM := phiI + 0.064*math.Cos((lamI-1.617)*PI)

	sow := gpsSecOfWeek(t)
	tt := 43200.0*lamI + sow
	tt -= math.Floor(tt/86400.0) * 86400.0

	f := 1.0 + 16.0*math.Pow(0.53-el/PI, 3.0)

	amp := alpha[0] + phiM*(alpha[1]+phiM*(alpha[2]+phiM*alpha[3]))
	per := beta[0] + phiM*(beta[1]+phiM*(beta[2]+phiM*beta[3]))
	if amp < 0 {
		amp = 0
	}
	if per < 72000.0 {
		per = 72000.0
	}

	x := 2.0 * PI * (tt - 50400.0) / per
	var delay float64
	if math.Abs(x) < 1.57 {
		delay = CLIGHT * f * (5e-9 + amp*(1.0-x*x/2.0+x*x*x*x/24.0))
	} else {
		delay = CLIGHT * f * 5e-9
	}
	return delay
}

func norm4(v [4]float64) float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2] + v[3]*v[3]
}

// gpsSecOfWeek returns seconds-of-week (GPS time scale) for t, enough
// precision for the Klobuchar local-time computation (leap seconds don't
// matter at this resolution).
func gpsSecOfWeek(t time.Time) float64 {
	wd := int(t.Weekday())
	secOfDay := t.Hour()*3600 + t.Minute()*60 + t.Second()
	return float64(wd*86400+secOfDay) + float64(t.Nanosecond())/1e9
}

// ionoFreqScale converts an L1-referenced delay to folded-frequency slot f
// using the inverse-square frequency scaling law (common.go applies the
// same scaling when mapping broadcast/SBAS iono to a non-L1 frequency).
func ionoFreqScale(l1Delay float64, f int) float64 {
	if f == 0 {
		return l1Delay
	}
	return l1Delay * sqr(carrierFreqHz[0]/carrierFreqHz[f])
}

// modelIono evaluates the slant ionospheric delay (m) at folded-frequency
// slot f per cfg.IonoOpt. For IonoEst, it maps the filter's per-satellite
// slant-delay state (L1-referenced) via ionMapf/ionoFreqScale; for
// IonoBroadcast it evaluates Klobuchar directly; IonoIFLC returns 0 since
// the combination already cancels first-order ionosphere.
func modelIono(cfg *Config, t time.Time, pos [3]float64, az, el float64, f int, alpha, beta [4]float64, ionoState float64) (delay float64, dDdState float64) {
	switch cfg.IonoOpt {
	case IonoIFLC, IonoOff:
		return 0, 0
	case IonoBroadcast:
		l1 := ionModelKlobuchar(t, pos, az, el, alpha, beta)
		return ionoFreqScale(l1, f), 0
	case IonoEst, IonoSTEC:
		mf := ionMapf(pos, el)
		scaled := ionoFreqScale(mf*ionoState, f)
		dScale := 1.0
		if f != 0 {
			dScale = sqr(carrierFreqHz[0] / carrierFreqHz[f])
		}
		return scaled, mf * dScale
	default:
		return 0, 0
	}
}
