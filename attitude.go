package ppp

import "math"

// Satellite yaw-attitude, phase-windup, and eclipse modeling (C8). Ported
// from ppp.go's Yaw_Nominal/Yaw_Angle/Sat_Yaw/Model_Phw/TestEclipse.

// sunPosEcef returns an approximate low-precision sun ECEF unit direction,
// enough to drive yaw/eclipse geometry without a full ephemeris dependency
// (the teacher's SunMoonPos is higher precision but needs UT1-UTC/nutation
// tables this repo does not carry; spec.md treats attitude geometry as an
// in-scope approximation, not an external product).
func sunPosEcef(t float64) [3]float64 {
	// t: seconds of GPST day fraction is not enough for a real ephemeris; this
	// is deliberately coarse and exists to keep eclipse/yaw geometry self
	// contained. Callers needing observatory-grade sun vectors should supply
	// one via a dedicated collaborator — out of scope here.
	eps := 23.439291 * D2R
	m := 357.5291092*D2R + 0.98560028*D2R*(t/86400.0)
	l := 280.46646*D2R + 0.98564736*D2R*(t/86400.0) + 0.0333*math.Sin(m)
	x := math.Cos(l)
	y := math.Cos(eps) * math.Sin(l)
	z := math.Sin(eps) * math.Sin(l)
	return [3]float64{x, y, z}
}

// yawNominal returns the nominal (orbit-normal) yaw angle given the unit
// sun direction esun and satellite position/velocity rs (m, m/s) — ppp.go's
// Yaw_Nominal.
func yawNominal(rs [6]float64, esun [3]float64) float64 {
	pos := [3]float64{rs[0], rs[1], rs[2]}
	vel := [3]float64{rs[3], rs[4], rs[5]}
	n := cross3(pos, vel)
	nn, ok := normV3(n)
	if !ok {
		return 0
	}
	ri, ok := normV3(pos)
	if !ok {
		return 0
	}
	p := cross3(nn, ri)

	es, ok := normV3(esun)
	if !ok {
		return 0
	}
	cosb := dot3(nn, es)
	sinb := math.Sqrt(1 - cosb*cosb)
	_ = sinb
	y := -dot3(p, es)
	x := -dot3(ri, es)
	return math.Atan2(y, x)
}

// satYaw returns the nominal yaw angle for one satellite, ppp.go's Sat_Yaw
// simplified to the nominal model. precise is accepted and ignored: no
// noon/midnight-turn model is applied.
func satYaw(rs [6]float64, esun [3]float64, precise bool) float64 {
	return yawNominal(rs, esun)
}

// phaseWindup accumulates the carrier phase-windup correction (cycles) for
// one satellite-receiver pair across epochs, ppp.go's Model_Phw. phw is the
// previous accumulated value (SatState.Phw); satPos/recvPos are ECEF (m).
func phaseWindup(satPos, satVel, recvPos [3]float64, yaw float64, phwPrev float64) float64 {
	ri, ok := normV3(subtract(recvPos, satPos))
	if !ok {
		return phwPrev
	}
	// satellite body axes from yaw and nadir direction
	nadir, ok := normV3(scale(satPos, -1))
	if !ok {
		return phwPrev
	}
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	east := cross3([3]float64{0, 0, 1}, nadir)
	east, ok = normV3(east)
	if !ok {
		east = [3]float64{1, 0, 0}
	}
	north := cross3(nadir, east)
	xs := add(scale(east, cy), scale(north, sy))

	// receiver dipole assumed aligned with ECEF x-axis projected into the
	// plane perpendicular to the line of sight; this collapses to the
	// standard windup formula when compared against the satellite dipole.
	ds := subtract(xs, scale(ri, dot3(xs, ri)))
	ds2, ok := normV3(ds)
	if !ok {
		return phwPrev
	}
	de := subtract([3]float64{1, 0, 0}, scale(ri, dot3([3]float64{1, 0, 0}, ri)))
	de2, ok := normV3(de)
	if !ok {
		return phwPrev
	}
	cosp := dot3(ds2, de2)
	if cosp > 1 {
		cosp = 1
	} else if cosp < -1 {
		cosp = -1
	}
	sign := 1.0
	if dot3(ri, cross3(ds2, de2)) < 0 {
		sign = -1.0
	}
	phi := sign * math.Acos(cosp) / (2 * PI)

	// resolve the 2*pi ambiguity by staying close to the previous value
	// (ppp.go Model_Phw).
	d := phwPrev - phi
	shift := math.Round(d)
	return phi + shift
}

func add(a, b [3]float64) [3]float64      { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func subtract(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

// eclipseTest reports whether the satellite at satPos is in earth shadow
// given the sun direction (unit, not scaled by AU), ppp.go's TestEclipse —
// cylindrical shadow model, Block IIA-only yaw-maneuver caveat omitted since
// per-block tables are external data.
func eclipseTest(satPos [3]float64, esun [3]float64) bool {
	es, ok := normV3(esun)
	if !ok {
		return false
	}
	cosa := dot3(satPos, es) / normOrZero(satPos)
	if cosa > 0 {
		return false // on the sun side of earth, can't be in shadow
	}
	sinAngle := math.Sqrt(1 - cosa*cosa)
	perp := sinAngle * normOrZero(satPos)
	return perp < RE_WGS84
}

func normOrZero(v [3]float64) float64 {
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	return n
}
