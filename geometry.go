package ppp

import "math"

// Vector and ECEF/geodetic helpers, ported from common.go (Dot, Norm, Cross3,
// NormV3, Ecef2Pos, Pos2Ecef, XYZ2Enu, Ecef2Enu, Cov2Ecef, GeoDist, SatAzel).

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func norm3(a [3]float64) float64 {
	return math.Sqrt(dot3(a, a))
}

func cross3(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// normV3 normalizes a, returning the unit vector and false if a is the zero
// vector (mirrors the teacher's NormV3 "status 0/1" convention).
func normV3(a [3]float64) ([3]float64, bool) {
	r := norm3(a)
	if r <= 0.0 {
		return [3]float64{}, false
	}
	return [3]float64{a[0] / r, a[1] / r, a[2] / r}, true
}

// ecef2Pos converts ECEF x/y/z (m) to geodetic lat/lon/height (rad, rad, m),
// WGS84 ellipsoid, iterative form matching common.go's Ecef2Pos.
func ecef2Pos(r [3]float64) [3]float64 {
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	r2 := r[0]*r[0] + r[1]*r[1]
	v := RE_WGS84
	z, zk := r[2], 0.0
	var sinp float64
	for math.Abs(z-zk) >= 1e-4 {
		zk = z
		sinp = z / math.Sqrt(r2+z*z)
		v = RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)
		z = r[2] + v*e2*sinp
	}
	var pos [3]float64
	if r2 > 1e-12 {
		pos[0] = math.Atan(z / math.Sqrt(r2))
	} else if r[2] > 0 {
		pos[0] = PI / 2.0
	} else {
		pos[0] = -PI / 2.0
	}
	if r2 > 1e-12 {
		pos[1] = math.Atan2(r[1], r[0])
	}
	pos[2] = math.Sqrt(r2+z*z) - v
	return pos
}

// pos2Ecef converts geodetic lat/lon/height back to ECEF, the inverse of
// ecef2Pos.
func pos2Ecef(pos [3]float64) [3]float64 {
	e2 := FE_WGS84 * (2.0 - FE_WGS84)
	sinp, cosp := math.Sin(pos[0]), math.Cos(pos[0])
	sinl, cosl := math.Sin(pos[1]), math.Cos(pos[1])
	v := RE_WGS84 / math.Sqrt(1.0-e2*sinp*sinp)
	return [3]float64{
		(v + pos[2]) * cosp * cosl,
		(v + pos[2]) * cosp * sinl,
		(v*(1.0-e2) + pos[2]) * sinp,
	}
}

// xyz2Enu returns the 3x3 (row-major) rotation matrix from ECEF to local
// ENU at geodetic position pos.
func xyz2Enu(pos [3]float64) [9]float64 {
	sinp, cosp := math.Sin(pos[0]), math.Cos(pos[0])
	sinl, cosl := math.Sin(pos[1]), math.Cos(pos[1])
	return [9]float64{
		-sinl, cosl, 0,
		-sinp * cosl, -sinp * sinl, cosp,
		cosp * cosl, cosp * sinl, sinp,
	}
}

// ecef2Enu rotates an ECEF vector r into local ENU at geodetic position pos.
func ecef2Enu(pos [3]float64, r [3]float64) [3]float64 {
	e := xyz2Enu(pos)
	return [3]float64{
		e[0]*r[0] + e[1]*r[1] + e[2]*r[2],
		e[3]*r[0] + e[4]*r[1] + e[5]*r[2],
		e[6]*r[0] + e[7]*r[1] + e[8]*r[2],
	}
}

// cov2Ecef rotates a 3x3 ENU covariance Q into ECEF at geodetic position pos,
// P = E' * Q * E, matching common.go's Cov2Ecef.
func cov2Ecef(pos [3]float64, q [9]float64) [9]float64 {
	e := xyz2Enu(pos)
	var ep [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += e[k*3+i] * q[k*3+j]
			}
			ep[i*3+j] = s
		}
	}
	var p [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += ep[i*3+k] * e[k*3+j]
			}
			p[i*3+j] = s
		}
	}
	return p
}

// geoDist computes the geometric range between satellite position rs and
// receiver position rr, Sagnac-corrected, returning the unit line-of-sight
// vector e (receiver-to-satellite). Mirrors common.go's GeoDist.
func geoDist(rs, rr [3]float64) (r float64, e [3]float64) {
	d := [3]float64{rs[0] - rr[0], rs[1] - rr[1], rs[2] - rr[2]}
	r = norm3(d)
	if r <= 0 {
		return 0, e
	}
	e = [3]float64{d[0] / r, d[1] / r, d[2] / r}
	r += OMGE * (rs[0]*rr[1] - rs[1]*rr[0]) / CLIGHT
	return r, e
}

// satAzel computes satellite azimuth/elevation given receiver geodetic
// position pos and the unit line-of-sight vector e, returning elevation.
func satAzel(pos [3]float64, e [3]float64) (az, el float64) {
	enu := ecef2Enu(pos, e)
	az = 0.0
	if dot3(enu, enu) > 1e-12 {
		az = math.Atan2(enu[0], enu[1])
		if az < 0 {
			az += 2 * PI
		}
	}
	el = math.Asin(enu[2])
	return az, el
}
