// Package linalg provides the dense, column-major matrix kernel the EKF
// update needs: allocation helpers, GEMM, and Gauss-Jordan inversion. Ported
// from FengXuebin-gnssgo/src/common.go (Mat/Zeros/Eye/MatCpy/MatMul/MatInv).
//
// Matrices are stored as flat []float64 slices in Fortran (column-major)
// order, exactly as the teacher stores them, so index arithmetic carried
// over from ppp.go (i+j*n) keeps its meaning unchanged.
package linalg

import "math"

// Mat allocates an n x m matrix.
func Mat(n, m int) []float64 {
	if n <= 0 || m <= 0 {
		return nil
	}
	return make([]float64, n*m)
}

// Zeros allocates an n x m matrix of zeros (make already zero-initializes,
// kept for symmetry with the teacher's API and call sites that read better
// named this way).
func Zeros(n, m int) []float64 {
	return Mat(n, m)
}

// Eye allocates an n x n identity matrix.
func Eye(n int) []float64 {
	p := Zeros(n, n)
	for i := 0; i < n; i++ {
		p[i+i*n] = 1.0
	}
	return p
}

// MatCpy copies B into A, both n x m.
func MatCpy(a, b []float64) {
	copy(a, b)
}

// MatMul computes C = alpha*op(A)*op(B) + beta*C where op is transpose or
// identity per tr[0] (A) and tr[1] (B) being 'N' or 'T'. A is n x m (or m x n
// if transposed), B is m x k (or k x m), C is n x k. Ported from MatMul.
func MatMul(tr string, n, k, m int, alpha float64, a, b []float64, beta float64, c []float64) {
	for i := 0; i < n; i++ {
		for j := 0; j < k; j++ {
			var d float64
			for x := 0; x < m; x++ {
				var f float64
				switch {
				case tr[0] == 'N' && tr[1] == 'N':
					f = a[i+x*n] * b[x+j*m]
				case tr[0] == 'T' && tr[1] == 'N':
					f = a[x+i*m] * b[x+j*m]
				case tr[0] == 'N' && tr[1] == 'T':
					f = a[i+x*n] * b[j+x*k]
				default:
					f = a[x+i*m] * b[j+x*k]
				}
				d += f
			}
			c[i+j*n] = alpha*d + beta*c[i+j*n]
		}
	}
}

// MatInv inverts the n x n matrix a in place using Gauss-Jordan elimination
// with partial pivoting. Returns an error if a is singular. Ported from the
// teacher's MatInv (which itself wraps LU decomposition); this uses
// Gauss-Jordan directly since the teacher's LU helper types are not needed
// elsewhere in this module.
func MatInv(a []float64, n int) error {
	aug := make([]float64, n*2*n)
	// aug stored row-major [n][2n] for pivoting convenience, converted from
	// the caller's column-major a.
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			aug[i*2*n+j] = a[i+j*n]
		}
		aug[i*2*n+n+i] = 1.0
	}
	for col := 0; col < n; col++ {
		piv := col
		maxAbs := math.Abs(aug[col*2*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r*2*n+col]); v > maxAbs {
				maxAbs = v
				piv = r
			}
		}
		if maxAbs < 1e-12 {
			return errSingular
		}
		if piv != col {
			for j := 0; j < 2*n; j++ {
				aug[col*2*n+j], aug[piv*2*n+j] = aug[piv*2*n+j], aug[col*2*n+j]
			}
		}
		pv := aug[col*2*n+col]
		for j := 0; j < 2*n; j++ {
			aug[col*2*n+j] /= pv
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			f := aug[r*2*n+col]
			if f == 0 {
				continue
			}
			for j := 0; j < 2*n; j++ {
				aug[r*2*n+j] -= f * aug[col*2*n+j]
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i+j*n] = aug[i*2*n+n+j]
		}
	}
	return nil
}

var errSingular = errSingularType{}

type errSingularType struct{}

func (errSingularType) Error() string { return "linalg: matrix is singular" }
