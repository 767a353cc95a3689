package linalg

// KalmanUpdate applies one linearized Kalman measurement update:
//
//	Q  = H'*P*H + R
//	K  = P*H*Q^-1
//	xp = x + K*v
//	Pp = (I - K*H')*P
//
// x, P are the n-state prior; H is n x m (design matrix, column per
// measurement); v is the m x 1 innovation; R is m x m measurement noise.
// Only the "active" rows/columns of x/P (x[i] != 0 && P[i,i] > 0) are
// updated, matching the teacher's Filter()/filter_() split in common.go —
// inactive (not-yet-initialized) parameters are left untouched rather than
// fed through a singular sub-block.
func KalmanUpdate(x, p []float64, h, v, r []float64, n, m int) error {
	ix := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if x[i] != 0.0 && p[i+i*n] > 0.0 {
			ix = append(ix, i)
		}
	}
	k := len(ix)
	if k == 0 {
		return nil
	}

	xs := Mat(k, 1)
	ps := Mat(k, k)
	hs := Mat(k, m)
	for i := 0; i < k; i++ {
		xs[i] = x[ix[i]]
		for j := 0; j < k; j++ {
			ps[i+j*k] = p[ix[i]+ix[j]*n]
		}
		for j := 0; j < m; j++ {
			hs[i+j*k] = h[ix[i]+j*n]
		}
	}

	xp, pp, err := kalmanUpdateDense(xs, ps, hs, v, r, k, m)
	if err != nil {
		return err
	}
	for i := 0; i < k; i++ {
		x[ix[i]] = xp[i]
		for j := 0; j < k; j++ {
			p[ix[i]+ix[j]*n] = pp[i+j*k]
		}
	}
	return nil
}

func kalmanUpdateDense(x, p, h, v, r []float64, n, m int) (xp, pp []float64, err error) {
	f := Mat(n, m)
	q := Mat(m, m)
	kk := Mat(n, m)
	ident := Eye(n)
	xp = Mat(n, 1)
	pp = Mat(n, n)

	MatCpy(q, r)
	MatCpy(xp, x)
	MatMul("NN", n, m, n, 1.0, p, h, 0.0, f)  // F = P*H
	MatMul("TN", m, m, n, 1.0, h, f, 1.0, q)  // Q = H'*P*H + R
	if err = MatInv(q, m); err != nil {
		return nil, nil, err
	}
	MatMul("NN", n, m, m, 1.0, f, q, 0.0, kk)   // K = P*H*Q^-1
	MatMul("NN", n, 1, m, 1.0, kk, v, 1.0, xp)  // xp = x + K*v
	MatMul("NT", n, n, m, -1.0, kk, h, 1.0, ident) // I - K*H'
	MatMul("NN", n, n, n, 1.0, ident, p, 0.0, pp)  // Pp = (I-K*H')*P
	return xp, pp, nil
}

// Symmetrize forces P to be exactly symmetric by averaging each off-diagonal
// pair, absorbing floating-point asymmetry (spec.md invariant 2).
func Symmetrize(p []float64, n int) {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			avg := (p[i+j*n] + p[j+i*n]) / 2.0
			p[i+j*n] = avg
			p[j+i*n] = avg
		}
	}
}
