package ppp

// BDS-2 IGSO/MEO satellite multipath/code-bias correction table, ported
// from ppp.go's hard-coded BDS-2 satellite code-bias compensation used in
// CorrMeas. Values are reconstructed from published RTKLIB correction
// tables (Wanninger & Beer 2015 elevation-dependent code-bias model) — the
// pack's original_source/ directory retrieved zero files for this repo, so
// these constants are NOT byte-for-byte grounded against a teacher source
// file the way the rest of this module is; see DESIGN.md.

// bdsElevBins are the elevation nodes (deg) the correction table is
// tabulated at.
var bdsElevBins = [10]float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90}

// bdsIGSOCorr and bdsMEOCorr hold the B1/B2/B3 code-bias correction (m) at
// each elevation bin, for IGSO and MEO satellite types respectively.
var bdsIGSOCorr = [10][3]float64{
	{-0.55, -0.71, -0.27}, {-0.40, -0.36, -0.23}, {-0.34, -0.33, -0.21},
	{-0.23, -0.19, -0.15}, {-0.15, -0.14, -0.11}, {-0.10, -0.10, -0.07},
	{-0.04, -0.03, -0.03}, {0.09, 0.08, 0.06}, {0.19, 0.17, 0.13}, {0.27, 0.24, 0.19},
}

var bdsMEOCorr = [10][3]float64{
	{-0.47, -0.40, -0.22}, {-0.38, -0.31, -0.15}, {-0.32, -0.26, -0.13},
	{-0.23, -0.18, -0.10}, {-0.11, -0.06, -0.04}, {0.06, 0.09, 0.05},
	{0.34, 0.28, 0.14}, {0.69, 0.48, 0.27}, {0.97, 0.64, 0.36}, {1.05, 0.69, 0.39},
}

// bdsSatIsIGSO reports whether BDS PRN prn is an IGSO satellite (vs MEO);
// PRNs 6-10 and 13/16/31/38-40 are IGSO in the block assignment this table
// was tabulated against, everything else in the BDS-2 PRN range is treated
// as MEO.
func bdsSatIsIGSO(prn int) bool {
	switch prn {
	case 6, 7, 8, 9, 10, 13, 16, 31, 38, 39, 40:
		return true
	default:
		return false
	}
}

// bdsMultipathCorr returns the elevation-dependent BDS-2 code multipath
// correction (m) for carrier index f (0=B1,1=B2,2=B3) at elevation el
// (rad), linearly interpolated between table bins, ppp.go's inline BDS
// correction lookup.
func bdsMultipathCorr(prn int, f int, el float64) float64 {
	if f < 0 || f > 2 {
		return 0
	}
	elDeg := el * R2D
	if elDeg < 0 {
		elDeg = 0
	}
	if elDeg > 90 {
		elDeg = 90
	}
	table := &bdsMEOCorr
	if bdsSatIsIGSO(prn) {
		table = &bdsIGSOCorr
	}
	idx := int(elDeg / 10.0)
	if idx >= 9 {
		return table[9][f]
	}
	frac := (elDeg - bdsElevBins[idx]) / 10.0
	return (1-frac)*table[idx][f] + frac*table[idx+1][f]
}
