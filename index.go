package ppp

// Layout is the state-vector addressing table (spec.md §3 X/P layout),
// computed once per session from a Config. Ported from ppp.go's NP/NC/NT/
// NI/ND/NR/NB/NX/IC/IT/ITR/II/ID/IB/IL free functions, folded into a struct
// so the block sizes are computed once instead of on every call.
type Layout struct {
	nf int // folded frequency count, == cfg.NF()

	np int // position block size (3 or 9)
	nc int // clock block size, one per enabled system
	nt int // troposphere block size (0, 1, or 3)
	ni int // ionosphere block size (0 or MAXSAT)
	nd int // receiver-DCB block size (0 or 1)

	posOff   int
	clkOff   int
	tropOff  int
	ionoOff  int
	dcbOff   int
	biasOff  int

	sysIdx [NSYS]int // system -> clock-slot index, -1 if not enabled
}

// sysOrder mirrors ppp.go's IC(): fixed GPS,GLO,GAL,CMP,QZS,IRN,SBS ordering.
var sysOrder = [NSYS]int{SysGPS, SysGLO, SysGAL, SysCMP, SysQZS, SysIRN, SysSBS}

// NewLayout builds the addressing table for cfg.
func NewLayout(cfg *Config) Layout {
	l := Layout{
		nf: cfg.NF(),
		np: cfg.NP(),
		nt: cfg.NT(),
		ni: cfg.NI(),
		nd: cfg.ND(),
	}
	for i := range l.sysIdx {
		l.sysIdx[i] = -1
	}
	nc := 0
	for i, sys := range sysOrder {
		if cfg.NavSys&sys != 0 {
			l.sysIdx[i] = nc
			nc++
		}
	}
	l.nc = nc

	l.posOff = 0
	l.clkOff = l.posOff + l.np
	l.tropOff = l.clkOff + l.nc
	l.ionoOff = l.tropOff + l.nt
	l.dcbOff = l.ionoOff + l.ni
	l.biasOff = l.dcbOff + l.nd
	return l
}

// Size returns the total state-vector length, bias block included, for
// MAXSAT*nf ambiguity states (ppp.go's NX/pppnx).
func (l Layout) Size() int {
	return l.biasOff + MAXSAT*l.nf
}

// Pos returns the index of the i'th position/velocity/acceleration state
// (i in [0, NP)).
func (l Layout) Pos(i int) int { return l.posOff + i }

// Clock returns the index of the receiver-clock state for sys, or -1 if sys
// is not enabled in this session (ppp.go's IC).
func (l Layout) Clock(sys int) int {
	for i, s := range sysOrder {
		if s == sys {
			if l.sysIdx[i] < 0 {
				return -1
			}
			return l.clkOff + l.sysIdx[i]
		}
	}
	return -1
}

// Trop returns the index of the ZTD state (ppp.go's IT, first component).
func (l Layout) Trop() int {
	if l.nt == 0 {
		return -1
	}
	return l.tropOff
}

// TropGrad returns the index of the axis'th (0=north,1=east) horizontal
// gradient state, or -1 if gradients are not estimated (ppp.go's ITR).
func (l Layout) TropGrad(axis int) int {
	if l.nt < 3 {
		return -1
	}
	return l.tropOff + 1 + axis
}

// Iono returns the index of sat's slant ionosphere state (1-based sat,
// ppp.go's II), or -1 when iono is not estimated.
func (l Layout) Iono(sat int) int {
	if l.ni == 0 || sat < 1 || sat > MAXSAT {
		return -1
	}
	return l.ionoOff + sat - 1
}

// DCB returns the index of the receiver inter-frequency code-bias state
// (ppp.go's ID), or -1 when the third-frequency design row is not active
// (spec.md §9 Open Question 3: Nf>=3 only).
func (l Layout) DCB() int {
	if l.nd == 0 {
		return -1
	}
	return l.dcbOff
}

// Bias returns the index of satellite sat's ambiguity state for folded
// frequency f (ppp.go's IB). f is always 0 under iono-free combination mode.
func (l Layout) Bias(sat, f int) int {
	if sat < 1 || sat > MAXSAT || f < 0 || f >= l.nf {
		return -1
	}
	return l.biasOff + MAXSAT*f + sat - 1
}

// NF reports the folded frequency count used by Bias/design rows.
func (l Layout) NF() int { return l.nf }
