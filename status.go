package ppp

import "fmt"

// PPPStatusWriter is the default StatusWriter implementation, in the style
// of ppp.go's OutPPPStat trace records: it writes one $POS line per epoch
// and one $SAT line per satellite diagnostic, and no $CLK/$TROP/$ION or
// other record types. Formatting itself is explicitly out
// of scope for the estimator's core logic (spec.md §1); this exists purely
// so Estimator always has something to call.
type PPPStatusWriter struct {
	Write_ func(line string) error
}

// WriteEpoch renders one epoch into RTKLIB-style $-prefixed status lines.
func (w *PPPStatusWriter) WriteEpoch(sol Solution, diag []SatDiagnostics) error {
	emit := w.Write_
	if emit == nil {
		emit = func(string) error { return nil }
	}
	if err := emit(fmt.Sprintf("$POS,%s,%.4f,%.4f,%.4f,%d,%d",
		sol.Time.Format("2006/01/02 15:04:05.000"), sol.Pos[0], sol.Pos[1], sol.Pos[2], int(sol.Stat), sol.NSat)); err != nil {
		return err
	}
	for _, d := range diag {
		if err := emit(fmt.Sprintf("$SAT,%s,%d,%.1f,%.1f,%s",
			sol.Time.Format("2006/01/02 15:04:05.000"), d.Sat, d.Az, d.El, d.RejectReason)); err != nil {
			return err
		}
	}
	return nil
}
