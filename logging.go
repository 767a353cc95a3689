package ppp

import "github.com/sirupsen/logrus"

// logEpoch emits one structured log line summarizing an epoch's commit,
// mirroring the field-per-value style bramburn-gnssgo/pkg/server.go uses
// around its logrus.FieldLogger.
func logEpoch(log logrus.FieldLogger, s *State) {
	log.WithFields(logrus.Fields{
		"session": s.SessionID.String(),
		"status":  s.Sol.Stat,
		"nsat":    s.Sol.NSat,
		"nfix":    s.Nfix,
	}).Debug("ppp: epoch committed")
}

// logRejection emits a structured warning when a satellite/frequency is
// excluded from an epoch's solution, carrying the reason through
// SatDiagnostics.RejectReason (spec.md §7 Error Handling Design).
func logRejection(log logrus.FieldLogger, sat int, reason string) {
	log.WithFields(logrus.Fields{
		"sat":    sat,
		"reason": reason,
	}).Warn("ppp: satellite rejected")
}
