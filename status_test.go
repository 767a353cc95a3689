package ppp

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWriteEpochEmitsPosThenOneSatLinePerDiagnostic(t *testing.T) {
	assert := assert.New(t)
	var lines []string
	w := &PPPStatusWriter{Write_: func(line string) error {
		lines = append(lines, line)
		return nil
	}}
	sol := Solution{Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Stat: StatusFloat, NSat: 2}
	diag := []SatDiagnostics{{Sat: 3, Az: 1.5, El: 0.7}, {Sat: 9, Az: 2.1, El: 0.3}}

	err := w.WriteEpoch(sol, diag)
	assert.NoError(err)
	assert.Len(lines, 3)
	assert.Contains(lines[0], "$POS")
	assert.Contains(lines[1], "$SAT")
	assert.Contains(lines[2], "$SAT")
}

func TestWriteEpochPropagatesWriterError(t *testing.T) {
	assert := assert.New(t)
	boom := errors.New("boom")
	w := &PPPStatusWriter{Write_: func(line string) error { return boom }}
	err := w.WriteEpoch(Solution{}, nil)
	assert.ErrorIs(err, boom)
}

func TestWriteEpochToleratesNilWriteFunc(t *testing.T) {
	assert := assert.New(t)
	w := &PPPStatusWriter{}
	err := w.WriteEpoch(Solution{}, nil)
	assert.NoError(err)
}
