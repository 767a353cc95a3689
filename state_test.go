package ppp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStateAllocatesSizedVectors(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	n := s.Layout.Size()
	assert.Len(s.X, n)
	assert.Len(s.P, n*n)
	assert.NotEqual(s.SessionID.String(), "")
	assert.NotNil(s.Log, "NewState must install a non-nil logger when none is supplied")
}

func TestInitxActivatesState(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	idx := s.Layout.Pos(0)

	assert.False(s.active(idx))
	s.initx(idx, 42.0, 100.0)
	assert.True(s.active(idx))
	assert.Equal(42.0, s.X[idx])
	n := s.n()
	assert.Equal(100.0, s.P[idx+idx*n])
}

func TestResetDeactivatesState(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	idx := s.Layout.Pos(0)
	s.initx(idx, 1.0, 10.0)
	assert.True(s.active(idx))
	s.reset(idx)
	assert.False(s.active(idx))
	assert.Equal(0.0, s.X[idx])
}

func TestInitxClearsCrossCovariance(t *testing.T) {
	assert := assert.New(t)
	cfg := DefaultConfig()
	s := NewState(cfg, nil)
	n := s.n()
	i, j := s.Layout.Pos(0), s.Layout.Pos(1)
	s.initx(i, 1.0, 10.0)
	s.initx(j, 1.0, 10.0)
	s.P[i+j*n] = 5.0
	s.P[j+i*n] = 5.0

	s.initx(i, 2.0, 20.0)
	assert.Equal(0.0, s.P[i+j*n])
	assert.Equal(0.0, s.P[j+i*n])
}
