// Command pppsim drives the estimator against a synthetic constellation, for
// exercising the filter and inspecting its status output without a RINEX/SP3
// reader wired in (that I/O layer is explicitly out of scope — see
// navigation.go). Flag layout follows FengXuebin-gnssgo/app/rnx2rtkp's style:
// a searchHelp-backed usage table and flag.*Var bindings straight into the
// options struct.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	ppp "github.com/ppp-core/estimator"
)

var progname = "pppsim"

var help = []string{
	"",
	" usage: pppsim [option]...",
	"",
	" Drives the PPP estimator against a synthetic multi-satellite scene for a",
	" fixed number of epochs and prints $POS/$SAT status lines to stdout. No",
	" RINEX/SP3 input is read; satellite geometry is generated internally.",
	"",
	" -n count    number of epochs to process [30]",
	" -ti sec     time interval between epochs (sec) [30]",
	" -m deg      elevation mask angle (deg) [10]",
	" -f n        number of frequencies (1:L1,2:L1+L2,3:L1+L2+L5) [2]",
	" -sys s[,s…] nav system(s) (s=G:GPS,R:GLO,E:GAL,C:BDS) [G]",
	" -sat count  number of synthetic satellites in view [6]",
	" -v          verbose (debug-level) logging to stderr [off]",
}

func searchHelp(key string) string {
	for _, v := range help {
		if strings.Contains(v, key) {
			return v
		}
	}
	return "no supported argument"
}

// navSysFlag parses a comma-separated system-letter list into cfg.NavSys,
// the same small flag.Value idiom rnx2rtkp's -sys option uses.
type navSysFlag struct {
	target *int
}

func (f *navSysFlag) String() string { return "" }

func (f *navSysFlag) Set(s string) error {
	mask := 0
	for _, tok := range strings.Split(s, ",") {
		switch strings.TrimSpace(tok) {
		case "G":
			mask |= ppp.SysGPS
		case "R":
			mask |= ppp.SysGLO
		case "E":
			mask |= ppp.SysGAL
		case "C":
			mask |= ppp.SysCMP
		case "J":
			mask |= ppp.SysQZS
		case "I":
			mask |= ppp.SysIRN
		default:
			return fmt.Errorf("pppsim: unknown nav system %q", tok)
		}
	}
	if mask == 0 {
		return fmt.Errorf("pppsim: empty nav system list")
	}
	*f.target = mask
	return nil
}

func main() {
	cfg := ppp.DefaultConfig()
	cfg.NavSys = ppp.SysGPS

	epochs := 30
	tint := 30.0
	elmaskDeg := 10.0
	nsat := 6
	verbose := false

	flag.IntVar(&epochs, "n", epochs, searchHelp("-n "))
	flag.Float64Var(&tint, "ti", tint, searchHelp("-ti"))
	flag.Float64Var(&elmaskDeg, "m", elmaskDeg, searchHelp("-m"))
	flag.IntVar(&cfg.Nf, "f", cfg.Nf, searchHelp("-f"))
	flag.IntVar(&nsat, "sat", nsat, searchHelp("-sat"))
	flag.BoolVar(&verbose, "v", verbose, searchHelp("-v"))
	flag.Var(&navSysFlag{target: &cfg.NavSys}, "sys", searchHelp("-sys"))
	flag.Parse()

	cfg.Elmin = elmaskDeg * ppp.D2R

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	est := ppp.NewEstimator(cfg, log)
	eph := newSyntheticEphemeris(nsat)
	est.Eph = eph
	est.Out = &ppp.PPPStatusWriter{Write_: func(line string) error {
		_, err := fmt.Println(line)
		return err
	}}

	recv := [3]float64{-2700000.0, -4300000.0, 3850000.0} // a mid-latitude ECEF station
	start := time.Now().UTC()

	ctx := context.Background()
	for i := 0; i < epochs; i++ {
		t := start.Add(time.Duration(float64(i)*tint) * time.Second)
		obs := eph.observationsAt(t, recv)
		if _, err := est.ProcessEpoch(ctx, t, obs); err != nil {
			log.WithError(err).WithField("epoch", i).Warn("pppsim: epoch failed")
			continue
		}
	}
}

// syntheticEphemeris places nsat satellites on fixed, widely separated
// circular tracks around the receiver so the estimator always sees a
// well-conditioned geometry — this stands in for a real precise-ephemeris
// product, which is out of scope (navigation.go's Ephemeris interface).
type syntheticEphemeris struct {
	nsat  int
	phase []float64
}

func newSyntheticEphemeris(nsat int) *syntheticEphemeris {
	if nsat < 4 {
		nsat = 4
	}
	phase := make([]float64, nsat)
	for i := range phase {
		phase[i] = 2 * math.Pi * float64(i) / float64(nsat)
	}
	return &syntheticEphemeris{nsat: nsat, phase: phase}
}

func (e *syntheticEphemeris) satPos(i int, t time.Time) [3]float64 {
	const radius = 26560000.0 // m, GPS-like semi-major axis
	omega := 2 * math.Pi / (12 * 3600)
	theta := e.phase[i] + omega*float64(t.Unix())
	tiltAxis := float64(i%3) * math.Pi / 6
	x := radius * math.Cos(theta)
	y := radius * math.Sin(theta) * math.Cos(tiltAxis)
	z := radius * math.Sin(theta) * math.Sin(tiltAxis)
	return [3]float64{x, y, z}
}

func (e *syntheticEphemeris) SatPositions(t time.Time, obs []ppp.Observation) ([]ppp.SatPosClock, error) {
	out := make([]ppp.SatPosClock, 0, e.nsat)
	for i := 0; i < e.nsat; i++ {
		out = append(out, ppp.SatPosClock{Sat: i + 1, Pos: e.satPos(i, t), SVH: 0})
	}
	return out, nil
}

// observationsAt fabricates a clean pseudorange-only observation set (no
// carrier phase) so ambiguity seeding/slip detection stay dormant — this is
// a geometry smoke test for the position/clock/troposphere states, not a
// carrier-phase PPP convergence demo.
func (e *syntheticEphemeris) observationsAt(t time.Time, recv [3]float64) []ppp.Observation {
	obs := make([]ppp.Observation, 0, e.nsat)
	for i := 0; i < e.nsat; i++ {
		satPos := e.satPos(i, t)
		r := math.Sqrt(sqrDist(satPos, recv))
		obs = append(obs, ppp.Observation{
			Sat:  i + 1,
			Time: t,
			P:    [3]float64{r, r, 0},
			Code: [3]uint8{ppp.CodeL1C, ppp.CodeL2C, 0},
		})
	}
	return obs
}

func sqrDist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dx*dx + dy*dy + dz*dz
}
