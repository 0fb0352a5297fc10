package playlist

import "math"

const (
	fpsEpsilon = 0.01
	fpsScale   = 100000
)

// Rate is a frame rate fraction.
type Rate struct {
	Num uint32
	Den uint32
}

// Float returns the rate in frames per second.
func (r Rate) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

var broadcastRates = []Rate{
	{60, 1}, {50, 1}, {30, 1}, {25, 1}, {24, 1},
	{60000, 1001}, {50000, 1001}, {30000, 1001}, {25000, 1001}, {24000, 1001},
}

// Rational approximates fps as a fraction, snapping to a broadcast rate when
// one is within epsilon, otherwise scaling the decimal by 100000.
func Rational(fps float64) Rate {
	for _, r := range broadcastRates {
		if math.Abs(fps-r.Float()) < fpsEpsilon {
			return r
		}
	}
	return Rate{Num: uint32(math.Round(fps * fpsScale)), Den: fpsScale}
}
