package variation

import (
	"math"
)

func init() {
	Register(Variation{
		Name:     "julia",
		Apply:    julia,
		Defaults: Params{"power": 2},
		Precalc:  juliaPrecalc,
	})
	Register(Variation{
		Name:     "waves",
		Apply:    waves,
		Defaults: Params{"dx": 0, "dy": 0, "b": 1, "e": 1},
	})
}

// juliaPrecalc derives the absolute power and its reciprocal once per
// parameter change instead of once per iteration (§4.4's "precalc fields
// are recomputed whenever a parameter changes").
func juliaPrecalc(p Params) Params {
	power := p["power"]
	if power == 0 {
		power = 2
	}
	absPower := math.Abs(power)
	return Params{
		"power":     power,
		"abs_power": absPower,
		"inv_power": 1 / absPower,
		"cn":        (1/power - 1) * 0.5,
	}
}

// julia: a random-branch power-root warp, homage to the Newton/Julia IFS
// this spec's teacher's psteitz-ifs sibling renders directly.
func julia(in Point, _ float64, p Params, src Source) Point {
	invPower := p["inv_power"]
	absPower := p["abs_power"]
	if absPower == 0 {
		invPower, absPower = 0.5, 2
	}
	theta := math.Atan2(in.X, in.Y)
	r := math.Pow(rSq(in), invPower*0.5)
	branch := math.Trunc(absPower * src.Float64())
	t := (theta + 2*math.Pi*branch) * invPower
	return Point{X: r * math.Cos(t), Y: r * math.Sin(t)}
}

// waves: a sinusoidal displacement parameterized by dx, dy, b, e.
func waves(in Point, _ float64, p Params, _ Source) Point {
	dx, dy, b, e := p["dx"], p["dy"], p["b"], p["e"]
	if b == 0 {
		b = 1
	}
	if e == 0 {
		e = 1
	}
	return Point{
		X: in.X + dx*math.Sin(in.Y/(b*b)),
		Y: in.Y + dy*math.Sin(in.X/(e*e)),
	}
}
