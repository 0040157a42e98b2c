package variation

import "math"

func init() {
	Register(Variation{Name: "linear", Apply: linear})
	Register(Variation{Name: "sinusoidal", Apply: sinusoidal})
	Register(Variation{Name: "spherical", Apply: spherical})
	Register(Variation{Name: "swirl", Apply: swirl})
	Register(Variation{Name: "horseshoe", Apply: horseshoe})
	Register(Variation{Name: "polar", Apply: polar})
	Register(Variation{Name: "handkerchief", Apply: handkerchief})
	Register(Variation{Name: "heart", Apply: heart})
	Register(Variation{Name: "disc", Apply: disc})
	Register(Variation{Name: "spiral", Apply: spiral})
	Register(Variation{Name: "hyperbolic", Apply: hyperbolic})
	Register(Variation{Name: "diamond", Apply: diamond})
}

func rSq(p Point) float64 { return p.X*p.X + p.Y*p.Y }

// linear is the identity warp: p -> p.
func linear(in Point, _ float64, _ Params, _ Source) Point {
	return in
}

// sinusoidal: p -> (sin(x), sin(y)).
func sinusoidal(in Point, _ float64, _ Params, _ Source) Point {
	return Point{X: math.Sin(in.X), Y: math.Sin(in.Y)}
}

// spherical: p -> p / r^2.
func spherical(in Point, _ float64, _ Params, _ Source) Point {
	r2 := rSq(in)
	if r2 == 0 {
		return Point{}
	}
	inv := 1 / r2
	return Point{X: in.X * inv, Y: in.Y * inv}
}

// swirl: angle-dependent rotation that increases with radius.
func swirl(in Point, _ float64, _ Params, _ Source) Point {
	r2 := rSq(in)
	s, c := math.Sin(r2), math.Cos(r2)
	return Point{
		X: in.X*s - in.Y*c,
		Y: in.X*c + in.Y*s,
	}
}

// horseshoe: ((x-y)(x+y), 2xy) / r, which doubles the polar angle.
func horseshoe(in Point, _ float64, _ Params, _ Source) Point {
	r := math.Sqrt(rSq(in))
	if r == 0 {
		return Point{}
	}
	inv := 1 / r
	return Point{
		X: (in.X - in.Y) * (in.X + in.Y) * inv,
		Y: 2 * in.X * in.Y * inv,
	}
}

// polar: (theta/pi, r-1) where theta = atan2(x,y), r = sqrt(x^2+y^2).
func polar(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	return Point{X: theta / math.Pi, Y: r - 1}
}

// handkerchief: (r*sin(theta+r), r*cos(theta-r)).
func handkerchief(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	return Point{
		X: r * math.Sin(theta+r),
		Y: r * math.Cos(theta-r),
	}
}

// heart: a heart-shaped polar remap.
func heart(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	return Point{
		X: r * math.Sin(theta*r),
		Y: -r * math.Cos(theta*r),
	}
}

// disc: theta/pi * sin(pi*r), theta/pi * cos(pi*r).
func disc(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	thetaOverPi := theta / math.Pi
	return Point{
		X: thetaOverPi * math.Sin(math.Pi*r),
		Y: thetaOverPi * math.Cos(math.Pi*r),
	}
}

// spiral: logarithmic-spiral remap.
func spiral(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	if r == 0 {
		return Point{}
	}
	inv := 1 / r
	return Point{
		X: inv * (math.Cos(theta) + math.Sin(r)),
		Y: inv * (math.Sin(theta) - math.Cos(r)),
	}
}

// hyperbolic: (sin(theta)/r, r*cos(theta)).
func hyperbolic(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	if r == 0 {
		return Point{}
	}
	return Point{X: math.Sin(theta) / r, Y: r * math.Cos(theta)}
}

// diamond: (sin(theta)*cos(r), cos(theta)*sin(r)).
func diamond(in Point, _ float64, _ Params, _ Source) Point {
	theta := math.Atan2(in.X, in.Y)
	r := math.Sqrt(rSq(in))
	return Point{
		X: math.Sin(theta) * math.Cos(r),
		Y: math.Cos(theta) * math.Sin(r),
	}
}
