package kepler

import (
	"errors"
	"math"
	"testing"
)

const earthMu = 3.986004418e14

// TestSolveEccentricConvergence sweeps e ∈ [0, 0.95] and M ∈ [0, 2π) and
// checks every solve converges and satisfies Kepler's equation.
func TestSolveEccentricConvergence(t *testing.T) {
	var worst int
	for ei := 0; ei <= 19; ei++ {
		e := float64(ei) * 0.05
		for mi := 0; mi < 360; mi++ {
			m := float64(mi) * twoPi / 360

			E, n, err := SolveEccentric(m, e)
			if err != nil {
				t.Fatalf("SolveEccentric(M=%.4f, e=%.2f): %v", m, e, err)
			}
			if n > MaxIterations {
				t.Fatalf("iterations = %d, exceeds cap", n)
			}
			if res := math.Abs(E - e*math.Sin(E) - m); res >= 1e-6 {
				t.Errorf("M=%.4f e=%.2f: residual %.3e", m, e, res)
			}
			if n > worst {
				worst = n
			}
		}
	}
	t.Logf("worst-case iterations: %d", worst)
}

func TestSolveEccentricCircular(t *testing.T) {
	for _, m := range []float64{0, 0.5, math.Pi, 5.9} {
		E, n, err := SolveEccentric(m, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if E != m {
			t.Errorf("e=0: E = %f, want %f", E, m)
		}
		if n != 1 {
			t.Errorf("e=0: %d iterations, want 1", n)
		}
	}
}

// TestSolveEccentricDivergence forces an unsolvable input and checks the
// last estimate comes back with a typed error.
func TestSolveEccentricDivergence(t *testing.T) {
	_, n, err := SolveEccentric(math.NaN(), 0.5)
	if err == nil {
		t.Fatal("expected divergence error for NaN mean anomaly")
	}
	if n != MaxIterations {
		t.Errorf("iterations = %d, want %d", n, MaxIterations)
	}
	if !errors.Is(err, ErrNumericDivergence) {
		t.Errorf("errors.Is(err, ErrNumericDivergence) = false for %v", err)
	}
	var de *DivergenceError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DivergenceError, got %T", err)
	}
	if de.Iterations != MaxIterations || de.Eccentricity != 0.5 {
		t.Errorf("unexpected error fields: %+v", de)
	}
}

func TestTrueFromEccentric(t *testing.T) {
	tests := []struct {
		name string
		E, e float64
		want float64
	}{
		{"periapsis", 0, 0.3, 0},
		{"apoapsis", math.Pi, 0.3, math.Pi},
		{"circular identity", 1.234, 0, 1.234},
		// cos ν = (cos E − e)/(1 − e cos E); E = π/2, e = 0.5 → ν = 120°.
		{"quarter", math.Pi / 2, 0.5, 2 * math.Pi / 3},
		{"negative half wraps", 3 * math.Pi / 2, 0.5, 2*math.Pi - 2*math.Pi/3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrueFromEccentric(tt.E, tt.e)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("TrueFromEccentric(%f, %f) = %f, want %f", tt.E, tt.e, got, tt.want)
			}
			if got < 0 || got >= twoPi {
				t.Errorf("result %f outside [0, 2π)", got)
			}
		})
	}
}

func TestAnomalyRoundTrip(t *testing.T) {
	for _, e := range []float64{0, 0.01, 0.3, 0.7, 0.95} {
		for i := 0; i < 72; i++ {
			nu := float64(i) * twoPi / 72
			E := EccentricFromTrue(nu, e)
			m := MeanFromEccentric(E, e)

			got, _, err := TrueFromMean(m, e)
			if err != nil {
				t.Fatalf("TrueFromMean: %v", err)
			}
			d := math.Abs(math.Remainder(got-nu, twoPi))
			if d > 1e-5 {
				t.Errorf("e=%.2f ν=%.4f: round trip gave %.6f", e, nu, got)
			}
		}
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{twoPi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{5 * math.Pi, math.Pi},
		{-1e-18, 0},
	}
	for _, tt := range tests {
		got := NormalizeAngle(tt.in)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizeAngle(%g) = %g, want %g", tt.in, got, tt.want)
		}
		if got < 0 || got >= twoPi {
			t.Errorf("NormalizeAngle(%g) = %g outside [0, 2π)", tt.in, got)
		}
	}
}

func TestPeriod(t *testing.T) {
	// 7000 km circular LEO: T ≈ 5828.5 s.
	if got := Period(7000e3, earthMu); math.Abs(got-5828.5) > 0.5 {
		t.Errorf("Period(7000 km) = %.2f s, want ~5828.5", got)
	}
	// Geostationary radius: one sidereal day.
	if got := Period(42164.17e3, earthMu); math.Abs(got-86164.1) > 1 {
		t.Errorf("Period(GEO) = %.1f s, want ~86164.1", got)
	}
	a := 7000e3
	if got := MeanMotion(a, earthMu) * Period(a, earthMu); math.Abs(got-twoPi) > 1e-12 {
		t.Errorf("n·T = %f, want 2π", got)
	}
}

func TestMeanAnomalyAt(t *testing.T) {
	T := Period(7000e3, earthMu)
	if got := MeanAnomalyAt(1.0, T, T); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("after one period M = %f, want 1.0", got)
	}
	if got := MeanAnomalyAt(0, T/4, T); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("after T/4 M = %f, want π/2", got)
	}
	if got := MeanAnomalyAt(0, -T/4, T); math.Abs(got-3*math.Pi/2) > 1e-12 {
		t.Errorf("before epoch M = %f, want 3π/2", got)
	}
}

func TestSweep(t *testing.T) {
	want := []float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2, 0}
	for i, w := range want {
		if got := Sweep(0, 1, i, 4); math.Abs(got-w) > 1e-12 {
			t.Errorf("Sweep(0, 1, %d, 4) = %f, want %f", i, got, w)
		}
	}

	// Start offset and multiple orbits.
	if got := Sweep(math.Pi, 2.5, 1, 1); math.Abs(math.Remainder(got, twoPi)) > 1e-12 {
		t.Errorf("Sweep(π, 2.5, 1, 1) = %f, want 0", got)
	}
}

func BenchmarkSolveEccentric(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _, _ = SolveEccentric(float64(i%628)/100, 0.7)
	}
}
