package transform

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const deg = math.Pi / 180

// closedForm is the 3-1-3 matrix written out element by element.
func closedForm(raan, inc, argp float64) *mat.Dense {
	sO, cO := math.Sincos(raan)
	si, ci := math.Sincos(inc)
	sw, cw := math.Sincos(argp)
	return mat.NewDense(3, 3, []float64{
		cO*cw - sO*sw*ci, -cO*sw - sO*cw*ci, sO * si,
		sO*cw + cO*sw*ci, -sO*sw + cO*cw*ci, -cO * si,
		sw * si, cw * si, ci,
	})
}

func TestPerifocalToInertial_MatchesClosedForm(t *testing.T) {
	cases := [][3]float64{
		{0, 0, 0},
		{40 * deg, 51.6 * deg, 90 * deg},
		{300 * deg, 98.7 * deg, 12 * deg},
		{123 * deg, 180 * deg, 359 * deg},
	}
	for _, c := range cases {
		got := PerifocalToInertial(c[0], c[1], c[2])
		want := closedForm(c[0], c[1], c[2])
		if !mat.EqualApprox(got, want, 1e-12) {
			t.Errorf("PerifocalToInertial(%v) =\n%v\nwant\n%v", c, mat.Formatted(got), mat.Formatted(want))
		}
	}
}

func TestPerifocalToInertial_Orthonormal(t *testing.T) {
	r := PerifocalToInertial(77*deg, 63.4*deg, 270*deg)

	var rrt mat.Dense
	rrt.Mul(r, r.T())
	if !mat.EqualApprox(&rrt, mat.NewDiagDense(3, []float64{1, 1, 1}), 1e-12) {
		t.Errorf("R·Rᵀ is not identity:\n%v", mat.Formatted(&rrt))
	}
	if d := mat.Det(r); !scalar.EqualWithinAbs(d, 1, 1e-12) {
		t.Errorf("det(R) = %.15f, want 1", d)
	}
}

// TestPerifocalToInertial_OrderMatters pins the Euler sequence: composing the
// same three rotations in another order must give a different orbit.
func TestPerifocalToInertial_OrderMatters(t *testing.T) {
	raan, inc, argp := 60*deg, 45*deg, 30*deg
	p := Vector3{X: 7000e3}

	want := ToInertial(p, inc, raan, argp)

	var swapped, tmp mat.Dense
	tmp.Mul(Rz(argp), Rx(inc))
	swapped.Mul(&tmp, Rz(raan))
	wrong := apply(&swapped, p)

	if wrong.Sub(want).Norm() < 1000 {
		t.Fatalf("swapped rotation order produced the same position %v", wrong)
	}

	// Periapsis direction for these angles, from the closed-form first column.
	expected := Vector3{
		X: 7000e3 * (math.Cos(raan)*math.Cos(argp) - math.Sin(raan)*math.Sin(argp)*math.Cos(inc)),
		Y: 7000e3 * (math.Sin(raan)*math.Cos(argp) + math.Cos(raan)*math.Sin(argp)*math.Cos(inc)),
		Z: 7000e3 * math.Sin(argp) * math.Sin(inc),
	}
	if d := want.Sub(expected).Norm(); d > 1e-6 {
		t.Errorf("ToInertial = %v, want %v (diff %.3e m)", want, expected, d)
	}
}

func TestToInertial_AscendingNode(t *testing.T) {
	// With argp = 0 and ν = 0 the satellite sits on the ascending node, which
	// lies on the equator at longitude raan.
	raan := 135 * deg
	p := ToInertial(PositionInPlane(7000e3, 0, 0), 80*deg, raan, 0)

	if math.Abs(p.Z) > 1e-6 {
		t.Errorf("ascending node z = %f, want 0", p.Z)
	}
	if got := math.Atan2(p.Y, p.X); math.Abs(got-raan) > 1e-12 {
		t.Errorf("node longitude = %f, want %f", got, raan)
	}
}

func TestInertialToPerifocal_Inverse(t *testing.T) {
	p := Vector3{X: 1234.5, Y: -6789.0, Z: 42}
	inc, raan, argp := 28.5*deg, 211*deg, 17*deg

	back := InertialToPerifocal(ToInertial(p, inc, raan, argp), inc, raan, argp)
	if d := back.Sub(p).Norm(); d > 1e-9 {
		t.Errorf("round trip = %v, want %v", back, p)
	}
}

func TestPositionInPlane(t *testing.T) {
	tests := []struct {
		name  string
		a, e  float64
		nu    float64
		wantR float64
	}{
		{"circular", 7000e3, 0, 1.3, 7000e3},
		{"periapsis", 10000e3, 0.2, 0, 8000e3},
		{"apoapsis", 10000e3, 0.2, math.Pi, 12000e3},
		{"semi-latus rectum", 10000e3, 0.2, math.Pi / 2, 10000e3 * (1 - 0.04)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PositionInPlane(tt.a, tt.e, tt.nu)
			if p.Z != 0 {
				t.Errorf("z = %f, want 0", p.Z)
			}
			if !scalar.EqualWithinRel(p.Norm(), tt.wantR, 1e-12) {
				t.Errorf("radius = %.3f, want %.3f", p.Norm(), tt.wantR)
			}
			if got := math.Atan2(p.Y, p.X); math.Abs(math.Remainder(got-tt.nu, 2*math.Pi)) > 1e-12 {
				t.Errorf("angle = %f, want %f", got, tt.nu)
			}
		})
	}

	if p := PositionInPlane(7000e3, 0.1, math.NaN()); p.IsFinite() {
		t.Errorf("NaN anomaly produced finite position %v", p)
	}
}
