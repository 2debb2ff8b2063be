package camera

import (
	"math"
	"testing"

	"pagedewarp/pkg/geometry"
)

func TestImageFocalPlaneRoundTrip(t *testing.T) {
	o := geometry.Point2D{X: 100, Y: 200}
	f := DefaultFocalLength
	img := geometry.Point2D{X: 150, Y: 180}

	focal := ImageToFocalPlane(img, o, f)
	if focal.Z != -f {
		t.Fatalf("focal.Z = %v, want %v", focal.Z, -f)
	}

	back := ProjectToImage(focal, o, f)
	if math.Abs(back.X-img.X) > 1e-9 || math.Abs(back.Y-img.Y) > 1e-9 {
		t.Fatalf("round trip = %v, want %v", back, img)
	}
}

func TestRThetaZeroIsIdentity(t *testing.T) {
	r := RTheta([3]float64{0, 0, 0})
	p := FocalPoint3D{X: 1, Y: 2, Z: 3}
	got := r.Apply(p)
	if got != p {
		t.Fatalf("RTheta(0).Apply(%v) = %v, want identity", p, got)
	}
}

func TestRThetaOrthonormal(t *testing.T) {
	theta := [3]float64{0.3, -0.1, 0.2}
	r := RTheta(theta)

	// Each row must be unit length and rows mutually orthogonal: R R^T = I.
	rows := [3][3]float64{r[0], r[1], r[2]}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += rows[i][k] * rows[j][k]
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > 1e-9 {
				t.Fatalf("R R^T [%d][%d] = %v, want %v", i, j, dot, want)
			}
		}
	}
}

func TestRThetaInverseIsTranspose(t *testing.T) {
	theta := [3]float64{0.1, 0.2, -0.3}
	r := RTheta(theta)
	p := FocalPoint3D{X: 1, Y: -2, Z: 0.5}

	rotated := r.Apply(p)
	back := r.ApplyInverse(rotated)
	if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 || math.Abs(back.Z-p.Z) > 1e-9 {
		t.Fatalf("ApplyInverse(Apply(p)) = %v, want %v", back, p)
	}
}

func TestGCSToImageIdentityPose(t *testing.T) {
	o := geometry.Point2D{X: 50, Y: 60}
	f := DefaultFocalLength
	r := RTheta([3]float64{0, 0, 0})

	p := FocalPoint3D{X: 10, Y: -5, Z: -f}
	img := GCSToImage(p, o, r, f)
	want := ProjectToImage(FocalPoint3D{X: p.X, Y: p.Y, Z: p.Z + f}, o, f)
	if math.Abs(img.X-want.X) > 1e-6 || math.Abs(img.Y-want.Y) > 1e-6 {
		t.Fatalf("GCSToImage = %v, want %v", img, want)
	}
}
