package common

import (
	"math"
	"testing"
)

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}

	Mul4(out[:], id[:], m[:])
	if out != m {
		t.Errorf("identity * m changed the matrix: %v", out)
	}
	Mul4(out[:], m[:], id[:])
	if out != m {
		t.Errorf("m * identity changed the matrix: %v", out)
	}
}

func TestMul4AliasedOutput(t *testing.T) {
	var a, b, want [16]float32
	Identity(a[:])
	a[12] = 3
	Identity(b[:])
	b[13] = 5

	Mul4(want[:], a[:], b[:])
	// Writing into one of the operands must not corrupt the product.
	Mul4(a[:], a[:], b[:])
	if a != want {
		t.Errorf("aliased multiply diverged: got %v, want %v", a, want)
	}
}

func TestInvert4RoundTrip(t *testing.T) {
	var m, inv, out, id [16]float32
	Identity(m[:])
	// Rotation around Y plus a translation.
	s := float32(math.Sin(0.7))
	c := float32(math.Cos(0.7))
	m[0], m[2], m[8], m[10] = c, -s, s, c
	m[12], m[13], m[14] = 4, -2, 9

	if !Invert4(inv[:], m[:]) {
		t.Fatal("expected invertible matrix")
	}
	Mul4(out[:], m[:], inv[:])
	Identity(id[:])
	for i := range out {
		if diff := float64(out[i] - id[i]); math.Abs(diff) > 1e-5 {
			t.Fatalf("m * inv(m) not identity at %d: %v", i, out[i])
		}
	}
}

func TestInvert4Singular(t *testing.T) {
	var m, out [16]float32
	if Invert4(out[:], m[:]) {
		t.Error("expected the zero matrix to be reported singular")
	}
}

func TestNormalMatrix(t *testing.T) {
	t.Run("identity world", func(t *testing.T) {
		var world [16]float32
		var normal [12]float32
		Identity(world[:])

		NormalMatrix(normal[:], world[:])
		want := [12]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
		if normal != want {
			t.Errorf("unexpected normal matrix: %v", normal)
		}
	})

	t.Run("uniform scale inverts", func(t *testing.T) {
		var world [16]float32
		var normal [12]float32
		Identity(world[:])
		world[0], world[5], world[10] = 2, 2, 2

		NormalMatrix(normal[:], world[:])
		for _, i := range []int{0, 5, 10} {
			if diff := math.Abs(float64(normal[i] - 0.5)); diff > 1e-6 {
				t.Errorf("diagonal %d: expected 0.5, got %v", i, normal[i])
			}
		}
	})

	t.Run("padding stays zero", func(t *testing.T) {
		var world [16]float32
		var normal [12]float32
		Identity(world[:])
		world[12] = 7 // translation must not leak into the normal matrix

		NormalMatrix(normal[:], world[:])
		for _, i := range []int{3, 7, 11} {
			if normal[i] != 0 {
				t.Errorf("padding component %d: expected 0, got %v", i, normal[i])
			}
		}
	})
}

func TestSliceToBytes(t *testing.T) {
	data := []float32{1, 2}
	b := SliceToBytes(data)
	if len(b) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(b))
	}
	// 1.0 little-endian is 00 00 80 3f.
	if b[0] != 0 || b[1] != 0 || b[2] != 0x80 || b[3] != 0x3f {
		t.Errorf("unexpected encoding of 1.0: % x", b[:4])
	}
	if SliceToBytes([]uint32(nil)) != nil {
		t.Error("expected nil for an empty slice")
	}
}
