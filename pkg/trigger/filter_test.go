package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIIRFilter_FirstCallSeeds(t *testing.T) {
	for _, x := range []float64{0, -12.5, 42, 1e6} {
		f := NewIIRFilter(0.1)
		assert.Equal(t, x, f.Filter(x))
	}
}

func TestIIRFilter_SecondCall(t *testing.T) {
	tests := []struct {
		alpha  float64
		x1, x2 float64
	}{
		{0.1, 10, 20},
		{0.5, -4, 4},
		{1.0, 3, 7},
		{0.25, 0, -100},
	}
	for _, tt := range tests {
		f := NewIIRFilter(tt.alpha)
		f.Filter(tt.x1)
		want := tt.alpha*tt.x2 + (1-tt.alpha)*tt.x1
		assert.InDelta(t, want, f.Filter(tt.x2), 1e-9, "alpha=%v", tt.alpha)
	}
}

func TestIIRFilter_ConvergesToConstant(t *testing.T) {
	f := NewIIRFilter(0.1)
	f.Filter(0)
	var got float64
	for i := 0; i < 200; i++ {
		got = f.Filter(-5)
	}
	assert.InDelta(t, -5, got, 1e-6)
}

func TestNewIIRFilter_ClampsAlpha(t *testing.T) {
	assert.Equal(t, DefaultFilterAlpha, NewIIRFilter(0).Alpha())
	assert.Equal(t, DefaultFilterAlpha, NewIIRFilter(-1).Alpha())
	assert.Equal(t, 1.0, NewIIRFilter(3).Alpha())
}
