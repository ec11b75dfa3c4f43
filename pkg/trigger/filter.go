package trigger

// IIRFilter is a single-pole exponential smoothing filter.
// It is not safe for concurrent use.
type IIRFilter struct {
	alpha  float64
	value  float64
	primed bool
}

// NewIIRFilter returns a filter with smoothing coefficient alpha in (0,1].
// Values outside that range are clamped.
func NewIIRFilter(alpha float64) *IIRFilter {
	switch {
	case alpha <= 0:
		alpha = DefaultFilterAlpha
	case alpha > 1:
		alpha = 1
	}
	return &IIRFilter{alpha: alpha}
}

// Filter feeds one reading and returns the smoothed value. The first call
// seeds the filter and returns current unchanged.
func (f *IIRFilter) Filter(current float64) float64 {
	if !f.primed {
		f.value = current
		f.primed = true
		return current
	}
	f.value = f.alpha*current + (1-f.alpha)*f.value
	return f.value
}

// Alpha returns the smoothing coefficient.
func (f *IIRFilter) Alpha() float64 { return f.alpha }
