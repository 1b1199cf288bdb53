package renderer

// Keyframe pins a value at a point of a phase; Time runs from 0.0 to 1.0.
type Keyframe struct {
	Time  float64
	Value float64
}

// fadeIn takes the origin-square highlight from invisible to full strength.
var fadeIn = []Keyframe{
	{Time: 0.0, Value: 0.0},
	{Time: 1.0, Value: 1.0},
}

// Interpolate calculates the value at progress t by easing between the surrounding keyframes
func Interpolate(keyframes []Keyframe, t float64) float64 {
	if len(keyframes) == 0 {
		return 0
	}

	// Before the first keyframe, hold the first value
	if t <= keyframes[0].Time {
		return keyframes[0].Value
	}

	// After the last keyframe, hold the last value
	last := keyframes[len(keyframes)-1]
	if t >= last.Time {
		return last.Value
	}

	var prev, next Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if t >= keyframes[i].Time && t < keyframes[i+1].Time {
			prev = keyframes[i]
			next = keyframes[i+1]
			break
		}
	}

	span := next.Time - prev.Time
	if span == 0 {
		span = 0.001
	}
	local := easeInOutCubic((t - prev.Time) / span)

	return lerp(prev.Value, next.Value, local)
}

// HighlightOpacity is the origin-square highlight strength for frame i of a
// transition phase lasting frames frames. The last frame reaches 1.0.
func HighlightOpacity(i, frames int) float64 {
	if frames <= 1 {
		return 1
	}
	return Interpolate(fadeIn, float64(i)/float64(frames-1))
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing function
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
