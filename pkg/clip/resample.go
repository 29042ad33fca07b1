// ABOUTME: Linear sample-rate conversion for clips loaded at a foreign rate
// ABOUTME: One-shot interleaved int16 variant of the streaming resampler idiom
package clip

// Resample converts interleaved 16-bit samples from fromRate to toRate
// using linear interpolation. Equal rates return the input unchanged.
func Resample(in []int16, channels, fromRate, toRate int) []int16 {
	if fromRate == toRate || len(in) == 0 || channels <= 0 {
		return in
	}

	inFrames := len(in) / channels
	outFrames := int(int64(inFrames) * int64(toRate) / int64(fromRate))
	if outFrames < 1 {
		outFrames = 1
	}
	out := make([]int16, outFrames*channels)

	ratio := float64(fromRate) / float64(toRate)
	for of := 0; of < outFrames; of++ {
		pos := float64(of) * ratio
		base := int(pos)
		frac := pos - float64(base)

		next := base + 1
		if next >= inFrames {
			next = inFrames - 1
		}
		for ch := 0; ch < channels; ch++ {
			a := float64(in[base*channels+ch])
			b := float64(in[next*channels+ch])
			out[of*channels+ch] = int16(a + (b-a)*frac)
		}
	}
	return out
}
