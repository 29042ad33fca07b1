// ABOUTME: Package documentation for the clip resource package
// ABOUTME: Describes loading, generation, and immutability rules
// Package clip provides the immutable PCM clip resource played by the
// mixing engine.
//
// A Clip holds interleaved 16-bit samples plus its channel count and
// sample rate. Clips come from 16-bit PCM WAV files (LoadWAV), from
// raw sample data (FromSamples), or from the procedural generators
// (Tone, Constant). Clips loaded at a rate other than the engine's are
// converted at load time with a linear resampler.
//
// Example:
//
//	c, err := clip.LoadWAV("footstep.wav", 44100)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(c.Frames(), c.Duration())
package clip
