// ABOUTME: Package documentation for the binaural mixing engine
// ABOUTME: Describes the threading contract and public surface
// Package engine implements the real-time binaural mixing core.
//
// An Engine owns a dedicated audio thread that, once per tick, drains
// the sync command queue, mixes every playing instance into one buffer
// per ear (distance and directional attenuation, interaural delay,
// pitch resampling, optional reverb taps and one-pole filtering), and
// submits the result to an output backend.
//
// Threading contract: exactly one audio thread mutates instance and
// channel state. Simulation code influences playback only through the
// fire-and-forget enqueue methods (Add, FrameUpdate, SetInstance*,
// StopInstance, SeekInstance), which never block.
//
// Example:
//
//	e := engine.New(engine.DefaultConfig())
//	if err := e.Init(); err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Shutdown()
//
//	inst := engine.NewInstance(c, engine.InstanceParams{
//	    Position:    spatial.Vec3{Z: 5},
//	    UsePosition: true,
//	})
//	e.Add(inst)
package engine
