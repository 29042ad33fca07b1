// ABOUTME: Package documentation for output backends
// ABOUTME: Describes the backend contract and available implementations
// Package backend provides the output-device contract used by the
// mixing engine and its implementations.
//
// Three backends are available:
//   - oto: cross-platform default, platform default device only
//   - malgo: miniaudio-based, enumerates and opens specific devices
//   - null: records submissions without a device, for tests/headless
//
// Example:
//
//	b, err := backend.New("malgo", backend.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := b.PreInit(); err != nil {
//	    log.Fatal(err)
//	}
//	devices, _ := b.ListAllAudioDevices()
package backend
