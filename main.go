// ABOUTME: Entry point for the earshot demo player
// ABOUTME: Parses CLI flags and starts the orbiting-source demo
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/earshot-audio/earshot-go/internal/app"
	"github.com/earshot-audio/earshot-go/internal/version"
	"github.com/earshot-audio/earshot-go/pkg/engine"
)

var (
	backendName = flag.String("backend", "", "Audio backend: oto, malgo, null (default: oto)")
	wavPath     = flag.String("wav", "", "16-bit PCM WAV file to orbit (default: generated tone)")
	radius      = flag.Float64("radius", 3, "Orbit radius in meters")
	period      = flag.Float64("period", 8, "Seconds per orbit revolution")
	sampleRate  = flag.Int("sample-rate", 44100, "Output sample rate in Hz")
	logFile     = flag.String("log-file", "earshot.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs  = flag.Bool("stream-logs", false, "Alias for -no-tui")
	listDevices = flag.Bool("list-devices", false, "List playback devices and exit")
)

func main() {
	flag.Parse()

	if *listDevices {
		if err := printDevices(*backendName); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file so output does not tear the screen
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	log.Printf("%s %s starting", version.Product, version.Version)
	if !useTUI {
		log.Printf("TUI disabled - streaming logs")
	}

	demo := app.New(app.Config{
		Backend:     *backendName,
		WavPath:     *wavPath,
		OrbitRadius: *radius,
		OrbitPeriod: *period,
		SampleRate:  *sampleRate,
		UseTUI:      useTUI,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- demo.Start() }()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Printf("Shutdown signal received")
	case <-demo.Done():
		log.Printf("Received quit signal from TUI")
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Demo failed: %v", err)
		}
	}

	demo.Stop()
	log.Printf("Demo stopped")
}

// printDevices enumerates playback devices on the chosen backend.
func printDevices(backendName string) error {
	e := engine.New(engine.Config{Backend: backendName})
	if err := e.Init(); err != nil {
		return err
	}
	defer e.Shutdown()

	devices, err := e.ListAvailableOutputDevices()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No playback devices found")
		return nil
	}

	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, d.Name)
	}
	return nil
}
