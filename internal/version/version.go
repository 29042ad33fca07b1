// ABOUTME: Version constants for the earshot demo player
// ABOUTME: Reported in logs and the TUI header
package version

const (
	// Version is the current release version
	Version = "0.1.0"

	// Product is the product name
	Product = "Earshot Demo Player"
)
