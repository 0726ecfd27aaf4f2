// ABOUTME: Version constants for the preview player
// ABOUTME: Identifies the product in logs and the feed handshake
package version

const (
	// Version is the current release version
	Version = "0.1.0"

	// Product is the product name
	Product = "preview-go"

	// Manufacturer identifies the project
	Manufacturer = "harmonia-editor"
)
