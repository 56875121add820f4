// Package ui provides shared terminal styling for sensormon's CLI output
// and dashboard.
//
// # Components Overview
//
//	Palette     - Neon dashboard colors plus semantic status colors
//	Symbols     - Status glyphs shared by the dashboard and CLI output
//	Table       - Bubbles table styling for the ports listing
//	PortPicker  - Interactive serial port selection using a Bubbles list
//	Spinner     - Frames for the connecting indicator
//
// Use DisableColors() to switch to monochrome output (for --no-color or
// NO_COLOR), which sets the Lip Gloss color profile through termenv.
package ui
