package sensor

// lightBands maps illuminance upper bounds (exclusive) to a description,
// matching the bands printed by the BH1750 test sketch.
var lightBands = []struct {
	below float64
	label string
}{
	{1, "Pitch Black"},
	{50, "Very Dim"},
	{200, "Dim Indoor"},
	{500, "Normal Indoor"},
	{1000, "Bright Indoor"},
	{10000, "Overcast/Shade"},
	{32000, "Full Daylight"},
}

// LightCondition returns a human-readable description of an illuminance in lux.
func LightCondition(lux float64) string {
	for _, band := range lightBands {
		if lux < band.below {
			return band.label
		}
	}
	return "Direct Sunlight"
}

// CelsiusToFahrenheit converts a temperature reading for display.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}
