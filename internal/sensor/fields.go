package sensor

// FieldID identifies one Observable Field on the dashboard.
type FieldID int

const (
	FieldLight FieldID = iota
	FieldOutdoorTemp
	FieldIndoorTemp
	FieldHumidity
	FieldNetworkConnected
	FieldChannel
	FieldShortAddr
	FieldPanID
	FieldReportMode

	fieldCount
)

// Field describes a display value: its stable name, the label shown next to
// it and the placeholder it holds until the first matching line arrives.
type Field struct {
	ID          FieldID
	Name        string
	Label       string
	Placeholder string
}

var fields = [fieldCount]Field{
	FieldLight:            {ID: FieldLight, Name: "light", Label: "BH1750 Light", Placeholder: "-- lux"},
	FieldOutdoorTemp:      {ID: FieldOutdoorTemp, Name: "outdoor_temp", Label: "DS18B20 Outdoor", Placeholder: "-- °C"},
	FieldIndoorTemp:       {ID: FieldIndoorTemp, Name: "indoor_temp", Label: "DHT11 Indoor Temp", Placeholder: "-- °C"},
	FieldHumidity:         {ID: FieldHumidity, Name: "humidity", Label: "DHT11 Humidity", Placeholder: "-- %"},
	FieldNetworkConnected: {ID: FieldNetworkConnected, Name: "network_connected", Label: "Connected:", Placeholder: "Unknown"},
	FieldChannel:          {ID: FieldChannel, Name: "channel", Label: "Channel:", Placeholder: "--"},
	FieldShortAddr:        {ID: FieldShortAddr, Name: "short_addr", Label: "Short Addr:", Placeholder: "----"},
	FieldPanID:            {ID: FieldPanID, Name: "pan_id", Label: "PAN ID:", Placeholder: "--:--:--:--:--:--:--:--"},
	FieldReportMode:       {ID: FieldReportMode, Name: "report_mode", Label: "Report Mode:", Placeholder: "--"},
}

// SensorFields are the four sensor cards, in display order.
var SensorFields = []FieldID{FieldLight, FieldOutdoorTemp, FieldIndoorTemp, FieldHumidity}

// NetworkFields are the Zigbee diagnostics rows, in display order.
var NetworkFields = []FieldID{FieldNetworkConnected, FieldChannel, FieldShortAddr, FieldPanID, FieldReportMode}

// Describe returns the metadata for id. Unknown ids yield a zero Field.
func Describe(id FieldID) Field {
	if id < 0 || id >= fieldCount {
		return Field{}
	}
	return fields[id]
}

// String returns the field's stable name.
func (id FieldID) String() string {
	if f := Describe(id); f.Name != "" {
		return f.Name
	}
	return "unknown"
}

// Update is a single field change produced by parsing one line.
// Number carries the parsed numeric value when HasNumber is set.
type Update struct {
	Field     FieldID
	Value     string
	Number    float64
	HasNumber bool
}

// Readings is an immutable snapshot of every Observable Field.
// With returns a modified copy, so a Readings value can be handed between
// goroutines without locking.
type Readings struct {
	values    [fieldCount]string
	numbers   [fieldCount]float64
	hasNumber [fieldCount]bool
	updated   [fieldCount]bool
}

// NewReadings returns a snapshot with every field at its placeholder.
func NewReadings() Readings {
	var r Readings
	for i := range r.values {
		r.values[i] = fields[i].Placeholder
	}
	return r
}

// Value returns the formatted display text of a field.
func (r Readings) Value(id FieldID) string {
	if id < 0 || id >= fieldCount {
		return ""
	}
	return r.values[id]
}

// Number returns the last numeric value parsed for a field, if any.
func (r Readings) Number(id FieldID) (float64, bool) {
	if id < 0 || id >= fieldCount {
		return 0, false
	}
	return r.numbers[id], r.hasNumber[id]
}

// Updated reports whether the field has left its placeholder.
func (r Readings) Updated(id FieldID) bool {
	if id < 0 || id >= fieldCount {
		return false
	}
	return r.updated[id]
}

// With returns a copy of r with u applied. Out-of-range fields are ignored.
func (r Readings) With(u Update) Readings {
	if u.Field < 0 || u.Field >= fieldCount {
		return r
	}
	r.values[u.Field] = u.Value
	r.numbers[u.Field] = u.Number
	r.hasNumber[u.Field] = u.HasNumber
	r.updated[u.Field] = true
	return r
}
