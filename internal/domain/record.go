package domain

// SensorRecord is the canonical sensor reading recovered from an
// encrypted payload frame. Field tags match the wire schema emitted by
// the constrained device. The struct is comparable, which the verify
// stage relies on.
type SensorRecord struct {
	DeviceID    string  `json:"id"`
	Seq         uint64  `json:"seq"`
	Temperature float64 `json:"t"`
	Humidity    float64 `json:"h"`
	Light       int64   `json:"l"`
	DeviceTS    uint64  `json:"ts"`
}
