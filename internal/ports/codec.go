package ports

import "github.com/kyberfog/kyberfog/internal/domain"

// RecordDecoder turns the hex body of an encrypted frame into a sensor
// record. Decode is pure: the same payload always yields the same
// record or the same error.
type RecordDecoder interface {
	Decode(payload string) (*domain.SensorRecord, error)
}
