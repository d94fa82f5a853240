package codec

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kyberfog/kyberfog/internal/domain"
	"github.com/kyberfog/kyberfog/internal/ports"
)

// PSKLength is the required pre-shared key length. The producer cycles
// a 16-byte key, so a mismatched length silently decrypts garbage; the
// length is checked once at startup and treated as fatal there.
const PSKLength = 16

// ErrBadEncoding means the payload is not valid even-length hex.
var ErrBadEncoding = errors.New("kyberfog: bad payload encoding")

// ErrMalformedRecord means the decrypted bytes do not parse into a
// complete sensor record.
var ErrMalformedRecord = errors.New("kyberfog: malformed sensor record")

// Decoder reverses the device's lightweight obfuscation: hex decode,
// cycling XOR against the pre-shared key, then a strict parse of the
// record schema. Decode holds no state, so it is trivially idempotent.
type Decoder struct {
	psk []byte
}

func NewDecoder(psk []byte) (*Decoder, error) {
	if len(psk) != PSKLength {
		return nil, fmt.Errorf("pre-shared key must be %d bytes, got %d", PSKLength, len(psk))
	}
	key := make([]byte, len(psk))
	copy(key, psk)
	return &Decoder{psk: key}, nil
}

func (d *Decoder) Decode(payload string) (*domain.SensorRecord, error) {
	raw, err := hex.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrBadEncoding)
	}

	plain := make([]byte, len(raw))
	for i, c := range raw {
		plain[i] = c ^ d.psk[i%len(d.psk)]
	}

	return parseRecord(plain)
}

// parseRecord enforces the record schema: all six fields present and of
// the right kind. Pointer fields distinguish "absent" from "zero".
func parseRecord(plain []byte) (*domain.SensorRecord, error) {
	var probe struct {
		ID   *string  `json:"id"`
		Seq  *uint64  `json:"seq"`
		Temp *float64 `json:"t"`
		Hum  *float64 `json:"h"`
		Lux  *int64   `json:"l"`
		TS   *uint64  `json:"ts"`
	}
	if err := json.Unmarshal(plain, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}

	switch {
	case probe.ID == nil || *probe.ID == "":
		return nil, fmt.Errorf("%w: missing id", ErrMalformedRecord)
	case probe.Seq == nil:
		return nil, fmt.Errorf("%w: missing seq", ErrMalformedRecord)
	case probe.Temp == nil:
		return nil, fmt.Errorf("%w: missing t", ErrMalformedRecord)
	case probe.Hum == nil:
		return nil, fmt.Errorf("%w: missing h", ErrMalformedRecord)
	case probe.Lux == nil:
		return nil, fmt.Errorf("%w: missing l", ErrMalformedRecord)
	case probe.TS == nil:
		return nil, fmt.Errorf("%w: missing ts", ErrMalformedRecord)
	}

	return &domain.SensorRecord{
		DeviceID:    *probe.ID,
		Seq:         *probe.Seq,
		Temperature: *probe.Temp,
		Humidity:    *probe.Hum,
		Light:       *probe.Lux,
		DeviceTS:    *probe.TS,
	}, nil
}

var _ ports.RecordDecoder = (*Decoder)(nil)
