package frame

import (
	"strconv"
	"strings"

	"github.com/kyberfog/kyberfog/internal/domain"
)

const (
	commentMarker = "#"
	payloadMarker = "ENC:"
	pongPrefix    = "PONG:"
	statusPrefix  = "STATUS:"

	initKeyword    = "INIT:"
	triggerKeyword = "BUTTON"
)

// Classify maps one line to a frame, first match wins. Payload bodies
// are gated on length parity only; character-level hex validation is
// the decoder's re-check, so a well-formed-looking but invalid payload
// is still counted through the decode path.
func Classify(line string, seq uint64) domain.Frame {
	f := domain.Frame{Seq: seq, Raw: line}

	switch {
	case strings.HasPrefix(line, commentMarker):
		body := strings.TrimSpace(strings.TrimPrefix(line, commentMarker))
		switch {
		case strings.HasPrefix(body, initKeyword):
			f.Kind = domain.FrameInit
			f.Payload = strings.TrimSpace(strings.TrimPrefix(body, initKeyword))
		case strings.Contains(body, triggerKeyword):
			f.Kind = domain.FrameTrigger
		default:
			f.Kind = domain.FrameDebug
		}

	case strings.HasPrefix(line, payloadMarker):
		payload := line[len(payloadMarker):]
		if payload == "" || len(payload)%2 != 0 {
			f.Kind = domain.FrameUnrecognized
			f.Note = "odd-length hex payload"
			return f
		}
		f.Kind = domain.FrameEncrypted
		f.Payload = payload

	case strings.HasPrefix(line, pongPrefix):
		f.Kind = domain.FramePong
		f.Payload = strings.TrimSpace(line[len(pongPrefix):])

	case strings.HasPrefix(line, statusPrefix):
		f.Kind = domain.FrameStatus
		f.Status = parseStatus(line[len(statusPrefix):])

	default:
		f.Kind = domain.FrameUnrecognized
	}
	return f
}

// parseStatus decodes "<device-id>,msgs:<n>,uptime:<ms>". Unparseable
// fields are left zero; the device is not trusted to format perfectly.
func parseStatus(body string) *domain.LinkStatus {
	st := &domain.LinkStatus{}
	for i, part := range strings.Split(body, ",") {
		part = strings.TrimSpace(part)
		switch {
		case i == 0:
			st.DeviceID = part
		case strings.HasPrefix(part, "msgs:"):
			if v, err := strconv.ParseUint(part[len("msgs:"):], 10, 64); err == nil {
				st.Messages = v
			}
		case strings.HasPrefix(part, "uptime:"):
			if v, err := strconv.ParseUint(part[len("uptime:"):], 10, 64); err == nil {
				st.UptimeMS = v
			}
		}
	}
	return st
}
