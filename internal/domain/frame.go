package domain

// FrameKind is the closed set of frame types the link can produce. The
// frame reader decodes each line into exactly one kind; downstream code
// switches exhaustively on it.
type FrameKind uint8

const (
	FrameUnrecognized FrameKind = iota
	FrameInit
	FrameTrigger
	FrameEncrypted
	FramePong
	FrameStatus
	FrameDebug
)

func (k FrameKind) String() string {
	switch k {
	case FrameInit:
		return "init"
	case FrameTrigger:
		return "trigger"
	case FrameEncrypted:
		return "encrypted"
	case FramePong:
		return "pong"
	case FrameStatus:
		return "status"
	case FrameDebug:
		return "debug"
	default:
		return "unrecognized"
	}
}

// LinkStatus is the parsed body of a STATUS frame.
type LinkStatus struct {
	DeviceID string
	Messages uint64
	UptimeMS uint64
}

// Frame is one classified line off the link. Seq is the monotonic
// arrival number assigned by the frame reader. Payload carries the hex
// body of an encrypted frame, Note explains why a line landed in
// FrameUnrecognized, and Status is set only for FrameStatus.
type Frame struct {
	Seq     uint64
	Kind    FrameKind
	Raw     string
	Payload string
	Note    string
	Status  *LinkStatus
}
