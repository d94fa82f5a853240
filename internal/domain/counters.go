package domain

// Counters is a point-in-time snapshot of the pipeline counters. Each
// underlying counter has a single writer; readers always see a
// consistent snapshot taken by the tracker.
type Counters struct {
	Received   uint64 `json:"received"`
	Decoded    uint64 `json:"decoded"`
	Processed  uint64 `json:"processed"`
	Dropped    uint64 `json:"dropped"`
	QueueDepth uint64 `json:"queue_depth"`
}
