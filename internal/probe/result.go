package probe

import (
	"strconv"
	"strings"
	"time"
)

// VideoInfo describes the first video stream reported by the analyzer.
type VideoInfo struct {
	width  int
	height int
	codec  string
}

// NewVideoInfo validates a dimension report.
// Returns ErrInvalidDimensions unless both width and height are strictly positive.
func NewVideoInfo(width, height int, codec string) (VideoInfo, error) {
	if width <= 0 || height <= 0 {
		return VideoInfo{}, ErrInvalidDimensions
	}
	return VideoInfo{width: width, height: height, codec: strings.TrimSpace(codec)}, nil
}

func (v VideoInfo) Width() int    { return v.width }
func (v VideoInfo) Height() int   { return v.height }
func (v VideoInfo) Codec() string { return v.codec }

// Resolution returns "<width>x<height>".
func (v VideoInfo) Resolution() string {
	return strconv.Itoa(v.width) + "x" + strconv.Itoa(v.height)
}

// Result is a successful deep probe of one stream.
// It is an immutable value object.
type Result struct {
	url        string
	timestamp  time.Time
	latency    time.Duration
	segmentURL string
	bytes      int
	video      VideoInfo
}

// NewResult creates a new probe result with validation.
func NewResult(
	url string,
	timestamp time.Time,
	latency time.Duration,
	segmentURL string,
	bytes int,
	video VideoInfo,
) (Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Result{}, ErrEmptyURL
	}
	if timestamp.IsZero() {
		return Result{}, ErrInvalidTimestamp
	}
	if video.width <= 0 || video.height <= 0 {
		return Result{}, ErrInvalidDimensions
	}

	return Result{
		url:        url,
		timestamp:  timestamp,
		latency:    latency,
		segmentURL: segmentURL,
		bytes:      bytes,
		video:      video,
	}, nil
}

func (r Result) URL() string            { return r.url }
func (r Result) Timestamp() time.Time   { return r.timestamp }
func (r Result) Latency() time.Duration { return r.latency }
func (r Result) SegmentURL() string     { return r.segmentURL }
func (r Result) BytesAnalyzed() int     { return r.bytes }
func (r Result) Video() VideoInfo       { return r.video }
func (r Result) LatencyMillis() int64   { return r.latency.Milliseconds() }
func (r Result) Resolution() string     { return r.video.Resolution() }
