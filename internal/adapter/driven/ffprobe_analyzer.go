package driven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/alorle/iptv-collector/internal/port/driven"
	"github.com/alorle/iptv-collector/internal/probe"
)

// DefaultFFProbeArgs reads media from stdin and reports the first video stream as JSON.
var DefaultFFProbeArgs = []string{
	"-v", "quiet",
	"-print_format", "json",
	"-show_streams",
	"-select_streams", "v:0",
	"-analyzeduration", "100000",
	"-probesize", "512000",
	"-i", "-",
}

// FFProbeConfig selects the analyzer executable.
type FFProbeConfig struct {
	Binary string
	Args   []string
	// Env is appended to the parent environment.
	Env []string
}

// FFProbeAnalyzer implements the StreamAnalyzer port by spawning ffprobe.
type FFProbeAnalyzer struct {
	binary string
	args   []string
	env    []string
	logger *slog.Logger
}

// NewFFProbeAnalyzer creates an analyzer. An empty Binary means "ffprobe" on
// PATH and nil Args means DefaultFFProbeArgs.
func NewFFProbeAnalyzer(cfg FFProbeConfig, logger *slog.Logger) *FFProbeAnalyzer {
	if cfg.Binary == "" {
		cfg.Binary = "ffprobe"
	}
	if cfg.Args == nil {
		cfg.Args = DefaultFFProbeArgs
	}
	return &FFProbeAnalyzer{
		binary: cfg.Binary,
		args:   cfg.Args,
		env:    cfg.Env,
		logger: logger,
	}
}

// Start spawns one ffprobe process. It is terminated when ctx is done or the
// session is closed, whichever happens first.
func (a *FFProbeAnalyzer) Start(ctx context.Context) (driven.AnalysisSession, error) {
	cmd := exec.CommandContext(ctx, a.binary, a.args...)
	cmd.WaitDelay = time.Second
	if len(a.env) > 0 {
		cmd.Env = append(os.Environ(), a.env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open analyzer stdin: %w", err)
	}

	s := &ffprobeSession{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}
	cmd.Stdout = &s.stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", a.binary, err)
	}
	a.logger.Debug("analyzer started", "pid", cmd.Process.Pid)

	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	return s, nil
}

type ffprobeSession struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  bytes.Buffer
	done    chan struct{}
	waitErr error

	closeOnce sync.Once
}

// Analyze writes media to the process, closes its input and waits for the report.
func (s *ffprobeSession) Analyze(ctx context.Context, media []byte) (probe.VideoInfo, error) {
	go func() {
		// Fails with a broken pipe once the process is gone.
		_, _ = s.stdin.Write(media)
		_ = s.stdin.Close()
	}()

	select {
	case <-s.done:
	case <-ctx.Done():
		s.kill()
		<-s.done
		return probe.VideoInfo{}, fmt.Errorf("%w: %w", probe.ErrAnalysisTimeout, ctx.Err())
	}

	if ctx.Err() != nil {
		return probe.VideoInfo{}, fmt.Errorf("%w: %w", probe.ErrAnalysisTimeout, ctx.Err())
	}
	if s.waitErr != nil {
		return probe.VideoInfo{}, fmt.Errorf("%w: %w", probe.ErrAnalysisFailed, s.waitErr)
	}

	return parseFFProbeOutput(s.stdout.Bytes())
}

// Close kills the process if it is still running and waits for it to be reaped.
func (s *ffprobeSession) Close() error {
	s.closeOnce.Do(func() {
		s.kill()
		<-s.done
	})
	return nil
}

func (s *ffprobeSession) kill() {
	select {
	case <-s.done:
		return
	default:
	}
	_ = s.cmd.Process.Kill()
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeStream struct {
	CodecName   string `json:"codec_name"`
	CodecType   string `json:"codec_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CodedWidth  int    `json:"coded_width"`
	CodedHeight int    `json:"coded_height"`
}

// parseFFProbeOutput takes the first reported stream. Display dimensions win;
// coded dimensions fill in when a demuxer reports only those.
func parseFFProbeOutput(data []byte) (probe.VideoInfo, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return probe.VideoInfo{}, fmt.Errorf("%w: parse ffprobe output: %w", probe.ErrAnalysisFailed, err)
	}
	if len(out.Streams) == 0 {
		return probe.VideoInfo{}, probe.ErrNoStreams
	}

	st := out.Streams[0]
	width, height := st.Width, st.Height
	if width == 0 {
		width = st.CodedWidth
	}
	if height == 0 {
		height = st.CodedHeight
	}

	return probe.NewVideoInfo(width, height, st.CodecName)
}
