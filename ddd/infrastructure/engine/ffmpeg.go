package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"convert-service/ddd/domain/plan"
	"convert-service/ddd/domain/port"
	"convert-service/pkg/config"
	"convert-service/pkg/logger"
)

const (
	stderrRingSize = 200
	diagnosticTail = 50
	telemetryDepth = 64
)

var reTime = regexp.MustCompile(`time=(\d+):(\d+):(\d+\.?\d*)`)

// FFmpegEngine implements port.EncodeEngine on a local ffmpeg/ffprobe pair.
type FFmpegEngine struct {
	cfg *config.Config
}

var _ port.EncodeEngine = (*FFmpegEngine)(nil)

func NewFFmpegEngine(cfg *config.Config) *FFmpegEngine {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegEngine{cfg: cfg}
}

// Preflight verifies both binaries respond before any job is accepted.
func (e *FFmpegEngine) Preflight(ctx context.Context) error {
	for _, binary := range []string{e.ffmpegBinary(), e.ffprobeBinary()} {
		cmd := exec.CommandContext(ctx, binary, "-version")
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("preflight %s: %w", binary, err)
		}
	}
	return nil
}

// Execute spawns ffmpeg for the given plan and returns a live process handle.
func (e *FFmpegEngine) Execute(ctx context.Context, encodePlan plan.EncodePlan) (port.EngineProcess, error) {
	cmd := exec.CommandContext(ctx, e.ffmpegBinary(), encodePlan.Args()...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}
	logger.Infof("ffmpeg started pid=%d command=%s", cmd.Process.Pid, strings.Join(cmd.Args, " "))

	proc := &ffmpegProcess{
		cmd:       cmd,
		telemetry: make(chan time.Duration, telemetryDepth),
		done:      make(chan error, 1),
	}

	scanDone := make(chan struct{})
	go func() {
		defer close(scanDone)
		proc.scanStderr(stderr)
	}()
	go func() {
		<-scanDone
		close(proc.telemetry)
		err := cmd.Wait()
		if err != nil {
			if tail := proc.DiagnosticTail(); tail != "" {
				logger.Errorf("ffmpeg failed pid=%d tail_stderr=%s", cmd.Process.Pid, tail)
			}
		}
		proc.done <- err
	}()

	return proc, nil
}

// Probe asks ffprobe for the container duration. A missing or unparsable
// duration is reported as unknown, not as an error.
func (e *FFmpegEngine) Probe(ctx context.Context, inputPath string) (port.MediaMetadata, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBinary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return port.MediaMetadata{}, fmt.Errorf("ffprobe %s: %w", inputPath, err)
	}
	sec, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || sec <= 0 {
		return port.MediaMetadata{DurationKnown: false}, nil
	}
	return port.MediaMetadata{
		Duration:      time.Duration(sec * float64(time.Second)),
		DurationKnown: true,
	}, nil
}

func (e *FFmpegEngine) ffmpegBinary() string {
	if e.cfg != nil && strings.TrimSpace(e.cfg.Convert.FFmpeg.BinaryPath) != "" {
		return e.cfg.Convert.FFmpeg.BinaryPath
	}
	return "ffmpeg"
}

func (e *FFmpegEngine) ffprobeBinary() string {
	if e.cfg != nil && strings.TrimSpace(e.cfg.Convert.FFmpeg.ProbeBinaryPath) != "" {
		return e.cfg.Convert.FFmpeg.ProbeBinaryPath
	}
	return "ffprobe"
}

// ffmpegProcess is one live ffmpeg invocation.
type ffmpegProcess struct {
	cmd       *exec.Cmd
	telemetry chan time.Duration
	done      chan error

	mu     sync.Mutex
	stderr []string
}

func (p *ffmpegProcess) Telemetry() <-chan time.Duration { return p.telemetry }
func (p *ffmpegProcess) Done() <-chan error              { return p.done }

// Terminate delivers a termination signal. The process keeps running until the
// signal takes effect; completion is still observed through Done.
func (p *ffmpegProcess) Terminate() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Signal(syscall.SIGTERM)
}

// DiagnosticTail returns the last captured stderr lines, newest last.
func (p *ffmpegProcess) DiagnosticTail() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	tail := p.stderr
	if n := len(tail); n > diagnosticTail {
		tail = tail[n-diagnosticTail:]
	}
	return strings.Join(tail, "\n")
}

// scanStderr parses the -progress key/value stream and the classic status line.
// out_time_ms despite its name carries microseconds. Non-telemetry lines go
// into a bounded ring so a failed run can be diagnosed.
func (p *ffmpegProcess) scanStderr(stderr io.ReadCloser) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "out_time_ms=") {
			if us, err := strconv.ParseInt(strings.TrimPrefix(line, "out_time_ms="), 10, 64); err == nil && us >= 0 {
				p.emit(time.Duration(us) * time.Microsecond)
			}
			continue
		}

		if m := reTime.FindStringSubmatch(line); len(m) == 4 {
			hh, _ := strconv.ParseFloat(m[1], 64)
			mm, _ := strconv.ParseFloat(m[2], 64)
			ss, _ := strconv.ParseFloat(m[3], 64)
			p.emit(time.Duration((hh*3600 + mm*60 + ss) * float64(time.Second)))
			continue
		}

		p.capture(line)
	}
}

// emit never blocks: when the consumer lags, the sample is dropped and a newer
// one supersedes it.
func (p *ffmpegProcess) emit(sample time.Duration) {
	select {
	case p.telemetry <- sample:
	default:
	}
}

func (p *ffmpegProcess) capture(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.stderr) >= stderrRingSize {
		p.stderr = p.stderr[1:]
	}
	p.stderr = append(p.stderr, line)
}
