// Counting biosynthetic gene clusters (BGCs) with antiSMASH

package antismash

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/yumyai/ggutils/internal/util"
	"github.com/yumyai/ggutils/logger"
	"go.uber.org/zap"
)

const (
	DefaultExecutable = "antismash"
	DefaultCPUs       = 4
	SummaryFile       = "summary.json"

	workspacePrefix = "antismash_"
)

// Defining possible failures. All of them end in a count of zero.
var (
	ErrWorkspace            = errors.New("workspace could not be created")
	ErrToolInvocationFailed = errors.New("antiSMASH invocation failed")
	ErrReportMissing        = errors.New("summary report not found")
	ErrReportMalformed      = errors.New("summary report is malformed")
)

// Status tells a genuine zero apart from a run that broke.
type Status string

const (
	StatusCounted         Status = "counted"
	StatusWorkspaceFailed Status = "workspace_failed"
	StatusToolFailed      Status = "tool_failed"
	StatusReportMissing   Status = "report_missing"
	StatusReportMalformed Status = "report_malformed"
)

type Options struct {
	Executable string
	CPUs       int
	TempDir    string // parent of the per-run workspace, "" for the OS default
}

// Result of one antiSMASH run. Count is zero unless Status is StatusCounted.
type Result struct {
	Genome    string
	Count     int
	Status    Status
	Err       error
	Workspace string // removed by the time Count returns
}

func (r *Result) fail(status Status, err error) *Result {
	r.Count = 0
	r.Status = status
	r.Err = err
	return r
}

type Counter struct {
	opts Options
}

func NewCounter(opts Options) *Counter {
	if opts.Executable == "" {
		opts.Executable = DefaultExecutable
	}
	if opts.CPUs < 1 {
		opts.CPUs = DefaultCPUs
	}
	return &Counter{opts: opts}
}

// CountBGCs runs antiSMASH with default options and returns only the count.
func CountBGCs(genome string) int {
	return NewCounter(Options{}).Count(genome).Count
}

// Count runs antiSMASH on genome inside a fresh workspace and counts the
// clusters in its summary report. It never returns an error; failures are
// logged and recorded in the Result with a count of zero.
func (c *Counter) Count(genome string) *Result {
	res := &Result{Genome: genome}

	ws, err := util.NewWorkspace(c.opts.TempDir, workspacePrefix)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrWorkspace, err)
		logger.Error("Error preparing antiSMASH workspace", zap.String("genome", genome), zap.Error(err))
		return res.fail(StatusWorkspaceFailed, err)
	}
	res.Workspace = ws.Dir()

	defer func() {
		if err := ws.Release(); err != nil {
			logger.Warn("Could not remove antiSMASH workspace", zap.String("workspace", ws.Dir()), zap.Error(err))
		}
	}()

	if err := c.run(ws.Dir(), genome); err != nil {
		logger.Error("Error running antiSMASH", zap.String("genome", genome), zap.Error(err))
		return res.fail(StatusToolFailed, err)
	}

	count, err := ReadSummary(ws.Path(SummaryFile))
	switch {
	case errors.Is(err, ErrReportMissing):
		// Nothing reportable was found
		logger.Warn("No antiSMASH summary report, assuming no clusters",
			zap.String("genome", genome), zap.Error(err))
		return res.fail(StatusReportMissing, err)
	case err != nil:
		logger.Error("Error reading antiSMASH summary report", zap.String("genome", genome), zap.Error(err))
		return res.fail(StatusReportMalformed, err)
	}

	res.Count = count
	res.Status = StatusCounted
	logger.Info("Counted BGCs", zap.String("genome", genome), zap.Int("clusters", count))
	return res
}

// Args builds the antiSMASH command line, genome last.
func (c *Counter) Args(outDir, genome string) []string {
	return []string{
		"--output-dir", outDir,
		"--cpus", strconv.Itoa(c.opts.CPUs),
		"--clusterblast",
		"--smcogs",
		genome,
	}
}

// run blocks until antiSMASH exits. Output is captured, not streamed.
func (c *Counter) run(outDir, genome string) error {
	args := c.Args(outDir, genome)
	cmd := exec.Command(c.opts.Executable, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running antiSMASH", zap.String("executable", c.opts.Executable), zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %v - %s", ErrToolInvocationFailed, c.opts.Executable, err, tail(stderr.Bytes(), 512))
	}

	logger.Debug("antiSMASH finished",
		zap.Int("stdout_bytes", stdout.Len()),
		zap.Int("stderr_bytes", stderr.Len()),
	)
	return nil
}

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

// ClusterReport is the part of antiSMASH's summary.json that matters here.
type ClusterReport struct {
	Clusters any `json:"clusters"`
}

// Count is the size of the clusters collection, zero when it is absent.
func (r *ClusterReport) Count() (int, error) {
	switch v := r.Clusters.(type) {
	case nil:
		return 0, nil
	case []any:
		return len(v), nil
	case map[string]any:
		return len(v), nil
	default:
		return 0, fmt.Errorf("%w: clusters is a %T, not a collection", ErrReportMalformed, v)
	}
}

func ParseSummary(data []byte) (int, error) {
	var report ClusterReport
	if err := json.Unmarshal(data, &report); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReportMalformed, err)
	}
	return report.Count()
}

// ReadSummary returns ErrReportMissing when path does not exist.
func ReadSummary(path string) (int, error) {
	if !util.FileExists(path) {
		return 0, fmt.Errorf("%w: %s", ErrReportMissing, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReportMalformed, err)
	}
	return ParseSummary(data)
}
