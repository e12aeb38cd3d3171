package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/op/go-logging"
	"golang.org/x/sync/semaphore"
)

var log = logging.MustGetLogger("lspblade.completion")

var (
	ErrSpawn             = errors.New("completion oracle could not be started")
	ErrTimeout           = errors.New("completion oracle timed out")
	ErrMalformedResponse = errors.New("completion oracle returned a malformed response")
	ErrOracle            = errors.New("completion oracle reported an error")
)

// Oracle completes a script snippet at a byte offset.
type Oracle interface {
	Complete(ctx context.Context, snippet string, offset int) ([]Candidate, error)
}

const (
	DefaultCommand       = "phpactor"
	DefaultTimeout       = 5 * time.Second
	DefaultMaxConcurrent = 4

	// OpenTagPrelude is the usual opt-in Prelude.
	OpenTagPrelude = "<?php "
)

// PhpactorConfig configures the phpactor subprocess.
type PhpactorConfig struct {
	Command string
	Args    []string
	// Env is appended to the server's own environment.
	Env []string
	Dir string

	Timeout       time.Duration
	MaxConcurrent int64

	// Prelude, when set, is prepended to snippets that do not open a PHP
	// tag themselves and the offset is shifted past it. Empty sends the
	// snippet exactly as it appears in the document.
	Prelude string
}

// Phpactor runs one `phpactor rpc` process per completion request.
type Phpactor struct {
	config PhpactorConfig
	gate   *semaphore.Weighted
}

func NewPhpactor(config PhpactorConfig) *Phpactor {
	if config.Command == "" {
		config.Command = DefaultCommand
	}
	if config.Args == nil {
		config.Args = []string{"rpc"}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Phpactor{
		config: config,
		gate:   semaphore.NewWeighted(config.MaxConcurrent),
	}
}

// Complete implements Oracle. Waiting for a free process slot counts
// against the same timeout as the process itself.
func (p *Phpactor) Complete(ctx context.Context, snippet string, offset int) ([]Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	if err := p.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: no free slot after %s", ErrTimeout, p.config.Timeout)
	}
	defer p.gate.Release(1)

	source, offset := p.withPrelude(snippet, offset)
	payload, err := json.Marshal(request{
		Action:     "complete",
		Parameters: requestParameters{Source: source, Offset: offset},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, p.config.Command, p.config.Args...)
	cmd.Dir = p.config.Dir
	cmd.Env = append(os.Environ(), p.config.Env...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err = cmd.Run()
	log.Debugf("%s exited after %s", p.config.Command, time.Since(started))

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, p.config.Command, p.config.Timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, p.config.Command, err)
		}
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("%w: %s exited with status %d: %s",
				ErrOracle, p.config.Command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		log.Warningf("%s exited with status %d, reading its output anyway", p.config.Command, exitErr.ExitCode())
	}

	return decodeResponse(stdout.Bytes())
}

func (p *Phpactor) withPrelude(snippet string, offset int) (string, int) {
	if p.config.Prelude == "" || strings.HasPrefix(strings.TrimSpace(snippet), "<?") {
		return snippet, offset
	}
	return p.config.Prelude + snippet, offset + len(p.config.Prelude)
}

func decodeResponse(output []byte) ([]Candidate, error) {
	var resp response
	if err := json.Unmarshal(output, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.Action == "error" {
		message := resp.Parameters.Message
		if resp.Parameters.Details != "" {
			message += ": " + resp.Parameters.Details
		}
		return nil, fmt.Errorf("%w: %s", ErrOracle, message)
	}
	if resp.Parameters.Value == nil {
		return nil, fmt.Errorf("%w: missing parameters.value", ErrMalformedResponse)
	}
	if len(resp.Parameters.Value.Issues) > 0 {
		log.Debugf("oracle reported %d issues", len(resp.Parameters.Value.Issues))
	}

	suggestions := resp.Parameters.Value.Suggestions
	if suggestions == nil {
		suggestions = []Candidate{}
	}
	return suggestions, nil
}
