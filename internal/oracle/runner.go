package oracle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNoLabel     = errors.New("oracle: program printed no result label")
	ErrTimeout     = errors.New("oracle: time budget exceeded")
	ErrBadRef      = errors.New("oracle: invalid program reference")
	ErrNoCompiler  = errors.New("oracle: compiler not found in PATH")
	labelLineRe    = regexp.MustCompile(`>\s*(?:Algoritmo|Algorithm)\s*:\s*(.+?)\s*$`)
	validRefRe     = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	defaultCxxArgs = []string{"-O2", "-std=c++17"}
)

// GroundTruth computes the reference label of a dynamic question.
type GroundTruth interface {
	Compute(ctx context.Context, ref string) (string, error)
}

// Runner compiles <Dir>/<ref>.cpp and runs it, reading the label the
// program prints on its "> Algoritmo:" line. Compilation and execution are
// each bounded by Timeout.
type Runner struct {
	Dir      string
	Compiler string
	Args     []string
	Timeout  time.Duration
}

func NewRunner(dir string) *Runner {
	return &Runner{Dir: dir, Compiler: "g++", Args: defaultCxxArgs, Timeout: 20 * time.Second}
}

func (r *Runner) Compute(ctx context.Context, ref string) (string, error) {
	if !validRefRe.MatchString(ref) || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	src := filepath.Join(r.Dir, ref+".cpp")
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("oracle: source for %q: %w", ref, err)
	}
	if _, err := exec.LookPath(r.Compiler); err != nil {
		return "", ErrNoCompiler
	}

	tmp, err := os.MkdirTemp("", "oracle-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	bin := filepath.Join(tmp, "prog")
	args := append(append([]string{}, r.Args...), "-o", bin, src)
	if _, err := r.exec(ctx, r.Compiler, args...); err != nil {
		return "", fmt.Errorf("oracle: compile %s: %w", ref, err)
	}
	out, err := r.exec(ctx, bin)
	if err != nil {
		return "", fmt.Errorf("oracle: run %s: %w", ref, err)
	}
	return ParseLabel(out)
}

func (r *Runner) exec(ctx context.Context, name string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", err
		}
		return "", fmt.Errorf("%w: %s", err, msg)
	}
	return out.String(), nil
}

// ParseLabel returns the value of the last "> Algoritmo:" (or
// "> Algorithm:") line in a program's output.
func ParseLabel(output string) (string, error) {
	label := ""
	sc := bufio.NewScanner(strings.NewReader(output))
	for sc.Scan() {
		if m := labelLineRe.FindStringSubmatch(sc.Text()); m != nil {
			label = m[1]
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if label == "" {
		return "", ErrNoLabel
	}
	return label, nil
}
