package chatbot

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"CohereChat/internal/display"
)

// MaxLineBytes caps a single line of user input
const MaxLineBytes = 1 << 20

var (
	// ErrInterrupted is returned when the context is cancelled while waiting for input
	ErrInterrupted = errors.New("interrupted")

	// ErrLineTooLong is returned for a line over the prompter's limit.
	// The line is discarded and the next read starts on the following line.
	ErrLineTooLong = errors.New("input line too long")
)

type readResult struct {
	line string
	err  error
}

// Prompter reads answers line by line. Reads happen on a background
// goroutine so a blocked read can be abandoned when ctx is cancelled.
type Prompter struct {
	in       io.Reader
	display  *display.Display
	maxBytes int

	once  sync.Once
	lines chan readResult
	err   error
}

// NewPrompter creates a prompter reading from in and writing labels via d
func NewPrompter(in io.Reader, d *display.Display) *Prompter {
	return &Prompter{in: in, display: d, maxBytes: MaxLineBytes}
}

func (p *Prompter) start() {
	p.lines = make(chan readResult)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.in)
		for {
			line, err := readLine(r, p.maxBytes)
			switch {
			case err == nil, errors.Is(err, ErrLineTooLong):
				p.lines <- readResult{line: line, err: err}
			case errors.Is(err, io.EOF):
				return
			default:
				p.err = err
				return
			}
		}
	}()
}

// readLine returns the next line without its terminator. A line longer
// than limit is consumed in full and reported as ErrLineTooLong.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", ErrLineTooLong
	}
	return string(buf), nil
}

// Ask shows label and waits for one line. It returns io.EOF when input is
// exhausted, ErrInterrupted when ctx is done and ErrLineTooLong for an
// oversized line.
func (p *Prompter) Ask(ctx context.Context, label string) (string, error) {
	if ctx.Err() != nil {
		return "", ErrInterrupted
	}
	p.once.Do(p.start)
	p.display.Prompt(label)

	select {
	case <-ctx.Done():
		return "", ErrInterrupted
	case res, ok := <-p.lines:
		if !ok {
			if p.err != nil {
				return "", p.err
			}
			return "", io.EOF
		}
		return res.line, res.err
	}
}

// Confirm asks a yes/no question. Only "y" or "yes" confirm; an oversized
// answer declines.
func (p *Prompter) Confirm(ctx context.Context, label string) (bool, error) {
	answer, err := p.Ask(ctx, label+" [y/N]:")
	if errors.Is(err, ErrLineTooLong) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
