package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// MaxListed is the largest candidate set printed in full before a prompt.
const MaxListed = 60

type lineResult struct {
	line string
	err  error
}

// LinePrompter reads answers one line at a time. Input is only read while a
// prompt is waiting, so the terminal is left to the player in between.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer

	requests chan struct{}
	results  chan lineResult
	start    sync.Once
	pending  bool
	closed   error
}

// NewLinePrompter creates a prompter reading from in and writing to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:       bufio.NewReader(in),
		out:      out,
		requests: make(chan struct{}),
		results:  make(chan lineResult, 1),
	}
}

func (p *LinePrompter) reader() {
	for range p.requests {
		line, err := p.in.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		p.results <- lineResult{line: strings.TrimRight(line, "\r\n"), err: err}
		if err != nil {
			return
		}
	}
}

// readLine blocks until a line is read or ctx is done. A read abandoned
// because of ctx stays pending and its line goes to the next call.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if p.closed != nil {
		return "", p.closed
	}
	p.start.Do(func() { go p.reader() })
	if !p.pending {
		p.requests <- struct{}{}
		p.pending = true
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.results:
		p.pending = false
		if res.err != nil {
			p.closed = ErrClosed
			if res.err != io.EOF {
				p.closed = fmt.Errorf("failed to read input: %w", res.err)
			}
			return "", p.closed
		}
		return res.line, nil
	}
}

func (p *LinePrompter) Ask(ctx context.Context, label string, candidates []string) (string, error) {
	p.list(candidates)
	for {
		if len(candidates) > 0 {
			fmt.Fprintf(p.out, "%s [Enter=repeat/random, r=random, q=quit]: ", label)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, err := p.readLine(ctx)
		if err != nil {
			fmt.Fprintln(p.out)
			return "", err
		}
		if strings.TrimSpace(line) == "?" {
			p.listAll(candidates)
			continue
		}
		return line, nil
	}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/n]: ", question)
	line, err := p.readLine(ctx)
	if err != nil {
		fmt.Fprintln(p.out)
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (p *LinePrompter) Notify(msg string) {
	fmt.Fprintln(p.out, msg)
}

func (p *LinePrompter) list(candidates []string) {
	if len(candidates) == 0 {
		return
	}
	if len(candidates) > MaxListed {
		fmt.Fprintf(p.out, "%d choices, type ? to list them\n", len(candidates))
		return
	}
	p.listAll(candidates)
}

func (p *LinePrompter) listAll(candidates []string) {
	fmt.Fprint(p.out, Columns(candidates, 80))
}

// Columns lays names out in as many columns as fit in width.
func Columns(names []string, width int) string {
	if len(names) == 0 {
		return ""
	}
	longest := 0
	for _, n := range names {
		if l := len([]rune(n)); l > longest {
			longest = l
		}
	}
	colWidth := longest + 2
	cols := width / colWidth
	if cols < 1 {
		cols = 1
	}
	rows := (len(names) + cols - 1) / cols

	var b strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := c*rows + r
			if i >= len(names) {
				break
			}
			name := names[i]
			if c < cols-1 && (c+1)*rows+r < len(names) {
				name += strings.Repeat(" ", colWidth-len([]rune(name)))
			}
			b.WriteString(name)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
