package main

import (
	"fmt"
	"io"
	"strings"
)

const barWidth = 30

// progressBar renders transfer position on a single rewritten line.
type progressBar struct {
	w     io.Writer
	label string
	drawn bool
}

func newProgressBar(w io.Writer, label string) *progressBar {
	return &progressBar{w: w, label: label}
}

func (p *progressBar) update(pos, size int) {
	if size <= 0 {
		fmt.Fprintf(p.w, "\r%s %8d bytes", p.label, pos)
		p.drawn = true
		return
	}
	if pos > size {
		pos = size
	}
	filled := pos * barWidth / size
	fmt.Fprintf(p.w, "\r%s [%s%s] %3d%%",
		p.label,
		strings.Repeat("=", filled),
		strings.Repeat(" ", barWidth-filled),
		pos*100/size)
	p.drawn = true
}

func (p *progressBar) done() {
	if p.drawn {
		fmt.Fprintln(p.w)
	}
}
