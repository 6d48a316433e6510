// SPDX-License-Identifier: MPL-2.0

// Package report renders search progress and results.
//
// A Printer is both the run's coordinator.Observer, writing one attribution
// line per matching file as workers find them, and its coordinator.Renderer,
// writing the summary block once the aggregate exists.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/ksearch/ksearch/internal/coordinator"
	"github.com/ksearch/ksearch/internal/worker"
)

// Format selects the output encoding.
type Format string

const (
	// FormatText writes attribution lines and the summary block.
	FormatText Format = "text"
	// FormatJSON writes a single JSON document after the run.
	FormatJSON Format = "json"
)

type (
	// Options configures a Printer.
	Options struct {
		Format Format
		// Verbose appends a per-worker breakdown to the text summary.
		Verbose bool
		// Title decorates the breakdown heading; nil prints it unstyled.
		Title func(...string) string
	}

	// Printer writes a run to out. It is safe for concurrent use by workers.
	Printer struct {
		out  io.Writer
		opts Options
		mode coordinator.Mode

		mu      sync.Mutex
		matches []worker.Match
	}

	jsonReport struct {
		Mode       string       `json:"mode"`
		Keyword    string       `json:"keyword"`
		Files      int          `json:"files"`
		TotalCount int          `json:"total_count"`
		TimeMS     float64      `json:"time_ms"`
		Matches    []jsonMatch  `json:"matches"`
		Workers    []jsonWorker `json:"workers"`
	}

	jsonMatch struct {
		Worker      int    `json:"worker"`
		Path        string `json:"path"`
		Occurrences int    `json:"occurrences"`
	}

	jsonWorker struct {
		Worker     int     `json:"worker"`
		Start      int     `json:"start"`
		End        int     `json:"end"`
		Files      int     `json:"files"`
		Unreadable int     `json:"unreadable"`
		Count      int     `json:"count"`
		TimeMS     float64 `json:"time_ms"`
	}
)

// NewPrinter creates a Printer for a run of the given mode.
func NewPrinter(out io.Writer, mode coordinator.Mode, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	return &Printer{out: out, opts: opts, mode: mode}
}

// MatchLine formats the attribution line for one matching file.
func MatchLine(mode coordinator.Mode, m worker.Match) string {
	if mode == coordinator.ModeSequential {
		return fmt.Sprintf("Found '%s' in file: %s (Occurrences: %d)", m.Keyword, m.Path, m.Occurrences)
	}
	return fmt.Sprintf("Worker %d found '%s' in file: %s (Occurrences: %d)", m.Worker, m.Keyword, m.Path, m.Occurrences)
}

// Summary formats the results block, including its leading blank line.
func Summary(r coordinator.Report) string {
	return fmt.Sprintf("\n=== Search Results ===\nTotal occurrences of '%s': %d\nTime taken: %.2f ms\n",
		r.Keyword, r.Aggregate.TotalCount, r.Aggregate.Milliseconds())
}

// OnState implements coordinator.Observer.
func (p *Printer) OnState(coordinator.State) {}

// OnWorkerDone implements coordinator.Observer.
func (p *Printer) OnWorkerDone(worker.LocalResult) {}

// OnMatch implements coordinator.Observer. Text output is written
// immediately; JSON output is buffered until Render.
func (p *Printer) OnMatch(m worker.Match) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.Format == FormatJSON {
		p.matches = append(p.matches, m)
		return
	}
	_, _ = fmt.Fprintln(p.out, MatchLine(p.mode, m))
}

// Render implements coordinator.Renderer.
func (p *Printer) Render(r coordinator.Report) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.Format == FormatJSON {
		return p.renderJSON(r)
	}

	if _, err := io.WriteString(p.out, Summary(r)); err != nil {
		return err
	}
	if p.opts.Verbose {
		if _, err := io.WriteString(p.out, "\n"+p.breakdown(r)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) renderJSON(r coordinator.Report) error {
	doc := jsonReport{
		Mode:       modeName(r.Mode),
		Keyword:    r.Keyword,
		Files:      r.Files.Len(),
		TotalCount: r.Aggregate.TotalCount,
		TimeMS:     r.Aggregate.Milliseconds(),
		Matches:    make([]jsonMatch, 0, len(p.matches)),
		Workers:    make([]jsonWorker, 0, len(r.Locals)),
	}
	for _, m := range p.matches {
		doc.Matches = append(doc.Matches, jsonMatch{Worker: m.Worker, Path: m.Path, Occurrences: m.Occurrences})
	}
	for i, l := range r.Locals {
		w := jsonWorker{
			Worker:     l.Worker,
			Files:      l.Files,
			Unreadable: l.Unreadable,
			Count:      l.Count,
			TimeMS:     milliseconds(l),
		}
		if i < len(r.Shards) {
			w.Start, w.End = r.Shards[i].Start, r.Shards[i].End
		}
		doc.Workers = append(doc.Workers, w)
	}

	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// breakdown renders the per-worker table. Columns are padded by display
// width so wide runes in headers or values keep the table aligned.
func (p *Printer) breakdown(r coordinator.Report) string {
	header := []string{"worker", "shard", "files", "unreadable", "count", "time (ms)"}
	rows := [][]string{header}
	for i, l := range r.Locals {
		shard := "-"
		if i < len(r.Shards) {
			shard = r.Shards[i].String()
		}
		rows = append(rows, []string{
			fmt.Sprint(l.Worker),
			shard,
			fmt.Sprint(l.Files),
			fmt.Sprint(l.Unreadable),
			fmt.Sprint(l.Count),
			fmt.Sprintf("%.2f", milliseconds(l)),
		})
	}

	widths := make([]int, len(header))
	for _, row := range rows {
		for c, cell := range row {
			widths[c] = max(widths[c], runewidth.StringWidth(cell))
		}
	}

	var b strings.Builder
	title := "=== Worker Breakdown ==="
	if p.opts.Title != nil {
		title = p.opts.Title(title)
	}
	b.WriteString(title)
	b.WriteByte('\n')
	for _, row := range rows {
		cells := make([]string, len(row))
		for c, cell := range row {
			if c == 0 || c == 1 {
				cells[c] = runewidth.FillRight(cell, widths[c])
			} else {
				cells[c] = runewidth.FillLeft(cell, widths[c])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, "  "), " "))
		b.WriteByte('\n')
	}
	return b.String()
}

func milliseconds(l worker.LocalResult) float64 {
	return float64(l.Elapsed.Microseconds()) / 1000
}

func modeName(m coordinator.Mode) string {
	if m == coordinator.ModeSequential {
		return "sequential"
	}
	return "coordinated"
}
