// SPDX-License-Identifier: MPL-2.0

// Package searcher counts keyword hits in a single file.
//
// The counting rule is line based: every line that contains the keyword as a
// literal substring counts once, however many times the keyword repeats on
// that line. Files that cannot be opened or read report ErrUnreadable; the
// caller decides what that means (the worker records zero and moves on).
package searcher

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnreadable is the sentinel error wrapped by UnreadableError.
var ErrUnreadable = errors.New("file unreadable")

type (
	// Searcher counts the hits of keyword in the file at path. Implementations
	// must not keep state between calls: the coordinator calls the same
	// Searcher from several workers at once.
	Searcher interface {
		Count(path, keyword string) (int, error)
	}

	// Func adapts a plain function to the Searcher interface.
	Func func(path, keyword string) (int, error)

	// LineCounter is the default Searcher. It decodes UTF-16 input (detected by
	// byte order mark) to UTF-8 before matching and strips a UTF-8 BOM.
	LineCounter struct {
		// HTMLText matches .html/.htm files against their visible text instead
		// of their markup. Script and style contents are ignored.
		HTMLText bool
	}

	// UnreadableError reports a file that could not be opened or read.
	UnreadableError struct {
		Path string
		Err  error
	}
)

// Count calls f.
func (f Func) Count(path, keyword string) (int, error) {
	return f(path, keyword)
}

// Count returns the number of lines of the file at path containing keyword.
func (c LineCounter) Count(path, keyword string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &UnreadableError{Path: path, Err: err}
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := transform.NewReader(f, unicode.BOMOverride(transform.Nop))

	var n int
	if c.HTMLText && isHTML(path) {
		n, err = countHTMLText(r, keyword)
	} else {
		n, err = CountLines(r, keyword)
	}
	if err != nil {
		return 0, &UnreadableError{Path: path, Err: err}
	}
	return n, nil
}

// CountLines counts the lines read from r that contain keyword. Lines have no
// length limit.
func CountLines(r io.Reader, keyword string) (int, error) {
	kw := []byte(keyword)
	br := bufio.NewReader(r)
	count := 0

	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 && bytes.Contains(line, kw) {
			count++
		}
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("reading input: %w", err)
		}
	}
}

func countHTMLText(r io.Reader, keyword string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript, template").Remove()
	return CountLines(strings.NewReader(doc.Text()), keyword)
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// Error implements the error interface for UnreadableError.
func (e *UnreadableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns ErrUnreadable for errors.Is() compatibility; the underlying
// os error stays reachable through Cause.
func (e *UnreadableError) Unwrap() error { return ErrUnreadable }

// Cause returns the underlying open or read error.
func (e *UnreadableError) Cause() error { return e.Err }
