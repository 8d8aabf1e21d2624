// Package autotoc infers chapter headings from plain text.
//
// Given a document with no markup, the detector proposes candidate heading
// patterns (numbered lines such as "Chapter 12" or "第十二章", and lines
// sharing a leading symbol such as "§" or "【"), scores each hypothesis by
// how evenly it cuts the document, how plausible its titles are and how
// orderly its numbering is, and returns the best one as a reusable template
// plus the headings it selects.
package autotoc

import (
	"fmt"
	"log/slog"

	"github.com/metcalfc/brrtoc/internal/logging"
)

// Item is one detected heading.
type Item struct {
	Title  string `json:"title" yaml:"title"`
	Cursor int    `json:"cursor" yaml:"cursor"` // byte offset of Title in the scanned text
}

// Result is the outcome of a successful detection.
type Result struct {
	Items    []Item  `json:"items" yaml:"items"`
	Template string  `json:"template" yaml:"template"`
	Beauty   float64 `json:"beauty" yaml:"beauty"`
}

// Response carries the answer to one DetectAsync request. Result is nil
// when nothing was detected.
type Response struct {
	Result *Result
}

// Detector runs table-of-contents detection. It holds only configuration
// and may be shared across goroutines.
type Detector struct {
	params Params
	logger *slog.Logger
}

// New returns a Detector using p. Zero structural limits in p fall back to
// their defaults.
func New(p Params) *Detector {
	return &Detector{params: p.withDefaults()}
}

// WithLogger returns a copy of d that logs to l instead of the package logger.
func (d *Detector) WithLogger(l *slog.Logger) *Detector {
	c := *d
	c.logger = l
	return &c
}

func (d *Detector) log() *slog.Logger {
	if d.logger != nil {
		return d.logger
	}
	return logging.Logger()
}

// Detect scans text and returns the best heading pattern, or false when no
// candidate is convincing enough. It never panics.
func (d *Detector) Detect(text string) (res *Result, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log().Error("toc detection failed", "panic", fmt.Sprint(r))
			res, ok = nil, false
		}
	}()
	res = d.detect(text)
	return res, res != nil
}

// DetectAsync runs Detect on its own goroutine. The returned channel
// delivers exactly one Response and is then closed.
func (d *Detector) DetectAsync(text string) <-chan Response {
	ch := make(chan Response, 1)
	go func() {
		defer close(ch)
		res, _ := d.Detect(text)
		ch <- Response{Result: res}
	}()
	return ch
}

// Detect runs a detector with DefaultParams.
func Detect(text string) (*Result, bool) {
	return New(DefaultParams()).Detect(text)
}

func (d *Detector) detect(text string) *Result {
	a := newArticle(text, d.params.MaxTokens)
	set := newCandidateSet()

	d.numeralCandidates(a, set)
	numeral := len(set.order)
	d.prefixCandidates(a, set)
	d.log().Debug("toc candidates generated",
		"lines", len(a.lines),
		"numeral", numeral,
		"prefix", len(set.order)-numeral)

	best, items := d.selectBest(a, set)
	if best == nil {
		d.log().Debug("toc not detected")
		return nil
	}
	d.log().Debug("toc detected",
		"template", best.Template,
		"family", best.Family.String(),
		"beauty", best.Beauty,
		"items", len(items))
	return &Result{
		Items:    items,
		Template: best.Template,
		Beauty:   best.Beauty,
	}
}
