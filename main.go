//go:build !gui

package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/metcalfc/brrtoc/internal/autotoc"
	"github.com/metcalfc/brrtoc/internal/config"
	"github.com/metcalfc/brrtoc/internal/logging"
	"github.com/metcalfc/brrtoc/internal/reader"
	"github.com/metcalfc/brrtoc/internal/state"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	erpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordBeforeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	wordAfterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	chapterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#66CCFF"))

	tocStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// tocItem adapts a TOC entry to the bubbles list.
type tocItem struct {
	entry reader.TOCEntry
}

func (i tocItem) Title() string       { return strings.Repeat("  ", i.entry.Level) + i.entry.Title }
func (i tocItem) Description() string { return i.entry.Preview }
func (i tocItem) FilterValue() string { return i.entry.Title }

type model struct {
	*reader.Reader
	quitting bool
	width    int
	height   int

	text       string
	detector   *autotoc.Detector
	detecting  bool
	toc        list.Model
	tocVisible bool
	stateStore *state.StateStore
	fileHash   string
}

type tickMsg time.Time

// tocDetectedMsg carries the structure recovered for plain text.
type tocDetectedMsg struct {
	doc    *reader.Document
	cached bool
}

func (m model) Init() tea.Cmd {
	if !m.detecting {
		return tick(m.GetDelay())
	}
	return tea.Batch(tick(m.GetDelay()), m.detectTOC())
}

// detectTOC finds headings off the update loop. A template remembered for
// this file is tried first; detection runs only when it no longer matches.
func (m model) detectTOC() tea.Cmd {
	text, det := m.text, m.detector
	cached := ""
	if m.stateStore != nil && m.fileHash != "" {
		cached = m.stateStore.GetTemplate(m.fileHash)
	}
	return func() tea.Msg {
		doc := reader.NewDocument(text)
		if doc.ApplyTemplate(cached) {
			return tocDetectedMsg{doc: doc, cached: true}
		}
		res, _ := det.Detect(text)
		doc.SetDetected(res)
		return tocDetectedMsg{doc: doc}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.tocVisible {
			return m.updateTOC(msg)
		}

		switch msg.String() {
		case " ":
			m.Paused = !m.Paused
			if !m.Paused {
				return m, tick(m.GetDelay())
			}
			return m, nil

		case "+", "=":
			if m.WPM < 1500 {
				m.WPM += 50
			}
			return m, nil

		case "-":
			if m.WPM > 100 {
				m.WPM -= 50
			}
			return m, nil

		case "up":
			if m.WPM < 1500 {
				m.WPM += 50
			}
			return m, nil

		case "down":
			if m.WPM > 100 {
				m.WPM -= 50
			}
			return m, nil

		case "left":
			now := time.Now()
			if now.Sub(m.LastArrowPress) > 500*time.Millisecond {
				m.Paused = true
			}
			m.LastArrowPress = now
			m.JumpToPrevSentence()
			return m, nil

		case "right":
			now := time.Now()
			if now.Sub(m.LastArrowPress) > 500*time.Millisecond {
				m.Paused = true
			}
			m.LastArrowPress = now
			m.JumpToNextSentence()
			return m, nil

		case "[":
			m.Paused = true
			m.PrevChapter()
			return m, nil

		case "]":
			m.Paused = true
			m.NextChapter()
			return m, nil

		case "t", "T":
			if len(m.TOC) > 0 {
				m.tocVisible = true
				m.Paused = true
				m.toc.Select(m.currentTOCEntry())
			}
			return m, nil

		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeTOC()
		return m, nil

	case tocDetectedMsg:
		m.detecting = false
		return m, m.installTOC(msg)

	case tickMsg:
		if m.Paused {
			return m, nil
		}

		if m.Advance() {
			return m, tick(m.GetDelay())
		}

		// Reached the end
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTOC handles keys while the TOC panel is open.
func (m model) updateTOC(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.toc.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "t", "T":
			m.tocVisible = false
			return m, nil
		case "enter":
			if item, ok := m.toc.SelectedItem().(tocItem); ok {
				m.JumpToChapter(item.entry.WordIndex)
			}
			m.tocVisible = false
			return m, nil
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.toc, cmd = m.toc.Update(msg)
	return m, cmd
}

func (m *model) installTOC(msg tocDetectedMsg) tea.Cmd {
	doc := msg.doc
	log := logging.Logger()
	if !doc.Structured() {
		log.Info("no table of contents detected")
		return nil
	}
	log.Info("table of contents ready",
		"entries", len(doc.TOC),
		"template", doc.Template,
		"cached", msg.cached)

	m.SetChapters(doc.Chapters, doc.TOC)
	if doc.Template != "" {
		m.toc.Title = "Contents · " + doc.Template
	}
	if !msg.cached && m.stateStore != nil && m.fileHash != "" {
		if err := m.stateStore.SetTemplate(m.fileHash, doc.Template); err != nil {
			log.Warn("failed to remember toc template", "error", err)
		}
	}
	return m.setTOCItems()
}

// currentTOCEntry is the last TOC entry at or before the current word.
func (m model) currentTOCEntry() int {
	idx := 0
	for i, e := range m.TOC {
		if e.WordIndex > m.CurrentIndex {
			break
		}
		idx = i
	}
	return idx
}

func (m *model) setTOCItems() tea.Cmd {
	items := make([]list.Item, len(m.TOC))
	for i, e := range m.TOC {
		items[i] = tocItem{entry: e}
	}
	return m.toc.SetItems(items)
}

func (m *model) resizeTOC() {
	// border and padding, plus the status line
	w, h := m.width-4, m.height-3
	if w < 10 {
		w = 10
	}
	if h < 5 {
		h = 5
	}
	m.toc.SetSize(w, h)
}

func (m model) View() string {
	if m.quitting {
		if m.AtEnd() {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	if len(m.Words) == 0 {
		return "No text to read."
	}

	if m.tocVisible {
		return m.statusLine() + "\n" + tocStyle.Render(m.toc.View())
	}

	word := m.CurrentWord()
	formatted := formatWord(word)

	tocHint := ""
	if len(m.TOC) > 0 {
		tocHint = "  [/]: chapter  T: contents"
	}
	controls := controlsStyle.Render("SPACE: pause/play  ↑/↓: speed  ←/→: sentence" + tocHint + "  Q: quit")

	// Reserve 2 lines: 1 for status at top, 1 for controls at bottom
	avail := m.height - 2
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder

	sb.WriteString(m.statusLine())
	sb.WriteString("\n")

	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}

	line := anchorORPText(formatted, word, m.width)
	sb.WriteString(line)

	remaining := avail - vPad
	for i := 0; i < remaining; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(controls)

	return sb.String()
}

func (m model) statusLine() string {
	pause := ""
	if m.Paused {
		pause = pausedStyle.Render(" [PAUSED]")
	}

	current, total := m.Progress()
	status := statusStyle.Render(
		fmt.Sprintf("Word %d/%d | %d WPM%s",
			current,
			total,
			m.WPM,
			pause,
		),
	)
	switch {
	case m.detecting:
		status += statusStyle.Render("| finding chapters...")
	case m.CurrentChapterTitle() != "":
		status += chapterStyle.Render(m.CurrentChapterTitle())
	}
	return status
}

func formatWord(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return ""
	}
	orp := reader.GetORPPosition(word)
	if orp >= len(runes) {
		orp = len(runes) - 1
	}

	before := string(runes[:orp])
	focus := string(runes[orp])
	after := ""
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}

	return wordBeforeStyle.Render(before) +
		erpStyle.Render(focus) +
		wordAfterStyle.Render(after)
}

func anchorORPText(text string, word string, width int) string {
	anchor := width / 2
	orp := reader.GetORPPosition(word)
	pad := anchor - orp
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + text
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func newModel(doc *reader.Document, wpm int, det *autotoc.Detector) model {
	r := reader.NewReader(doc.Text, wpm)
	r.SetChapters(doc.Chapters, doc.TOC)

	delegate := list.NewDefaultDelegate()
	toc := list.New(nil, delegate, 0, 0)
	toc.Title = "Contents"
	toc.SetShowStatusBar(false)

	m := model{
		Reader:    r,
		quitting:  false,
		width:     80,
		height:    24,
		text:      doc.Text,
		detector:  det,
		detecting: !doc.Structured(),
		toc:       toc,
	}
	m.setTOCItems()
	m.resizeTOC()
	return m
}

// setupLogging sends logs to path. The terminal belongs to the alt screen,
// so without a path logs are discarded.
func setupLogging(path, level string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: logging.ParseLevel(level)})))
	return func() { f.Close() }, nil
}

func main() {
	wpm := flag.Int("w", 0, "Words per minute (default: 300, or wpm from config)")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	cfgFile := flag.String("config", "", "Config file (default: $XDG_CONFIG_HOME/brr/config.yaml)")
	logFile := flag.String("log", "", "Write logs to this file")
	noTOC := flag.Bool("no-toc", false, "Skip table of contents detection")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Brr - Terminal Speed Reading Tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  brr [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  brr file.txt              Read from file at 300 WPM\n")
		fmt.Fprintf(os.Stderr, "  brr -w 500 file.txt       Read from file at 500 WPM\n")
		fmt.Fprintf(os.Stderr, "  cat file.txt | brr        Read from stdin\n")
		fmt.Fprintf(os.Stderr, "  echo \"Hello world\" | brr  Read from stdin\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  SPACE    Pause/play\n")
		fmt.Fprintf(os.Stderr, "  +/-      Increase/decrease speed by 50 WPM\n")
		fmt.Fprintf(os.Stderr, "  ↑/↓      Increase/decrease speed by 50 WPM\n")
		fmt.Fprintf(os.Stderr, "  ←/→      Jump to previous/next sentence\n")
		fmt.Fprintf(os.Stderr, "  [/]      Jump to previous/next chapter\n")
		fmt.Fprintf(os.Stderr, "  T        Table of contents (ENTER jumps, ESC closes)\n")
		fmt.Fprintf(os.Stderr, "  Q        Quit\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("brr %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *wpm <= 0 {
		*wpm = cfg.WPM
	}

	closeLog, err := setupLogging(*logFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open log file '%s': %v\n", *logFile, err)
		os.Exit(1)
	}
	defer closeLog()

	var doc *reader.Document
	var sourceFile string

	if flag.NArg() > 0 {
		sourceFile = flag.Arg(0)
		doc, err = reader.LoadDocument(sourceFile, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to read file '%s': %v\n", sourceFile, err)
			os.Exit(1)
		}
	} else {
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Error: No input provided. Provide a file or pipe text to stdin.")
			fmt.Fprintln(os.Stderr, "Try: brr -h")
			os.Exit(1)
		}

		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
		doc = reader.NewDocument(string(data))
	}

	if strings.TrimSpace(doc.Text) == "" {
		fmt.Fprintln(os.Stderr, "Error: No text to read.")
		os.Exit(1)
	}

	m := newModel(doc, *wpm, autotoc.New(cfg.Detector))
	if *noTOC {
		m.detecting = false
	}

	if sourceFile != "" {
		if store, err := state.NewStateStore(); err == nil {
			if hash, err := state.ComputeHash(sourceFile); err == nil {
				m.stateStore = store
				m.fileHash = hash
			}
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
