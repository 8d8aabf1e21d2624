// Package reader provides core RSVP (Rapid Serial Visual Presentation) speed reading logic.
package reader

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Reader holds the state for an RSVP speed reading session.
type Reader struct {
	Words          []string
	SentenceStarts []int
	CurrentIndex   int
	WPM            int
	Paused         bool
	LastArrowPress time.Time

	// Chapter support
	Chapters       []Chapter
	TOC            []TOCEntry
	CurrentChapter int
}

// NewReader creates a new Reader from the given text and words-per-minute setting.
func NewReader(text string, wpm int) *Reader {
	words := ParseText(text)
	return &Reader{
		Words:          words,
		SentenceStarts: FindSentenceStarts(words),
		CurrentIndex:   0,
		WPM:            wpm,
		Paused:         false,
		LastArrowPress: time.Time{},
	}
}

// ParseText splits text into words.
func ParseText(text string) []string {
	return strings.Fields(text)
}

// sentenceClosers may trail a sentence terminator, as in `end."` or `完。」`.
const sentenceClosers = "\"')]}’”」』）"

// FindSentenceStarts returns indices of words that start sentences.
func FindSentenceStarts(words []string) []int {
	starts := []int{0}
	for i, word := range words {
		if endsSentence(word) && i+1 < len(words) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func endsSentence(word string) bool {
	word = strings.TrimRight(word, sentenceClosers)
	last, _ := utf8.DecodeLastRuneInString(word)
	switch last {
	case '.', '!', '?', '。', '！', '？', '…':
		return true
	}
	return false
}

// GetORPPosition returns the Optimal Recognition Point index for a word.
// This is the character (rune) position where the eye should focus for fastest recognition.
func GetORPPosition(word string) int {
	length := utf8.RuneCountInString(word)
	if length <= 1 {
		return 0
	} else if length <= 5 {
		return 1
	}
	return length / 3
}

// JumpToPrevSentence moves to the start of the previous sentence.
func (r *Reader) JumpToPrevSentence() {
	for i := len(r.SentenceStarts) - 1; i >= 0; i-- {
		if r.SentenceStarts[i] < r.CurrentIndex {
			r.CurrentIndex = r.SentenceStarts[i]
			r.updateCurrentChapter()
			return
		}
	}
	r.CurrentIndex = 0
	r.updateCurrentChapter()
}

// JumpToNextSentence moves to the start of the next sentence.
func (r *Reader) JumpToNextSentence() {
	for i := 0; i < len(r.SentenceStarts); i++ {
		if r.SentenceStarts[i] > r.CurrentIndex {
			r.CurrentIndex = r.SentenceStarts[i]
			r.updateCurrentChapter()
			return
		}
	}
	if len(r.Words) > 0 {
		r.CurrentIndex = len(r.Words) - 1
	}
	r.updateCurrentChapter()
}

// GetDelay returns the duration to display each word based on WPM.
func (r *Reader) GetDelay() time.Duration {
	return time.Duration(60.0/float64(r.WPM)*1000) * time.Millisecond
}

// CurrentWord returns the word at the current index.
func (r *Reader) CurrentWord() string {
	if r.CurrentIndex >= 0 && r.CurrentIndex < len(r.Words) {
		return r.Words[r.CurrentIndex]
	}
	return ""
}

// Progress returns the current position and total word count.
func (r *Reader) Progress() (current, total int) {
	return r.CurrentIndex + 1, len(r.Words)
}

// Advance moves to the next word. Returns true if there are more words.
func (r *Reader) Advance() bool {
	if r.CurrentIndex < len(r.Words)-1 {
		r.CurrentIndex++
		if next := r.CurrentChapter + 1; next < len(r.Chapters) && r.CurrentIndex >= r.Chapters[next].WordStart {
			r.CurrentChapter = next
		}
		return true
	}
	return false
}

// AtEnd returns true if the reader is at the last word.
func (r *Reader) AtEnd() bool {
	return r.CurrentIndex >= len(r.Words)-1
}

// JumpToChapter jumps to the specified word index and updates current chapter.
func (r *Reader) JumpToChapter(wordIndex int) {
	if wordIndex >= 0 && wordIndex < len(r.Words) {
		r.CurrentIndex = wordIndex
		r.updateCurrentChapter()
	}
}

// NextChapter jumps to the start of the following chapter. It reports false
// when already in the last one.
func (r *Reader) NextChapter() bool {
	next := r.CurrentChapter + 1
	if len(r.Chapters) > 0 && r.CurrentIndex < r.Chapters[0].WordStart {
		next = 0
	}
	if next >= len(r.Chapters) {
		return false
	}
	r.JumpToChapter(r.Chapters[next].WordStart)
	return true
}

// PrevChapter jumps to the start of the current chapter, or of the previous
// one when already at the start.
func (r *Reader) PrevChapter() bool {
	if len(r.Chapters) == 0 || r.CurrentIndex < r.Chapters[0].WordStart {
		return false
	}
	target := r.CurrentChapter
	if r.CurrentIndex <= r.Chapters[target].WordStart && target > 0 {
		target--
	}
	r.JumpToChapter(r.Chapters[target].WordStart)
	return true
}

// ChapterAt returns the index of the chapter containing wordIndex. Words
// before the first chapter belong to chapter 0.
func (r *Reader) ChapterAt(wordIndex int) int {
	i := sort.Search(len(r.Chapters), func(i int) bool {
		return r.Chapters[i].WordStart > wordIndex
	})
	return max(i-1, 0)
}

func (r *Reader) updateCurrentChapter() {
	r.CurrentChapter = r.ChapterAt(r.CurrentIndex)
}

// CurrentChapterTitle returns the title of the current chapter.
func (r *Reader) CurrentChapterTitle() string {
	if r.CurrentChapter >= 0 && r.CurrentChapter < len(r.Chapters) {
		return r.Chapters[r.CurrentChapter].Title
	}
	return ""
}

// SetChapters sets the chapter data and updates the current chapter.
func (r *Reader) SetChapters(chapters []Chapter, toc []TOCEntry) {
	r.Chapters = chapters
	r.TOC = toc
	r.updateCurrentChapter()
}
