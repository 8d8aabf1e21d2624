package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/metcalfc/brrtoc/internal/autotoc"
	"github.com/metcalfc/brrtoc/internal/reader"
	"github.com/metcalfc/brrtoc/internal/state"
)

const stdinSource = "-"

// readInput returns the text named by args, reading stdin when args is
// empty or "-".
func readInput(cmd *cobra.Command, args []string) (text, source string, err error) {
	if len(args) == 0 || args[0] == stdinSource {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), stdinSource, nil
	}
	text, err = reader.ExtractText(args[0])
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return text, args[0], nil
}

// openState returns the state store and the hash of source. Stdin has no
// stable identity and is rejected.
func openState(source string) (*state.StateStore, string, error) {
	if source == stdinSource {
		return nil, "", fmt.Errorf("templates can only be remembered for files")
	}
	store, err := state.NewStateStore()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open state: %w", err)
	}
	hash, err := state.ComputeHash(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash %s: %w", source, err)
	}
	return store, hash, nil
}

type entryOutput struct {
	Title     string `json:"title" yaml:"title"`
	Cursor    int    `json:"cursor" yaml:"cursor"`
	Line      int    `json:"line" yaml:"line"`
	WordIndex int    `json:"word_index" yaml:"word_index"`
	Preview   string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

type tocOutput struct {
	Source   string        `json:"source" yaml:"source"`
	Template string        `json:"template" yaml:"template"`
	Beauty   float64       `json:"beauty,omitempty" yaml:"beauty,omitempty"`
	Entries  []entryOutput `json:"entries" yaml:"entries"`
}

func newTOCOutput(source, text, template string, items []autotoc.Item) tocOutput {
	out := tocOutput{
		Source:   source,
		Template: template,
		Entries:  make([]entryOutput, len(items)),
	}
	toc := reader.TOCFromItems(text, items)
	line, prev := 1, 0
	for i, it := range items {
		line += strings.Count(text[prev:it.Cursor], "\n")
		prev = it.Cursor
		out.Entries[i] = entryOutput{
			Title:     it.Title,
			Cursor:    it.Cursor,
			Line:      line,
			WordIndex: toc[i].WordIndex,
			Preview:   toc[i].Preview,
		}
	}
	return out
}
