package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/marketerz/marketerz/internal/controller"
	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPrompt(w io.Writer, p prompts.GeneratedPrompt, raw bool) {
	if raw {
		fmt.Fprintln(w, p.Prompt)
		return
	}
	fmt.Fprintf(w, "== %s ==\n", p.Category)
	fmt.Fprintf(w, "Purpose: %s\n", p.Purpose)
	fmt.Fprintf(w, "%s | %s\n\n", p.TokensHint, p.ExpectedOutputSize)
	fmt.Fprintln(w, strings.TrimSpace(p.Prompt))
	fmt.Fprintln(w)
}

func printPrompts(w io.Writer, ps []prompts.GeneratedPrompt, raw bool) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No prompts yet.")
		return
	}
	for _, p := range ps {
		printPrompt(w, p, raw)
	}
}

func printHistory(w io.Writer, items []prompts.HistoryItem, activeID string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tPROMPTS\tIDEA\t")
	for _, item := range items {
		id := item.ID
		if id == activeID && id != "" {
			id = "* " + id
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", id, item.Timestamp.Local().Format(time.RFC822), len(item.Prompts), utils.Truncate(item.Idea, 60))
	}
	tw.Flush()
}

func printSettings(w io.Writer, s prompts.Settings) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "Temperature\t%.2f\t\n", s.Temperature)
	for _, c := range prompts.AllCategories() {
		mark := "[ ]"
		if prompts.ContainsCategory(s.SelectedCategories, c) {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", mark, c)
	}
	tw.Flush()
}

func printExamples(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tIDEA\t")
	for i, ex := range prompts.ExampleIdeas() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i+1, ex.Title, ex.Description)
	}
	tw.Flush()
}

func printTemplates(w io.Writer, ts []prompts.Template) {
	if len(ts) == 0 {
		fmt.Fprintln(w, "No templates match.")
		return
	}
	// indexes always refer to the unfiltered list so they can be passed to findTemplate
	index := make(map[string]int)
	for i, t := range prompts.Templates() {
		index[t.Title] = i + 1
	}
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "#\tCATEGORY\tTITLE\tDESCRIPTION\t")
	for _, t := range ts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", index[t.Title], t.Category, t.Title, utils.Truncate(t.Description, 70))
	}
	tw.Flush()
}

// findTemplate accepts a 1-based index or a case-insensitive title.
func findTemplate(ref string) (prompts.Template, error) {
	ts := prompts.Templates()
	if idx, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if idx < 1 || idx > len(ts) {
			return prompts.Template{}, fmt.Errorf("template index must be between 1 and %d", len(ts))
		}
		return ts[idx-1], nil
	}
	for _, t := range ts {
		if strings.EqualFold(t.Title, strings.TrimSpace(ref)) {
			return t, nil
		}
	}
	return prompts.Template{}, fmt.Errorf("no template named %q", ref)
}

func findExample(ref string) (prompts.ExampleIdea, error) {
	exs := prompts.ExampleIdeas()
	if idx, err := strconv.Atoi(strings.TrimSpace(ref)); err == nil {
		if idx < 1 || idx > len(exs) {
			return prompts.ExampleIdea{}, fmt.Errorf("example index must be between 1 and %d", len(exs))
		}
		return exs[idx-1], nil
	}
	for _, ex := range exs {
		if strings.EqualFold(ex.Title, strings.TrimSpace(ref)) {
			return ex, nil
		}
	}
	return prompts.ExampleIdea{}, fmt.Errorf("no example named %q", ref)
}

// promptConfirmer asks on out and reads a y/N answer from in.
func promptConfirmer(in *bufio.Reader, out io.Writer) controller.Confirmer {
	return func(question string) bool {
		fmt.Fprintf(out, "%s [y/N] ", question)
		answer, err := in.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
