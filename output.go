package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
)

var fileSeparator = strings.Repeat("=", 50)

// buildContextDocument turns successful outcomes into the context block
// appended to the prompt. Failed outcomes are excluded here; the caller
// reports them as warnings. Output is sorted by path so the document is
// stable regardless of traversal order.
func buildContextDocument(outcomes []FileOutcome) string {
	sorted := make([]FileOutcome, len(outcomes))
	copy(sorted, outcomes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	var b strings.Builder
	for _, o := range sorted {
		if o.Err != nil {
			continue
		}
		b.WriteString(fmt.Sprintf("File: %s\n", o.Path))
		b.WriteString(fileSeparator)
		b.WriteString("\n")
		b.WriteString(o.Content)
		if !strings.HasSuffix(o.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// assemblePrompt joins the user prompt with the context document.
func assemblePrompt(prompt, contextDoc string) string {
	if contextDoc == "" {
		return prompt
	}
	return prompt + "\n\n--- Context ---\n\n" + contextDoc
}

// formatResponses renders model responses: raw text for a single
// successful model, markdown sections when several models answered or
// anything failed.
func formatResponses(responses []ModelResponse) string {
	if len(responses) == 1 && responses[0].Err == nil {
		return ensureTrailingNewline(responses[0].Content)
	}

	var b strings.Builder
	for i, resp := range responses {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("## %s (%s, %s)\n\n",
			resp.Name, resp.Provider, resp.Elapsed.Round(time.Millisecond)))
		if resp.Err != nil {
			b.WriteString(fmt.Sprintf("Error: %v\n", resp.Err))
		} else {
			b.WriteString(ensureTrailingNewline(resp.Content))
		}
	}
	return b.String()
}

func ensureTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// deliverOutput routes the final text to a file, the clipboard, or stdout.
func deliverOutput(text string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(text), 0o644); err != nil {
			return &cliError{msg: fmt.Sprintf("could not write %s", outputFile), cause: err}
		}
		fmt.Fprintf(os.Stderr, "Output saved to %s\n", outputFile)
		return nil
	}
	if copyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			logger.Warn("clipboard write failed, printing instead", zap.Error(err))
			fmt.Print(text)
			return nil
		}
		fmt.Fprintln(os.Stderr, "Output copied to clipboard.")
		return nil
	}
	fmt.Print(text)
	return nil
}
