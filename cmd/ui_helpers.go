// Copyright (c) 2025 Empbridge
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"golang.org/x/term"

	"empbridge/cli/internal/bridge/model"
	"empbridge/cli/internal/employee"
)

var (
	spinnerFrames   = []string{"-", "\\", "|", "/"}
	spinnerInterval = 100 * time.Millisecond
)

// startInlineSpinner starts a simple inline spinner animation on a single line.
// Nothing is drawn when w is not a terminal. The returned function stops the
// spinner and clears the line.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
				// Clear the spinner line completely, then return
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				i++
				fmt.Fprintf(w, "\r%s %s", frames[i%len(frames)], text)
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}

// startAreaSpinner shows text with a spinner in a pterm area and hides the cursor
// until the returned function is called.
func startAreaSpinner(text string) func() {
	cursor.Hide()
	area, err := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	if err != nil {
		cursor.Show()
		return func() {}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		i := 0
		for {
			select {
			case <-t.C:
				i++
				area.Update(fmt.Sprintf("%s %s", spinnerFrames[i%len(spinnerFrames)], text))
			case <-stop:
				return
			}
		}
	}()

	return func() {
		close(stop)
		wg.Wait()
		_ = area.Stop()
		cursor.Show()
	}
}

// renderOutcome prints an outcome for humans. Error outcomes become a non-nil error
// so the process exits non-zero.
func renderOutcome(out model.Outcome) error {
	switch out.Status {
	case model.StatusSuccess:
		if s, ok := out.Result.(string); ok {
			pterm.Println("✅ " + s)
		} else {
			pterm.Printf("✅ %v\n", out.Result)
		}
		return nil
	case model.StatusNotImplemented:
		pterm.Println("⚠️  Method not implemented by the bridge")
		return fmt.Errorf("not implemented")
	default:
		pterm.Println("❌ " + out.Message)
		if out.Details != nil {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("   details: %v", out.Details))
		}
		return fmt.Errorf("%s: %s", out.Code, out.Message)
	}
}

// renderRecords prints records as a table. Columns follow the first record; later
// records may add columns.
func renderRecords(records []employee.Record) error {
	if len(records) == 0 {
		pterm.Println("No employees found")
		return nil
	}

	var cols []string
	seen := map[string]bool{}
	for _, r := range records {
		for _, c := range r.Columns() {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	data := pterm.TableData{cols}
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i], _ = r.Get(c)
		}
		data = append(data, row)
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
