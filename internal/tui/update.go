// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spongex/scripts/internal/progress"
	"github.com/spongex/scripts/internal/runbatch"
)

const (
	defaultWidth        = 80
	defaultHeight       = 20
	reservedLines       = 6 // title, border, status bar, help
	minViewportHeight   = 3
	minNameWidth        = 12
	ellipsis            = "..."
	durationRounding    = 100 * time.Millisecond
	helpRunning         = "↑/↓ to scroll, q to stop the run"
	helpDone            = "↑/↓ to scroll, q to quit"
	minStatusBarHeight  = 8
	borderHorizontalPad = 2
)

// ProgressEventMsg wraps a progress event for the bubbletea loop.
type ProgressEventMsg struct {
	Event progress.Event
}

// RunCompletedMsg is sent once every job has settled.
type RunCompletedMsg struct {
	Results runbatch.Results
	Summary string
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true

			if !m.done && m.onQuit != nil {
				m.onQuit()
			}

			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = max(msg.Width-borderHorizontalPad, minNameWidth)
		m.viewport.Height = max(msg.Height-reservedLines, minViewportHeight)

		return m, nil

	case ProgressEventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case RunCompletedMsg:
		m.complete(msg.Results, msg.Summary)
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var content strings.Builder

	now := time.Now()
	for _, r := range m.rows {
		m.renderRow(&content, r, now)
	}

	if m.done {
		content.WriteString("\n")

		if m.failed {
			content.WriteString(m.styles.Failed.Render("✗ " + m.summary))
		} else {
			content.WriteString(m.styles.Success.Render("✓ " + m.summary))
		}

		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())

	var view strings.Builder

	view.WriteString(m.styles.Title.Render(m.title))
	view.WriteString("\n")
	view.WriteString(m.styles.Border.Render(m.viewport.View()))

	if m.height == 0 || m.height > minStatusBarHeight {
		running, succeeded, failed := m.Counts()

		view.WriteString("\n")
		view.WriteString(fmt.Sprintf("%d running, %d succeeded, %d failed, %d total", running, succeeded, failed, len(m.rows)))
		view.WriteString("\n")

		help := helpRunning
		if m.done {
			help = helpDone
		}

		view.WriteString(m.styles.Help.Render(help))
	}

	return view.String()
}

func (m *Model) renderRow(b *strings.Builder, r *JobRow, now time.Time) {
	var icon, name string

	switch r.Status {
	case StatusRunning:
		icon, name = m.spinner.View(), m.styles.Running.Render(r.Name)
	case StatusSuccess:
		icon, name = m.styles.Success.Render("✓"), m.styles.Success.Render(r.Name)
	case StatusFailed:
		icon, name = m.styles.Failed.Render("✗"), m.styles.Failed.Render(r.Name)
	case StatusSkipped:
		icon, name = m.styles.Skipped.Render("~"), m.styles.Skipped.Render(r.Name)
	default:
		icon, name = m.styles.Pending.Render("·"), m.styles.Pending.Render(r.Name)
	}

	left := fmt.Sprintf("%s %s", icon, name)
	if elapsed := r.Elapsed(now); elapsed > 0 {
		left += m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(durationRounding)))
	}

	var right string

	switch {
	case r.Status == StatusFailed && r.ErrorMsg != "":
		right = m.styles.Error.Render(truncate("Error: "+r.ErrorMsg, m.viewport.Width/2))
	case r.Status == StatusRunning && r.LastOutput != "":
		right = m.styles.Output.Render(truncate(r.LastOutput, m.viewport.Width/2))
	}

	b.WriteString(left)

	if right != "" {
		b.WriteString("  ")
		b.WriteString(right)
	}

	b.WriteString("\n")
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	if n <= len(ellipsis) {
		return string(runes[:max(n, 0)])
	}

	return string(runes[:n-len(ellipsis)]) + ellipsis
}
