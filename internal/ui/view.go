package ui

import (
	"fmt"
	"strings"

	"vidmatic/internal/phase"
	"vidmatic/internal/render"
	"vidmatic/internal/session"
)

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")
	if !m.haveSnap {
		b.WriteString(m.styles.Faint.Render(m.spinner.View() + " submitting…"))
		b.WriteString("\n")
		return m.styles.Box.Render(b.String())
	}
	b.WriteString(m.viewSteps())
	b.WriteString("\n")
	b.WriteString(m.viewProgress())
	if w := m.viewWarnings(); w != "" {
		b.WriteString("\n")
		b.WriteString(w)
	}
	if s := m.viewSummary(); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return m.styles.Box.Render(b.String())
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("vidmatic — video generation")
	sub := "q: quit"
	if m.view.JobID != "" {
		sub = "job " + m.view.JobID + " • " + sub
	}
	return title + "\n" + m.styles.Subtitle.Render(sub)
}

func (m Model) viewSteps() string {
	var b strings.Builder
	for _, st := range m.view.Steps {
		b.WriteString(m.viewStep(st))
		b.WriteString("\n")
		if st.Key == phase.GeneratingClips && m.view.Segments != nil {
			b.WriteString(m.viewSegments(*m.view.Segments))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) viewStep(st render.Step) string {
	var icon, label string
	switch st.Status {
	case render.Finish:
		icon = m.styles.StepDone.Render("✓")
		label = m.styles.StepDone.Render(st.Label)
	case render.Process:
		icon = m.styles.Spinner.Render(m.spinner.View())
		label = m.styles.StepActive.Render(st.Label)
	case render.Skipped:
		icon = m.styles.StepSkipped.Render("–")
		label = m.styles.StepSkipped.Render(st.Label)
	case render.Error:
		icon = m.styles.StepError.Render("✗")
		label = m.styles.StepError.Render(st.Label)
	default:
		icon = m.styles.StepWait.Render("○")
		label = m.styles.StepWait.Render(st.Label)
	}
	line := fmt.Sprintf("%s %s", icon, label)
	if st.Status == render.Process && st.Detail != "" {
		line += "  " + m.styles.Faint.Render(truncate(st.Detail, 60))
	}
	return line
}

func (m Model) viewSegments(sv render.SegmentView) string {
	var cells []string
	for i := 1; i <= sv.Total; i++ {
		switch {
		case i <= sv.Done:
			cells = append(cells, m.styles.StepDone.Render("■"))
		case i == sv.Active:
			cells = append(cells, m.styles.StepActive.Render("▶"))
		default:
			cells = append(cells, m.styles.StepWait.Render("□"))
		}
	}
	count := m.styles.Faint.Render(fmt.Sprintf(" clip %d/%d", sv.Done, sv.Total))
	return "    " + strings.Join(cells, " ") + count
}

func (m Model) viewProgress() string {
	bar := m.bar.ViewAs(float64(m.view.Percent) / 100.0)
	line := fmt.Sprintf("%s %3d%%", bar, m.view.Percent)
	if m.view.Banner != "" {
		line += "  " + m.styles.Banner.Render(m.view.Banner)
	}
	return line + "\n"
}

func (m Model) viewWarnings() string {
	if len(m.view.Fallbacks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, fb := range m.view.Fallbacks {
		msg := fmt.Sprintf("segment %d fell back", fb.Segment)
		if fb.Type != "" {
			msg += " to " + fb.Type
		}
		if fb.Reason != "" {
			msg += ": " + fb.Reason
		}
		b.WriteString(m.styles.Warning.Render("⚠ " + msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewSummary() string {
	var b strings.Builder
	if m.view.Topic != "" {
		b.WriteString(m.styles.Faint.Render("topic: " + truncate(m.view.Topic, 70)))
		b.WriteString("\n")
	}
	if m.view.Title != "" {
		b.WriteString(m.styles.Faint.Render("title: " + truncate(m.view.Title, 70)))
		b.WriteString("\n")
	}

	switch m.view.State {
	case session.Completed:
		if m.view.OutputLink != "" {
			b.WriteString(m.styles.Success.Render("✓ Video ready: "))
			b.WriteString(m.styles.Link.Render(m.view.OutputLink))
		} else {
			b.WriteString(m.styles.Success.Render("✓ Completed"))
		}
		b.WriteString("\n")
	case session.Failed:
		msg := m.view.FailureMessage
		if msg == "" {
			msg = "unknown error"
		}
		b.WriteString(m.styles.Error.Render("✗ " + msg))
		b.WriteString("\n")
		if m.view.RecoveryHint != "" {
			b.WriteString(m.styles.Faint.Render(m.view.RecoveryHint))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
