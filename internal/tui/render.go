package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"quiz-widget-service/internal/markup"
	"quiz-widget-service/internal/quiz"
	"quiz-widget-service/internal/stats"
)

var (
	colorTitle   = lipgloss.Color("33")
	colorMuted   = lipgloss.Color("242")
	colorCode    = lipgloss.Color("215")
	colorCorrect = lipgloss.Color("42")
	colorWrong   = lipgloss.Color("196")
	colorCheer   = lipgloss.Color("213")
)

// View renders the screen for the current player status.
func (m Model) View() string {
	var body string
	switch m.view.Status {
	case quiz.StatusLoading:
		body = m.spinner.View() + " Loading quiz..."
	case quiz.StatusError:
		body = m.style(m.view.Error, colorWrong) + "\n\n" + m.style("enter: back to quizzes", colorMuted)
	case quiz.StatusInProgress:
		body = m.renderQuestion()
	case quiz.StatusCompleted:
		body = m.renderResult()
	default:
		body = m.renderSelector()
	}

	parts := []string{body}
	if c := m.view.Celebration; c != quiz.CelebrationNone {
		parts = append(parts, m.banner(c.Message()))
	}
	if m.confirming {
		parts = append(parts, m.style("Leave this quiz? Your progress will be lost. (y/n)", colorWrong))
	}
	if m.lastErr != "" {
		parts = append(parts, m.style(m.lastErr, colorMuted))
	}
	if m.busy && m.view.Status != quiz.StatusLoading {
		parts = append(parts, m.spinner.View())
	}
	parts = append(parts, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) renderSelector() string {
	var b strings.Builder
	b.WriteString(m.bold("Choose a quiz", colorTitle))
	if m.topic != "" {
		b.WriteString(m.style(" ("+m.topic+")", colorMuted))
	}
	b.WriteString("\n\n")
	if m.catalogErr != "" {
		b.WriteString(m.style("Could not load quizzes: "+m.catalogErr, colorWrong) + "\n")
		b.WriteString(m.style("r: retry", colorMuted))
		return b.String()
	}
	if len(m.quizzes) == 0 && !m.busy {
		b.WriteString(m.style("No quizzes available.", colorMuted))
		return b.String()
	}
	for i, md := range m.quizzes {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + md.Title
		meta := fmt.Sprintf(" %d questions", md.QuestionCount)
		if md.EstimatedTime != "" {
			meta += " · " + md.EstimatedTime
		}
		b.WriteString(line + m.style(meta, colorMuted) + "\n")
		if i == m.cursor {
			b.WriteString("    " + m.style(md.Description, colorMuted) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderQuestion() string {
	q := m.view.Question
	if q == nil {
		return ""
	}
	p := q.Presented
	var b strings.Builder
	header := fmt.Sprintf("%s  Question %d of %d  Score %d", m.view.Title, m.view.QuestionNumber, m.view.TotalQuestions, m.view.Score)
	if m.view.Streak > 1 {
		header += fmt.Sprintf("  Streak %d", m.view.Streak)
	}
	b.WriteString(m.bold(header, colorTitle) + "\n\n")
	b.WriteString(m.renderMarkup(p.Question.Text) + "\n")
	if p.Question.ExampleHTML != "" {
		b.WriteString("\n" + m.codeBlock(markup.Parse(p.Question.ExampleHTML).Plain()) + "\n")
	}
	b.WriteString("\n")

	for i, opt := range p.Options {
		cursor := "  "
		if i == m.cursor && q.Selection == nil {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%d. %s", cursor, i+1, m.renderMarkup(opt))
		if q.Selection != nil {
			switch {
			case i == q.CorrectIndex && (q.Selection.Correct || q.Selection.RevealCorrect):
				line = m.style(line+"  ✓", colorCorrect)
			case i == q.Selection.Index:
				line = m.style(line+"  ✗", colorWrong)
			}
		}
		b.WriteString(line + "\n")
	}

	if sel := q.Selection; sel != nil {
		b.WriteString("\n")
		if sel.Correct {
			b.WriteString(m.bold("Correct!", colorCorrect) + "\n")
		} else {
			b.WriteString(m.bold("Not quite.", colorWrong) + "\n")
		}
		if sel.ShowExplanation {
			if p.Question.ExplanationHTML != "" {
				b.WriteString(m.renderMarkup(p.Question.ExplanationHTML) + "\n")
			}
			if p.Question.ExampleExplanationHTML != "" {
				b.WriteString(m.codeBlock(markup.Parse(p.Question.ExampleExplanationHTML).Plain()) + "\n")
			}
		}
		b.WriteString(m.style("enter: continue", colorMuted))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderResult() string {
	r := m.view.Result
	if r == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.bold(m.view.Title+" complete", colorTitle) + "\n\n")
	b.WriteString(fmt.Sprintf("You scored %d out of %d (%d%%)\n", r.Score, r.Total, r.Percentage))
	b.WriteString(r.Feedback + "\n")
	if !r.Saved {
		b.WriteString(m.style("Score not saved.", colorMuted) + "\n")
	}
	if st := r.Stats; st != nil && st.TotalAttempts > 0 {
		b.WriteString("\n" + m.bold("How everyone did", colorTitle) + "\n")
		b.WriteString(fmt.Sprintf("Attempts %d  Average %d%%  Best %d%%\n", st.TotalAttempts, st.AverageScorePercent, st.HighScorePercent))
		for _, bucket := range stats.Buckets {
			n := st.Distribution[bucket]
			bar := strings.Repeat("█", scaled(n, st.TotalAttempts, 30))
			b.WriteString(fmt.Sprintf("%7s%% %s %d\n", bucket, m.style(bar, colorCorrect), n))
		}
	}
	b.WriteString("\n" + m.style("r: try again  enter: other quizzes  q: quit", colorMuted))
	return b.String()
}

// renderMarkup shows inline code highlighted and strips any tags from prose.
func (m Model) renderMarkup(text string) string {
	var b strings.Builder
	for _, seg := range markup.Parse(text).Segments {
		switch seg.Kind {
		case markup.Text:
			b.WriteString(markup.StripTags(seg.Content))
		case markup.InlineCode:
			b.WriteString(m.style(seg.Content, colorCode))
		case markup.CodeBlock:
			b.WriteString(m.codeBlock(seg.Content))
		}
	}
	return b.String()
}

func (m Model) codeBlock(code string) string {
	if m.noColor {
		return code
	}
	return lipgloss.NewStyle().
		Foreground(colorCode).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1).
		Render(code)
}

func (m Model) banner(text string) string {
	if m.noColor {
		return "*** " + text + " ***"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(colorCheer).Padding(1, 2).Render("🎉 " + text)
}

func (m Model) style(text string, color lipgloss.Color) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func (m Model) bold(text string, color lipgloss.Color) string {
	if m.noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}

func scaled(n, total, width int) int {
	if total == 0 {
		return 0
	}
	return n * width / total
}
