// Package tui is the terminal front end for running an audit interactively.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"audit-backend/internal/audits"
	"audit-backend/internal/leads"
	"audit-backend/internal/progress"
	"audit-backend/internal/report"
	"audit-backend/internal/session"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// rows reserved around the viewport for the header, gate and key hints.
	chromeRows = 9
)

// Options configures a Model.
type Options struct {
	Analyzer audits.Analyzer
	Leads    leads.Capturer
	// SaveDir is where exported reports are written. Empty means the working directory.
	SaveDir string
	// Style is a glamour style name; empty selects "dark".
	Style string
	// StepInterval overrides progress.Interval.
	StepInterval time.Duration
}

// auditRunner is implemented by analyzers that also return the audit ID.
type auditRunner interface {
	Audit(ctx context.Context, in audits.UserInput) (audits.AuditResponse, error)
}

type auditDoneMsg struct {
	ticket  session.Ticket
	auditID string
	result  audits.AnalysisResult
	err     error
}

type stepTickMsg struct {
	ticket session.Ticket
}

type leadDoneMsg struct {
	email string
	err   error
}

type savedMsg struct {
	path string
	err  error
}

// Model is the bubbletea model. All phase changes go through machine.
type Model struct {
	opts     Options
	base     context.Context
	cancel   context.CancelFunc
	machine  *session.Machine
	styles   Styles
	renderer *glamour.TermRenderer

	urlInput   textinput.Model
	emailInput textinput.Model
	spinner    spinner.Model
	viewport   viewport.Model

	ticket  session.Ticket
	step    int
	auditID string
	flash   string
	status  string
	width   int
	height  int
}

// New builds the initial model.
func New(ctx context.Context, opts Options) Model {
	if opts.StepInterval <= 0 {
		opts.StepInterval = progress.Interval
	}
	if opts.Style == "" {
		opts.Style = "dark"
	}
	styles := DefaultStyles()

	url := textinput.New()
	url.Placeholder = "yourcompany.com"
	url.Prompt = "› "
	url.PromptStyle = styles.Prompt
	url.CharLimit = 2048
	url.Width = 60
	url.Focus()

	email := textinput.New()
	email.Placeholder = "you@company.com"
	email.Prompt = "› "
	email.PromptStyle = styles.Prompt
	email.CharLimit = 254
	email.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StepActive

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(defaultWidth-4),
	)

	return Model{
		opts:       opts,
		base:       ctx,
		machine:    session.New(),
		styles:     styles,
		renderer:   renderer,
		urlInput:   url,
		emailInput: email,
		spinner:    sp,
		viewport:   viewport.New(defaultWidth, defaultHeight-chromeRows),
		width:      defaultWidth,
		height:     defaultHeight,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(New(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case auditDoneMsg:
		return m.handleAuditDone(msg)
	case stepTickMsg:
		if msg.ticket != m.ticket || m.machine.Phase() != session.PhaseProcessing {
			return m, nil
		}
		m.step = progress.Next(m.step)
		if m.step >= len(progress.Steps)-1 {
			return m, nil
		}
		return m, m.tickStep()
	case leadDoneMsg:
		if msg.err != nil {
			m.status = "Could not record your email: " + msg.err.Error()
		} else {
			m.status = "Report unlocked for " + msg.email
		}
		return m, nil
	case savedMsg:
		if msg.err != nil {
			m.status = "Save failed: " + msg.err.Error()
		} else {
			m.status = "Saved report to " + msg.path
		}
		return m, nil
	case spinner.TickMsg:
		if m.machine.Phase() != session.PhaseProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.cancelAudit()
		return m, tea.Quit
	case "ctrl+r":
		return m.reset()
	}

	snap := m.machine.Snapshot()
	switch snap.Phase {
	case session.PhaseInput:
		switch msg.String() {
		case "enter":
			return m.submit()
		case "esc":
			m.machine.DismissError()
			m.flash = ""
			return m, nil
		}
	case session.PhaseProcessing:
		if msg.String() == "esc" || msg.String() == "r" {
			return m.reset()
		}
		return m, nil
	case session.PhaseResults:
		if !snap.Unlocked {
			if msg.String() == "enter" {
				return m.unlock()
			}
			break
		}
		switch msg.String() {
		case "r":
			return m.reset()
		case "s":
			return m, m.save(snap)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m.updateInputs(msg)
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.machine.Phase() {
	case session.PhaseInput:
		m.urlInput, cmd = m.urlInput.Update(msg)
	case session.PhaseResults:
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	ticket, in, err := m.machine.Submit(m.urlInput.Value())
	if err != nil {
		m.flash = userFacing(err)
		return m, nil
	}
	m.flash = ""
	m.status = ""
	m.ticket = ticket
	m.step = 0
	m.auditID = ""
	m.urlInput.Blur()

	ctx, cancel := context.WithCancel(m.base)
	m.cancel = cancel
	return m, tea.Batch(m.spinner.Tick, m.runAudit(ctx, ticket, in), m.tickStep())
}

func (m Model) runAudit(ctx context.Context, ticket session.Ticket, in audits.UserInput) tea.Cmd {
	analyzer := m.opts.Analyzer
	return func() tea.Msg {
		if runner, ok := analyzer.(auditRunner); ok {
			resp, err := runner.Audit(ctx, in)
			return auditDoneMsg{ticket: ticket, auditID: resp.ID, result: resp.Result, err: err}
		}
		result, err := analyzer.Analyze(ctx, in)
		return auditDoneMsg{ticket: ticket, result: result, err: err}
	}
}

func (m Model) tickStep() tea.Cmd {
	ticket := m.ticket
	return tea.Tick(m.opts.StepInterval, func(time.Time) tea.Msg {
		return stepTickMsg{ticket: ticket}
	})
}

func (m Model) handleAuditDone(msg auditDoneMsg) (tea.Model, tea.Cmd) {
	var err error
	if msg.err != nil {
		err = m.machine.Fail(msg.ticket, msg.err)
	} else {
		err = m.machine.Succeed(msg.ticket, msg.result)
	}
	if err != nil {
		// Outcome of a submission abandoned by reset.
		return m, nil
	}
	m.cancelAudit()
	if msg.err != nil {
		m.urlInput.Focus()
		return m, textinput.Blink
	}
	m.auditID = msg.auditID
	snap := m.machine.Snapshot()
	m.viewport.SetContent(m.renderMarkdown(report.Teaser(snap.Input.WebsiteURL, *snap.Result)))
	m.viewport.GotoTop()
	m.emailInput.Reset()
	m.emailInput.Focus()
	return m, textinput.Blink
}

func (m Model) unlock() (tea.Model, tea.Cmd) {
	email, err := m.machine.Unlock(m.emailInput.Value())
	if err != nil {
		m.flash = userFacing(err)
		return m, nil
	}
	m.flash = ""
	m.emailInput.Blur()
	snap := m.machine.Snapshot()
	m.viewport.SetContent(m.renderMarkdown(report.Markdown(snap.Input.WebsiteURL, *snap.Result)))
	m.viewport.GotoTop()

	if m.opts.Leads == nil {
		return m, nil
	}
	lead := leads.Lead{Email: email, WebsiteURL: snap.Input.WebsiteURL, AuditID: m.auditID}
	capturer := m.opts.Leads
	ctx := m.base
	return m, func() tea.Msg {
		_, err := capturer.Capture(ctx, lead)
		return leadDoneMsg{email: email, err: err}
	}
}

func (m Model) save(snap session.Snapshot) tea.Cmd {
	if snap.Result == nil || snap.Input == nil {
		return nil
	}
	path := filepath.Join(m.opts.SaveDir, report.FileName(snap.Input.WebsiteURL, report.FormatMarkdown.Ext()))
	websiteURL := snap.Input.WebsiteURL
	result := *snap.Result
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return savedMsg{err: err}
		}
		if err := report.Encode(f, report.FormatMarkdown, websiteURL, result); err != nil {
			_ = f.Close()
			return savedMsg{err: err}
		}
		return savedMsg{path: path, err: f.Close()}
	}
}

func (m Model) reset() (tea.Model, tea.Cmd) {
	m.cancelAudit()
	m.machine.Reset()
	m.ticket = 0
	m.step = 0
	m.auditID = ""
	m.flash = ""
	m.status = ""
	m.urlInput.Reset()
	m.emailInput.Reset()
	m.emailInput.Blur()
	m.viewport.SetContent("")
	m.urlInput.Focus()
	return m, textinput.Blink
}

func (m *Model) cancelAudit() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	m.width, m.height = w, h
	m.viewport.Width = w
	m.viewport.Height = max(h-chromeRows, 3)
}

func (m Model) renderMarkdown(md string) string {
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// View renders the current phase.
func (m Model) View() string {
	snap := m.machine.Snapshot()
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Content Maturity Audit"))
	b.WriteString("\n")

	switch snap.Phase {
	case session.PhaseInput:
		if snap.Banner != nil {
			body := m.styles.BannerTitle.Render(snap.Banner.Title) + "\n" + snap.Banner.Message
			if snap.Banner.Detail != "" {
				body += "\n" + m.styles.Subtle.Render(snap.Banner.Detail)
			}
			b.WriteString(m.styles.Banner.Render(body))
			b.WriteString("\n\n")
		}
		b.WriteString("Website URL\n")
		b.WriteString(m.urlInput.View())
		b.WriteString("\n")
		if m.flash != "" {
			b.WriteString(m.styles.Error.Render(m.flash))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("enter analyze • esc dismiss • ctrl+c quit"))

	case session.PhaseProcessing:
		fmt.Fprintf(&b, "%s Analyzing %s\n\n", m.spinner.View(), snap.Input.WebsiteURL)
		for i, label := range progress.Steps {
			switch {
			case i < m.step:
				b.WriteString(m.styles.StepDone.Render("✓ " + label))
			case i == m.step:
				b.WriteString(m.styles.StepActive.Render("› " + label))
			default:
				b.WriteString(m.styles.StepPending.Render("  " + label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.styles.Subtle.Render("esc cancel • ctrl+c quit"))

	case session.PhaseResults:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		if !snap.Unlocked {
			gate := "Enter your email to unlock the full report\n" + m.emailInput.View()
			if m.flash != "" {
				gate += "\n" + m.styles.Error.Render(m.flash)
			}
			b.WriteString(m.styles.Gate.Render(gate))
			b.WriteString("\n")
			b.WriteString(m.styles.Subtle.Render("enter unlock • ctrl+r new audit • ctrl+c quit"))
		} else {
			b.WriteString(m.styles.Subtle.Render("↑/↓ scroll • s save • r new audit • ctrl+c quit"))
		}
		if m.status != "" {
			b.WriteString("\n")
			b.WriteString(m.styles.Status.Render(m.status))
		}
	}
	return b.String()
}

// userFacing strips the kind prefix from typed errors.
func userFacing(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i > 0 && strings.ToUpper(msg[:i]) == msg[:i] && !strings.Contains(msg[:i], " ") {
		return msg[i+2:]
	}
	return strings.TrimPrefix(msg, "session: ")
}
