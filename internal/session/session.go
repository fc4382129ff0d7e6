// Package session models the phases of one interactive audit: entering a URL,
// waiting for the result and viewing it. Every change goes through one of the
// transition methods on Machine.
package session

import (
	"errors"
	"strings"
	"sync"

	"audit-backend/internal/audits"
)

// Phase is the current screen.
type Phase string

const (
	PhaseInput      Phase = "INPUT"
	PhaseProcessing Phase = "PROCESSING"
	PhaseResults    Phase = "RESULTS"
)

var (
	ErrInvalidTransition = errors.New("session: invalid transition")
	ErrStaleTicket       = errors.New("session: stale ticket")
	ErrInvalidEmail      = errors.New("session: please enter a valid email address")
)

// Ticket identifies one submission. Outcomes carrying an older ticket than the
// current one are dropped.
type Ticket uint64

// Banner is the error shown on the input screen after a failed audit.
type Banner struct {
	Class   audits.Classification
	Title   string
	Message string
	// Detail is the raw failure text, kept for diagnostics.
	Detail string
}

// NewBanner builds the banner for err.
func NewBanner(err error) Banner {
	class := audits.Classify(err)
	b := Banner{
		Class:   class,
		Title:   "Analysis Failed",
		Message: audits.UserMessage(class),
	}
	if err != nil {
		b.Detail = err.Error()
	}
	switch class {
	case audits.ClassQuota:
		b.Title = "System Capacity Reached"
		b.Message = audits.UserMessage(class) + " Please wait about 30 seconds and try again..."
	case audits.ClassAuth:
		b.Title = "Configuration Error"
	}
	return b
}

// Snapshot is a copy of the machine state.
type Snapshot struct {
	Phase    Phase
	Input    *audits.UserInput
	Result   *audits.AnalysisResult
	Banner   *Banner
	Email    string
	Unlocked bool
	Ticket   Ticket
}

// Machine is the single writer of session state. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	phase    Phase
	input    *audits.UserInput
	result   *audits.AnalysisResult
	banner   *Banner
	email    string
	unlocked bool
	ticket   Ticket
}

// New returns a machine in the input phase.
func New() *Machine {
	return &Machine{phase: PhaseInput}
}

// Submit moves INPUT to PROCESSING. It clears any previous banner.
func (m *Machine) Submit(raw string) (Ticket, audits.UserInput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseInput {
		return 0, audits.UserInput{}, ErrInvalidTransition
	}
	in, err := audits.NewUserInput(raw)
	if err != nil {
		return 0, audits.UserInput{}, err
	}
	m.ticket++
	m.phase = PhaseProcessing
	m.input = &in
	m.result = nil
	m.banner = nil
	m.email = ""
	m.unlocked = false
	return m.ticket, in, nil
}

// Succeed moves PROCESSING to RESULTS.
func (m *Machine) Succeed(t Ticket, result audits.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkTicket(t); err != nil {
		return err
	}
	m.phase = PhaseResults
	m.result = &result
	return nil
}

// Fail moves PROCESSING back to INPUT carrying a banner for err. The submitted
// input is kept so the form can be corrected.
func (m *Machine) Fail(t Ticket, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.checkTicket(t); e != nil {
		return e
	}
	b := NewBanner(err)
	m.phase = PhaseInput
	m.banner = &b
	m.result = nil
	return nil
}

// Reset returns to INPUT from any phase and clears input, result, banner and
// email. Any in-flight submission becomes stale.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticket++
	m.phase = PhaseInput
	m.input = nil
	m.result = nil
	m.banner = nil
	m.email = ""
	m.unlocked = false
}

// DismissError clears the banner without touching anything else.
func (m *Machine) DismissError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banner = nil
}

// Unlock records the email that opens the full report.
func (m *Machine) Unlock(email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseResults {
		return "", ErrInvalidTransition
	}
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	m.email = email
	m.unlocked = true
	return email, nil
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Snapshot{
		Phase:    m.phase,
		Email:    m.email,
		Unlocked: m.unlocked,
		Ticket:   m.ticket,
	}
	if m.input != nil {
		in := *m.input
		s.Input = &in
	}
	if m.result != nil {
		r := *m.result
		s.Result = &r
	}
	if m.banner != nil {
		b := *m.banner
		s.Banner = &b
	}
	return s
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Machine) checkTicket(t Ticket) error {
	if t != m.ticket {
		return ErrStaleTicket
	}
	if m.phase != PhaseProcessing {
		return ErrInvalidTransition
	}
	return nil
}
