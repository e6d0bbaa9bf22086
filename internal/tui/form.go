// Package tui implements the terminal registration form.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/enroll/enroll/internal/client"
	"github.com/enroll/enroll/internal/validation"
)

// SubmitTimeout bounds one registration request.
const SubmitTimeout = 15 * time.Second

// GenericError is shown when the server gave no usable message.
const GenericError = "Registration failed. Please try again."

// State is the form's submission state.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	emailField = iota
	passwordField
	fieldCount
)

// Registrar submits registrations to the API.
type Registrar interface {
	Register(ctx context.Context, email, password string) (*client.RegisterResponse, error)
}

type registeredMsg struct {
	resp *client.RegisterResponse
}

type failedMsg struct {
	err error
}

// Model is the bubbletea model of the registration form.
type Model struct {
	api       Registrar
	validator *validation.Validator
	inputs    []textinput.Model
	focus     int
	state     State
	message   string
	quitting  bool
}

// New returns a form that submits through api.
func New(api Registrar) Model {
	inputs := make([]textinput.Model, fieldCount)

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.Width = 40
	email.Focus()
	inputs[emailField] = email

	password := textinput.New()
	password.Placeholder = "at least 8 characters, a letter and a number"
	password.CharLimit = 128
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	inputs[passwordField] = password

	return Model{
		api:       api,
		validator: validation.New(),
		inputs:    inputs,
	}
}

// State returns the current submission state.
func (m Model) State() State {
	return m.state
}

// Message returns the status line shown under the form.
func (m Model) Message() string {
	return m.message
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab", "down":
			cmd := m.moveFocus(1)
			return m, cmd
		case "shift+tab", "up":
			cmd := m.moveFocus(-1)
			return m, cmd
		case "enter":
			return m.submit()
		}

		if m.state == StateSubmitting {
			return m, nil
		}

	case registeredMsg:
		m.state = StateSuccess
		m.message = "Registration successful! Welcome " + msg.resp.User.Email
		m.reset()
		return m, nil

	case failedMsg:
		m.state = StateError
		m.message = errorMessage(msg.err)
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit validates the inputs and starts the request.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.state == StateSubmitting {
		return m, nil
	}

	email := strings.TrimSpace(m.inputs[emailField].Value())
	password := m.inputs[passwordField].Value()

	if err := m.validator.Email(email); err != nil {
		m.state = StateError
		m.message = err.Error()
		cmd := m.setFocus(emailField)
		return m, cmd
	}
	if err := validation.ValidatePassword(password); err != nil {
		m.state = StateError
		m.message = err.Error()
		cmd := m.setFocus(passwordField)
		return m, cmd
	}

	m.state = StateSubmitting
	m.message = "Registering..."

	api := m.api
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), SubmitTimeout)
		defer cancel()

		resp, err := api.Register(ctx, email, password)
		if err != nil {
			return failedMsg{err: err}
		}
		return registeredMsg{resp: resp}
	}
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	return m.setFocus((m.focus + delta + fieldCount) % fieldCount)
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

func (m *Model) reset() {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	m.setFocus(emailField)
}

func errorMessage(err error) string {
	var apiErr client.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Display(); msg != "" {
			return msg
		}
	}
	return GenericError
}

func (m Model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	labels := [fieldCount]string{"Email", "Password"}
	for i, label := range labels {
		style := LabelStyle
		if i == m.focus {
			style = FocusedLabelStyle
		}
		b.WriteString(style.Render(label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}

	switch m.state {
	case StateSubmitting:
		b.WriteString("\n" + MutedStyle.Render(m.message))
	case StateSuccess:
		b.WriteString("\n" + SuccessTextStyle.Render("✓ "+m.message))
	case StateError:
		b.WriteString("\n" + ErrorTextStyle.Render("✘ "+m.message))
	}

	header := HeaderStyle.Render(" ENROLL ") + "\n"
	subHeader := SubHeaderStyle.Render("Create an account") + "\n"
	footer := FooterStyle.Render("▸ Tab: next field • Enter: register • Esc: exit")

	return header + subHeader + CardStyle.Render(b.String()) + "\n" + footer + "\n"
}
