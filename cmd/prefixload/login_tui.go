package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// View states
type viewState int

const (
	accessKeyView viewState = iota
	secretKeyView
)

// Strings
const (
	txtAccessPlaceholder = "AKIA..."
	txtSecretPlaceholder = "••••••••"
	txtAccessPrompt      = "Enter your access key ID"
	txtSecretPrompt      = "Enter the secret access key for %s"
	txtVerifying         = "Verifying bucket access..."
	txtInvalidKey        = "Invalid key"
	txtHelp              = "Press 'Enter' to submit. 'Esc' to go back/quit. 'Ctrl+C' to quit."
)

// Styles
var (
	focusedStyle     = green
	helpStyle        = gray
	errorTextStyle   = red
	errorHeaderStyle = red.Bold(true)
	spinnerStyle     = cyan
	placeholderStyle = gray
	titleStyle       = cyan.Bold(true)
)

type LoginTUIOpts struct {
	Endpoint      string
	Bucket        string
	Note          string // optional note to display to the user
	KeyValidator  func(s string) bool
	SubmitHandler func(accessKey, secretKey string) error
}

// loginModel holds the TUI state.
type loginModel struct {
	opts *LoginTUIOpts

	accessInput textinput.Model
	secretInput textinput.Model
	spinner     spinner.Model

	currentView viewState

	isLoading    bool
	errorMessage string
	message      string
	width        int

	submittedKey string
	done         bool
}

type credsProcessedMsg struct{ err error }

func newLoginModel(opts *LoginTUIOpts) loginModel {
	access := textinput.New()
	access.Placeholder = txtAccessPlaceholder
	access.Focus()
	access.CharLimit = 128
	access.Width = 64
	access.PromptStyle = focusedStyle
	access.TextStyle = focusedStyle
	access.PlaceholderStyle = placeholderStyle

	secret := textinput.New()
	secret.Placeholder = txtSecretPlaceholder
	secret.CharLimit = 128
	secret.Width = 64
	secret.EchoMode = textinput.EchoPassword
	secret.EchoCharacter = '•'
	secret.PromptStyle = focusedStyle
	secret.TextStyle = focusedStyle
	secret.PlaceholderStyle = placeholderStyle

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return loginModel{
		opts:        opts,
		currentView: accessKeyView,
		accessInput: access,
		secretInput: secret,
		spinner:     s,
	}
}

func (m loginModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.accessInput.Focused() {
			m.errorMessage = ""
			m.accessInput, cmd = m.accessInput.Update(msg)
			cmds = append(cmds, cmd)
		} else if m.secretInput.Focused() {
			m.errorMessage = ""
			m.secretInput, cmd = m.secretInput.Update(msg)
			cmds = append(cmds, cmd)
		}

		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit

		case tea.KeyEsc:
			return m.handleEscapeKey()

		case tea.KeyEnter:
			if m.isLoading {
				return m, nil
			}

			switch m.currentView {
			case accessKeyView:
				return m.submitAccessKey()

			case secretKeyView:
				return m.submitSecretKey()
			}
		}

	case spinner.TickMsg:
		var spinnerCmd tea.Cmd
		m.spinner, spinnerCmd = m.spinner.Update(msg)
		cmds = append(cmds, spinnerCmd)

	case credsProcessedMsg:
		return m.handleCredsMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, tea.Batch(cmds...)
}

func (m loginModel) handleEscapeKey() (tea.Model, tea.Cmd) {
	if m.currentView == secretKeyView {
		m.currentView = accessKeyView
		m.secretInput.Blur()
		m.accessInput.Focus()
		m.errorMessage = ""
		return m, textinput.Blink
	}
	return m, tea.Quit
}

func (m loginModel) submitAccessKey() (tea.Model, tea.Cmd) {
	keyVal := strings.TrimSpace(m.accessInput.Value())
	if !m.opts.KeyValidator(keyVal) {
		m.errorMessage = txtInvalidKey
		return m, nil
	}

	m.errorMessage = ""
	m.submittedKey = keyVal
	m.currentView = secretKeyView
	m.accessInput.Blur()
	m.secretInput.Focus()

	return m, textinput.Blink
}

func (m loginModel) submitSecretKey() (tea.Model, tea.Cmd) {
	secretVal := strings.TrimSpace(m.secretInput.Value())
	if !m.opts.KeyValidator(secretVal) {
		m.errorMessage = txtInvalidKey
		return m, nil
	}

	m.errorMessage = ""
	m.isLoading = true
	m.message = txtVerifying
	m.secretInput.Blur()

	return m, func() tea.Msg {
		err := m.opts.SubmitHandler(m.submittedKey, secretVal)
		return credsProcessedMsg{err: err}
	}
}

func (m loginModel) handleCredsMsg(msg credsProcessedMsg) (tea.Model, tea.Cmd) {
	m.isLoading = false

	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("%s %s", errorHeaderStyle.Render("ERROR:"), msg.err.Error())
		m.secretInput.Focus()
		return m, textinput.Blink
	}

	m.done = true
	return m, tea.Quit
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Prefixload Login"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("Endpoint  "), green.Render(m.opts.Endpoint)))
	b.WriteString(fmt.Sprintf("%s%s\n", gray.Render("Bucket    "), green.Render(m.opts.Bucket)))
	if m.opts.Note != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", yellow.Render(m.opts.Note)))
	}
	b.WriteString("\n")

	switch m.currentView {
	case accessKeyView:
		m.renderAccessView(&b)
	case secretKeyView:
		m.renderSecretView(&b)
	}
	m.renderLoadingView(&b)
	m.renderErrorView(&b)
	m.renderHelpView(&b)
	b.WriteString("\n")
	return b.String()
}

func (m loginModel) renderAccessView(b *strings.Builder) {
	b.WriteString(txtAccessPrompt)
	b.WriteString("\n\n")
	b.WriteString(m.accessInput.View())
}

func (m loginModel) renderSecretView(b *strings.Builder) {
	b.WriteString(fmt.Sprintf(txtSecretPrompt, green.Render(m.submittedKey)))
	b.WriteString("\n\n")
	b.WriteString(m.secretInput.View())
}

func (m loginModel) renderLoadingView(b *strings.Builder) {
	if m.isLoading {
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
	}
}

func (m loginModel) renderErrorView(b *strings.Builder) {
	if m.errorMessage != "" {
		b.WriteString("\n\n")
		b.WriteString(errorTextStyle.Render(m.errorMessage))
	}
}

func (m loginModel) renderHelpView(b *strings.Builder) {
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(txtHelp))
}

// RunLoginTUI starts the interactive credential prompt and blocks until it
// finishes or the user quits.
func RunLoginTUI(opts LoginTUIOpts) error {
	model, err := tea.NewProgram(newLoginModel(&opts), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("login prompt failed: %w", err)
	}

	if fm, ok := model.(loginModel); ok {
		if fm.errorMessage != "" {
			return fmt.Errorf("login interrupted: %s", fm.errorMessage)
		}
		if !fm.done {
			return fmt.Errorf("login cancelled by user")
		}
	}

	return nil
}
