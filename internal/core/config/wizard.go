package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const asciiArt = `
 ███████╗██████╗  █████╗ ███╗   ███╗███████╗ ██████╗ ██████╗  █████╗ ██████╗
 ██╔════╝██╔══██╗██╔══██╗████╗ ████║██╔════╝██╔════╝ ██╔══██╗██╔══██╗██╔══██╗
 █████╗  ██████╔╝███████║██╔████╔██║█████╗  ██║  ███╗██████╔╝███████║██████╔╝
 ██╔══╝  ██╔══██╗██╔══██║██║╚██╔╝██║██╔══╝  ██║   ██║██╔══██╗██╔══██║██╔══██╗
 ██║     ██║  ██║██║  ██║██║ ╚═╝ ██║███████╗╚██████╔╝██║  ██║██║  ██║██████╔╝
 ╚═╝     ╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═╝╚═════╝
`

var (
	logoStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	titleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	stepStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	unselectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("248")).Width(16)
	valueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	containerStyle  = lipgloss.NewStyle().Padding(2, 4)
)

// Wizard steps, in order.
const (
	stepDataDir = iota
	stepMaxDuration
	stepCleanupAge
	stepConfirm
	stepCount
)

type option struct {
	label string
	value int
}

var maxDurationOptions = []option{
	{"15 minutes", 900},
	{"1 hour", 3600},
	{"2 hours", 7200},
	{"4 hours", 14400},
}

var cleanupAgeOptions = []option{
	{"6 hours", 6},
	{"24 hours", 24},
	{"3 days", 72},
	{"1 week", 168},
}

type wizardModel struct {
	currentStep int
	cursor      int
	config      *Config
	confirmed   bool
	cancelled   bool
	inputBuffer string
}

func initialWizardModel(cfg *Config) wizardModel {
	return wizardModel{
		config:      cfg,
		inputBuffer: baseDir(cfg),
	}
}

// baseDir guesses the common parent of the three scratch dirs so the wizard
// shows one path instead of three.
func baseDir(cfg *Config) string {
	if cfg.DownloadDir != "" && filepath.Base(cfg.DownloadDir) == "downloads" {
		return filepath.Dir(cfg.DownloadDir)
	}
	return DefaultDataDir()
}

func (m *wizardModel) stepTitle() string {
	switch m.currentStep {
	case stepDataDir:
		return "Data directory"
	case stepMaxDuration:
		return "Maximum video duration"
	case stepCleanupAge:
		return "Scratch file retention"
	case stepConfirm:
		return "Confirm"
	}
	return ""
}

func (m *wizardModel) stepDescription() string {
	switch m.currentStep {
	case stepDataDir:
		return "Downloads, extracted frames, and rendered clips live under this directory."
	case stepMaxDuration:
		return "Videos longer than this are refused before download."
	case stepCleanupAge:
		return "Files older than this are removed by cleanup sweeps."
	case stepConfirm:
		return "Review and save."
	}
	return ""
}

func (m *wizardModel) options() []option {
	switch m.currentStep {
	case stepMaxDuration:
		return maxDurationOptions
	case stepCleanupAge:
		return cleanupAgeOptions
	}
	return nil
}

func (m *wizardModel) applyStep() {
	switch m.currentStep {
	case stepDataDir:
		base := strings.TrimSpace(m.inputBuffer)
		if base == "" {
			base = DefaultDataDir()
		}
		m.config.DownloadDir = filepath.Join(base, "downloads")
		m.config.FramesDir = filepath.Join(base, "extracted_frames")
		m.config.ShortsDir = filepath.Join(base, "generated_shorts")
	case stepMaxDuration:
		m.config.MaxVideoDuration = maxDurationOptions[m.cursor].value
	case stepCleanupAge:
		m.config.CleanupAgeHours = cleanupAgeOptions[m.cursor].value
	}
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit

	case "enter":
		if m.currentStep == stepConfirm {
			m.confirmed = true
			return m, tea.Quit
		}
		m.applyStep()
		m.currentStep++
		m.cursor = 0
		return m, nil

	case "up", "k":
		if len(m.options()) > 0 && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "j":
		if opts := m.options(); len(opts) > 0 && m.cursor < len(opts)-1 {
			m.cursor++
		}
		return m, nil

	case "backspace":
		if m.currentStep == stepDataDir && len(m.inputBuffer) > 0 {
			m.inputBuffer = m.inputBuffer[:len(m.inputBuffer)-1]
		}
		return m, nil

	default:
		if m.currentStep == stepDataDir && len(keyMsg.Runes) > 0 {
			m.inputBuffer += string(keyMsg.Runes)
		}
		return m, nil
	}
}

func (m wizardModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(logoStyle.Render(asciiArt))
	b.WriteString("\n")
	b.WriteString(stepStyle.Render(fmt.Sprintf("Step %d/%d", m.currentStep+1, stepCount)))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render(m.stepTitle()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.stepDescription()))
	b.WriteString("\n\n")

	switch {
	case m.currentStep == stepDataDir:
		b.WriteString(inputStyle.Render("> " + m.inputBuffer))
		b.WriteString(cursorStyle.Render("█"))
		b.WriteString("\n")

	case m.currentStep == stepConfirm:
		rows := []struct{ label, value string }{
			{"Downloads", m.config.DownloadDir},
			{"Frames", m.config.FramesDir},
			{"Shorts", m.config.ShortsDir},
			{"Max duration", strconv.Itoa(m.config.MaxVideoDuration) + "s"},
			{"Retention", strconv.Itoa(m.config.CleanupAgeHours) + "h"},
		}
		for _, row := range rows {
			b.WriteString(labelStyle.Render(row.label))
			b.WriteString(valueStyle.Render(row.value))
			b.WriteString("\n")
		}

	default:
		for i, opt := range m.options() {
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> "))
				b.WriteString(selectedStyle.Render(opt.label))
			} else {
				b.WriteString("  ")
				b.WriteString(unselectedStyle.Render(opt.label))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: next • esc: cancel"))
	return containerStyle.Render(b.String())
}

// RunInitWizard walks the user through initial configuration, starting from
// the existing config when one is present.
func RunInitWizard() (*Config, error) {
	cfg := LoadOrDefault()

	m := initialWizardModel(cfg)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}

	result := final.(wizardModel)
	if result.cancelled {
		return nil, fmt.Errorf("cancelled")
	}
	return result.config, nil
}
