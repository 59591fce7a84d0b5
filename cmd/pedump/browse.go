package main

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/veilmont/pedump/pe"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <file>",
		Short: "Browse decoded headers in an interactive terminal UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(args[0])
		},
	}
}

func runBrowse(path string) error {
	headers, err := decodeFile(path)
	if err != nil {
		return err
	}

	m := newBrowseModel(path, headers)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

type browseSection struct {
	title   string
	content string
}

type browseModel struct {
	path     string
	sections []browseSection
	selected int
	vp       viewport.Model
	ready    bool
}

func newBrowseModel(path string, h *pe.Headers) *browseModel {
	var file, optional, dirs bytes.Buffer

	_ = pe.DumpFileHeader(&file, &h.File)
	_ = pe.DumpOptionalHeader(&optional, &h.Optional)
	fmt.Fprintf(&dirs, "Data Directories: %d\n", len(h.Optional.DataDirectories))
	for i, d := range h.Optional.DataDirectories {
		fmt.Fprintf(&dirs, "  [%2d] %-16s VA 0x%08x  Size 0x%08x\n",
			i, pe.DirectoryName(i), d.VirtualAddress, d.Size)
	}

	return &browseModel{
		path: path,
		sections: []browseSection{
			{title: "File Header", content: file.String()},
			{title: "Optional Header", content: optional.String()},
			{title: "Data Directories", content: dirs.String()},
		},
	}
}

func (m *browseModel) Init() tea.Cmd {
	return nil
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
				m.syncContent()
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.sections)-1 {
				m.selected++
				m.syncContent()
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		listWidth := 24
		vpWidth := msg.Width - listWidth - 6
		vpHeight := msg.Height - 5
		if vpWidth < 20 {
			vpWidth = 20
		}
		if vpHeight < 5 {
			vpHeight = 5
		}
		if !m.ready {
			m.vp = viewport.New(vpWidth, vpHeight)
			m.ready = true
			m.syncContent()
		} else {
			m.vp.Width = vpWidth
			m.vp.Height = vpHeight
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m *browseModel) syncContent() {
	if m.ready {
		m.vp.SetContent(m.sections[m.selected].content)
		m.vp.GotoTop()
	}
}

func (m *browseModel) View() string {
	if !m.ready {
		return "loading..."
	}

	var list string
	for i, s := range m.sections {
		if i == m.selected {
			list += selectedStyle.Render("> "+s.title) + "\n"
		} else {
			list += sectionStyle.Render("  "+s.title) + "\n"
		}
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(24).Render(list),
		paneStyle.Render(m.vp.View()),
	)

	return titleStyle.Render("pedump: "+m.path) + "\n" +
		body + "\n" +
		helpStyle.Render("↑/↓ select section · pgup/pgdn scroll · q quit")
}
