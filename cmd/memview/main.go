// Command memview is an interactive inspector for the paged memory model.
// It shows one page at a time as a hex grid next to its pid table and lets
// the user load and unload processes.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"memsim/pkg/config"
	"memsim/pkg/logging"
	"memsim/pkg/memory"
	"memsim/pkg/primitives"
	"memsim/pkg/process"
	"memsim/pkg/ui"
)

// chromeHeight is the number of lines taken by title, tabs, status bar and
// help around the viewport.
const chromeHeight = 8

type viewModel struct {
	ram     *memory.RAM
	pages   []*memory.Page
	spawner *process.Spawner
	dim     int

	current  int // index into pages
	cursor   int // index into the current page's PIDs
	viewport viewport.Model
	help     help.Model
	ready    bool
	width    int
	height   int

	status string
	err    error
}

func newViewModel(cfg config.Config) (viewModel, error) {
	ram, err := memory.NewRAM(cfg.Geometry())
	if err != nil {
		return viewModel{}, err
	}

	pages, err := memory.CarvePages(ram)
	if err != nil {
		return viewModel{}, err
	}

	src := process.DefaultSource()
	if cfg.Seed != 0 {
		src = process.NewSeededSource(cfg.Seed)
	}

	m := viewModel{
		ram:     ram,
		pages:   pages,
		spawner: process.NewSpawner(src, process.DefaultWorkers),
		dim:     cfg.PageDim,
		help:    help.New(),
		status:  "ready",
	}

	if cfg.ProcessesPerPage > 0 {
		if err := m.preload(cfg.ProcessesPerPage); err != nil {
			return viewModel{}, err
		}
	}
	return m, nil
}

func (m viewModel) preload(perPage int) error {
	for _, page := range m.pages {
		procs, err := m.spawner.Spawn(context.Background(), perPage)
		if err != nil {
			return err
		}
		for _, proc := range procs {
			if err := page.Load(proc); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) page() *memory.Page {
	return m.pages[m.current]
}

// selected returns the pid under the cursor, if the page has any.
func (m viewModel) selected() (primitives.PID, bool) {
	pids := m.page().PIDs()
	if m.cursor < 0 || m.cursor >= len(pids) {
		return 0, false
	}
	return pids[m.cursor], true
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.viewport = viewport.New(msg.Width, max(1, msg.Height-chromeHeight))
		m.viewport.SetContent(m.renderBody())
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, ui.Keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, ui.Keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, ui.Keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, ui.Keys.Down):
			if m.cursor < m.page().Occupancy()-1 {
				m.cursor++
			}
		case key.Matches(msg, ui.Keys.NextPage):
			if m.current < len(m.pages)-1 {
				m.current++
				m.cursor = 0
			}
		case key.Matches(msg, ui.Keys.PrevPage):
			if m.current > 0 {
				m.current--
				m.cursor = 0
			}
		case key.Matches(msg, ui.Keys.Load):
			m = m.load(false)
		case key.Matches(msg, ui.Keys.LoadFit):
			m = m.load(true)
		case key.Matches(msg, ui.Keys.Unload):
			m = m.unload()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if m.ready {
			m.viewport.SetContent(m.renderBody())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// load spawns one process and places it into the current page, or into the
// first page with room when firstFit is set.
func (m viewModel) load(firstFit bool) viewModel {
	procs, err := m.spawner.Spawn(context.Background(), 1)
	if err != nil {
		m.err = err
		return m
	}
	proc := procs[0]

	target := m.page()
	if firstFit {
		target, err = memory.LoadFirstFit(m.pages, proc)
	} else {
		err = target.Load(proc)
	}
	if err != nil {
		logging.WithError(err).Warn("load failed", "pid", proc.PID, "first_fit", firstFit)
		m.spawner.Release(proc.PID)
		m.err = err
		return m
	}

	for i, p := range m.pages {
		if p == target {
			m.current = i
		}
	}
	m.cursor = m.page().Occupancy() - 1
	m.err = nil
	m.status = fmt.Sprintf("loaded pid %d into page %d", proc.PID, target.ID())
	return m
}

func (m viewModel) unload() viewModel {
	pid, ok := m.selected()
	if !ok {
		m.status = "nothing to unload"
		return m
	}

	proc, err := m.page().Unload(pid)
	if err != nil {
		logging.WithError(err).Warn("unload failed", "pid", pid)
		m.err = err
		return m
	}
	m.spawner.Release(pid)

	if m.cursor >= m.page().Occupancy() {
		m.cursor = max(0, m.page().Occupancy()-1)
	}
	m.err = nil
	m.status = fmt.Sprintf("unloaded pid %d (%s)", pid, blankNote(proc))
	return m
}

func blankNote(proc *process.Process) string {
	if proc.IsBlank() {
		return "slot was blank"
	}
	return fmt.Sprintf("%d bytes", process.Size)
}

func (m viewModel) View() string {
	var b strings.Builder

	b.WriteString(ui.RenderTitle("▦", "Memory Inspector") + "\n")
	b.WriteString(m.renderTabs() + "\n\n")

	if m.ready {
		b.WriteString(m.viewport.View())
	} else {
		b.WriteString(m.renderBody())
	}

	b.WriteString("\n" + m.renderStatusBar())
	if m.err != nil {
		b.WriteString("\n" + ui.RenderError(m.err))
	}
	b.WriteString("\n" + ui.HelpStyle.Render(m.help.View(ui.Keys)))

	return b.String()
}

func (m viewModel) renderTabs() string {
	tabs := make([]string, 0, len(m.pages))
	for i, p := range m.pages {
		label := fmt.Sprintf("Page %d %d/%d", p.ID(), p.Occupancy(), p.Capacity())
		if i == m.current {
			tabs = append(tabs, ui.SelectedItemStyle.Render(label))
		} else {
			tabs = append(tabs, ui.ItemStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m viewModel) renderBody() string {
	var highlight []primitives.PID
	if pid, ok := m.selected(); ok {
		highlight = append(highlight, pid)
	}

	grid := ui.RenderPage(m.page(), m.dim, highlight...)
	table := ui.RenderProcessTable(m.page(), m.cursor)
	body := lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", table)

	if pid, ok := m.selected(); ok {
		if off, ok := m.page().Offset(pid); ok {
			data, err := m.page().Snapshot()
			if err == nil {
				slot := data[int(off) : int(off)+process.Size]
				if proc, err := process.FromBytes(pid, slot); err == nil {
					body = lipgloss.JoinVertical(lipgloss.Left, body, ui.RenderProcess(proc))
				}
			}
		}
	}
	return body
}

func (m viewModel) renderStatusBar() string {
	usage := fmt.Sprintf("%.1f%%", m.ram.Usage()*100)
	status := fmt.Sprintf(" Page %d/%d | Processes: %d | RAM: %s of %d bytes | %s ",
		m.current+1, len(m.pages),
		memory.TotalOccupancy(m.pages),
		usage, m.ram.Size(),
		m.status)
	return ui.RenderStatusBar(status)
}

func loadConfig(path string, seed uint64) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file")
	seed := flag.Uint64("seed", 0, "Seed for process generation, 0 for random")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *seed)
	if err != nil {
		fmt.Println(ui.RenderError(err))
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs only go to a file if one is set.
	if cfg.LogPath != "" {
		err = logging.Init(cfg.Logging())
	} else {
		err = logging.InitWithWriter(io.Discard, cfg.Logging())
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	m, err := newViewModel(cfg)
	if err != nil {
		fmt.Println(ui.RenderError(err))
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
