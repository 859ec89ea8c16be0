package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"memsim/pkg/memory"
	"memsim/pkg/primitives"
	"memsim/pkg/process"
	"memsim/pkg/ui/base"
)

// RenderPage draws the window of p as a bordered hex grid, PageDim bytes per
// row. Zero bytes are muted, payload bytes highlighted, and the slots of the
// highlighted pids are drawn inverted.
func RenderPage(p *memory.Page, dim int, highlight ...primitives.PID) string {
	data, err := p.Snapshot()
	if err != nil {
		return RenderError(err)
	}

	selected := make(map[int]bool)
	for _, pid := range highlight {
		if off, ok := p.Offset(pid); ok {
			for i := int(off); i < int(off)+process.Size; i++ {
				selected[i] = true
			}
		}
	}

	var rows []string
	for start := 0; start < len(data); start += dim {
		end := min(start+dim, len(data))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, byteCell(data[i], selected[i]))
		}
		rows = append(rows, strings.Join(cells, " "))
	}

	header := HeaderStyle.Render(fmt.Sprintf("Page %d", p.ID())) +
		ValueStyle.Render(fmt.Sprintf("  %d/%d processes  @%#04x", p.Occupancy(), p.Capacity(), uint32(p.Start())))

	return lipgloss.JoinVertical(lipgloss.Left, header, BoxStyle.Render(strings.Join(rows, "\n")))
}

func byteCell(b byte, selected bool) string {
	cell := fmt.Sprintf("%02X", b)
	switch {
	case selected:
		return selectedByteStyle.Render(cell)
	case b == 0:
		return zeroByteStyle.Render(cell)
	default:
		return payloadByteStyle.Render(cell)
	}
}

// RenderProcess draws a process as a bordered box, two rows of bytes.
func RenderProcess(p *process.Process) string {
	title := LabelStyle.Render(fmt.Sprintf("Process PID %5d", p.PID))

	rows := p.Hex(process.Size / 2)
	for i, row := range rows {
		rows[i] = processByteStyle.Render(row)
	}

	return ProcessBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")))
}

// RenderProcessTable lists the pid → offset table of a page in offset order.
// The row at cursor is drawn selected; pass -1 for no selection.
func RenderProcessTable(p *memory.Page, cursor int) string {
	pids := p.PIDs()
	if len(pids) == 0 {
		return StatusStyle.Render("no processes loaded")
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(base.PadString("PID", 8)+base.PadString("OFFSET", 8)+"SLOT") + "\n")
	for i, pid := range pids {
		off, _ := p.Offset(pid)
		line := base.PadString(fmt.Sprintf("%d", pid), 8) +
			base.PadString(fmt.Sprintf("%d", off), 8) +
			fmt.Sprintf("%d", int(off)/process.Size)
		if i == cursor {
			b.WriteString(SelectedItemStyle.Render(line))
		} else {
			b.WriteString(ItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderSummary shows per-page occupancy gauges, the number of processes in
// RAM and the RAM usage signal.
func RenderSummary(ram *memory.RAM, pages []*memory.Page) string {
	var lines []string
	for _, p := range pages {
		gauge := base.Bar(p.Occupancy(), p.Capacity(), p.Capacity()*2)
		lines = append(lines, fmt.Sprintf("%s %s %d/%d",
			LabelStyle.Render(fmt.Sprintf("Page %d", p.ID())),
			payloadByteStyle.Render(gauge),
			p.Occupancy(), p.Capacity()))
	}

	lines = append(lines,
		LabelStyle.Render("Processes in RAM:")+" "+ValueStyle.Render(fmt.Sprintf("%d", memory.TotalOccupancy(pages))),
		LabelStyle.Render("RAM usage:")+" "+ValueStyle.Render(fmt.Sprintf("%.1f%% of %d bytes", ram.Usage()*100, ram.Size())),
	)
	return strings.Join(lines, "\n")
}

// RenderError renders an error message with instructions to quit
func RenderError(err error) string {
	return ErrorStyle.Render("Error: " + err.Error())
}

// RenderStatusBar renders a status bar with the given text
func RenderStatusBar(text string) string {
	return StatusBarStyle.Render(text)
}

// RenderTitle renders a title with an icon
func RenderTitle(icon, title string) string {
	return TitleStyle.Render(icon + "  " + title)
}

// RenderStatus renders a dim, italic progress line.
func RenderStatus(msg string) string {
	return StatusStyle.Render(msg)
}
