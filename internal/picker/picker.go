// Package picker is a small bubbletea list for choosing the bar to show.
package picker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bars/internal/model"
	"github.com/nikbrunner/bars/internal/search"
)

// Picker lists bars in order, marks the active one and lets the user pick one
// by cursor, by position or through a fuzzy filter.
type Picker struct {
	bars     []model.Bar
	activeID string
	visible  []search.Result
	cursor   int

	filter    textinput.Model
	filtering bool

	keys   KeyMap
	styles Styles

	selected  *model.Bar
	cancelled bool
}

// New creates a Picker with the cursor on the active bar.
func New(bars []model.Bar, activeID string) Picker {
	filter := textinput.New()
	filter.Placeholder = "Filter bars..."
	filter.Prompt = "/"
	filter.CharLimit = 64

	p := Picker{
		bars:     bars,
		activeID: activeID,
		filter:   filter,
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
	}
	p.refresh()
	for i, r := range p.visible {
		if r.Bar.ID == activeID {
			p.cursor = i
		}
	}
	return p
}

// refresh recomputes the visible bars from the filter text.
func (p *Picker) refresh() {
	query := p.filter.Value()
	if query == "" {
		p.visible = make([]search.Result, len(p.bars))
		for i, b := range p.bars {
			p.visible[i] = search.Result{Bar: b, Position: i + 1}
		}
	} else {
		p.visible = search.FindBars(p.bars, query)
	}
	if p.cursor >= len(p.visible) {
		p.cursor = max(len(p.visible)-1, 0)
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	if p.filtering {
		return p.updateFilter(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, p.keys.Cancel):
		p.cancelled = true
		return p, tea.Quit

	case key.Matches(keyMsg, p.keys.Select):
		return p.choose(p.cursor)

	case key.Matches(keyMsg, p.keys.Direct):
		n, _ := strconv.Atoi(keyMsg.String())
		if n > len(p.bars) {
			return p, nil
		}
		bar := p.bars[n-1]
		p.selected = &bar
		return p, tea.Quit

	case key.Matches(keyMsg, p.keys.Filter):
		p.filtering = true
		cmd := p.filter.Focus()
		return p, cmd

	case key.Matches(keyMsg, p.keys.Down):
		if p.cursor < len(p.visible)-1 {
			p.cursor++
		}

	case key.Matches(keyMsg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	}
	return p, nil
}

func (p Picker) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		p.filtering = false
		p.filter.Blur()
		p.filter.SetValue("")
		p.refresh()
		return p, nil
	case tea.KeyEnter:
		return p.choose(p.cursor)
	case tea.KeyCtrlC:
		p.cancelled = true
		return p, tea.Quit
	case tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case tea.KeyDown:
		if p.cursor < len(p.visible)-1 {
			p.cursor++
		}
		return p, nil
	}

	var cmd tea.Cmd
	p.filter, cmd = p.filter.Update(msg)
	p.cursor = 0
	p.refresh()
	return p, cmd
}

func (p Picker) choose(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= len(p.visible) {
		return p, nil
	}
	bar := p.visible[i].Bar
	p.selected = &bar
	return p, tea.Quit
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(p.styles.Header.Render(fmt.Sprintf("Bars (%d)", len(p.bars))))
	b.WriteString("\n")

	if p.filtering || p.filter.Value() != "" {
		b.WriteString(p.filter.View())
		b.WriteString("\n\n")
	}

	if len(p.visible) == 0 {
		b.WriteString(p.styles.Empty.Render("  no matching bars"))
		b.WriteString("\n")
	}

	for i, r := range p.visible {
		marker := "  "
		if r.Bar.ID == p.activeID {
			marker = p.styles.Active.Render("* ")
		}
		pos := p.styles.Position.Render(fmt.Sprintf("%d.", r.Position))
		line := fmt.Sprintf("%s %s", pos, r.Bar.Title)
		if i == p.cursor {
			line = p.styles.ItemSelected.Render(line)
		} else {
			line = p.styles.Item.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	b.WriteString("\n")
	var hints []string
	for _, binding := range p.keys.ShortHelp() {
		h := binding.Help()
		hints = append(hints, p.styles.HintKey.Render(h.Key)+" "+p.styles.HintDesc.Render(h.Desc))
	}
	b.WriteString(strings.Join(hints, "  "))

	return b.String()
}

// Selected returns the chosen bar, or false if the picker was cancelled.
func (p Picker) Selected() (model.Bar, bool) {
	if p.cancelled || p.selected == nil {
		return model.Bar{}, false
	}
	return *p.selected, true
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
