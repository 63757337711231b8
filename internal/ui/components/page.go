package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/boxoffice-tui/internal/ui/styles"
)

// Page is the scrollable body of a card-based tab. Tabs embed it to get
// SetSize, scrolling and a loading spinner.
type Page struct {
	viewport viewport.Model
	spinner  LoadingSpinner
	width    int
	height   int
}

// NewPage creates a page whose spinner reads loading.
func NewPage(loading string) Page {
	vp := viewport.New(0, 0)
	// h, l, left and right switch tabs.
	vp.KeyMap.Left.SetEnabled(false)
	vp.KeyMap.Right.SetEnabled(false)
	vp.KeyMap.PageDown.SetKeys("pgdown")
	vp.KeyMap.PageUp.SetKeys("pgup")

	return Page{viewport: vp, spinner: NewSpinner(loading)}
}

// Init starts the spinner.
func (p *Page) Init() tea.Cmd {
	return p.spinner.Init()
}

func (p *Page) SetSize(width, height int) {
	p.width, p.height = width, height
	p.viewport.Width, p.viewport.Height = width, height
}

func (p *Page) Width() int  { return p.width }
func (p *Page) Height() int { return p.height }

// CardWidth is the width cards on this page should use.
func (p *Page) CardWidth() int { return CardWidth(p.width) }

// Update advances the spinner and scrolls on keys and the mouse wheel.
func (p *Page) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch msg.(type) {
	case spinner.TickMsg:
		p.spinner, cmd = p.spinner.Update(msg)
	case tea.KeyMsg, tea.MouseMsg:
		p.viewport, cmd = p.viewport.Update(msg)
	}
	return cmd
}

// ScrollKeys returns the bindings that move the page.
func (p *Page) ScrollKeys() []key.Binding {
	km := p.viewport.KeyMap
	return []key.Binding{km.Up, km.Down, km.HalfPageUp, km.HalfPageDown}
}

// Loading renders the spinner centered on the whole page.
func (p *Page) Loading() string {
	return RenderSpinnerCentered(p.spinner, p.width, p.height)
}

// LoadingCard renders the spinner in a short box the width of a card.
func (p *Page) LoadingCard() string {
	return RenderSpinnerCentered(p.spinner, p.CardWidth(), 5)
}

// Render shows content through the viewport inside the document margins.
func (p *Page) Render(content string) string {
	p.viewport.SetContent(content)
	return styles.DocStyle.
		Width(p.width).
		Height(p.height).
		Render(p.viewport.View())
}
