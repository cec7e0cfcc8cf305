package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/pflag"

	"github.com/wippyai/igbinary/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	recursionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxScalarWidth bounds string previews in the tree.
const maxScalarWidth = 60

func runInspect(a *app, fs *pflag.FlagSet, f *flagValues) error {
	if !isTerminal(a.stdout) {
		return fmt.Errorf("inspect needs a terminal, use decode for piped output")
	}
	v, err := a.decodeInput(fs, f)
	if err != nil {
		return err
	}
	name := "<stdin>"
	if fs.NArg() == 1 && fs.Arg(0) != "-" {
		name = fs.Arg(0)
	}
	p := tea.NewProgram(newInspectModel(name, v), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// treeNode is one slot of the decoded value. Children are built on first
// expansion, so cyclic graphs stay finite.
type treeNode struct {
	val      value.Value
	parent   *treeNode
	label    string
	children []*treeNode
	depth    int
	ref      bool
	open     bool
	loaded   bool
}

func newTreeNode(parent *treeNode, label string, v value.Value) *treeNode {
	n := &treeNode{parent: parent, label: label}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	if r, ok := v.(*value.Ref); ok {
		n.ref = true
		v = r.Get()
	}
	n.val = value.Deref(v)
	return n
}

func identity(v value.Value) any {
	switch x := v.(type) {
	case *value.Array:
		return x.Identity()
	case *value.Object:
		return x
	}
	return nil
}

// recursive reports whether the node's composite already appears among its
// ancestors.
func (n *treeNode) recursive() bool {
	id := identity(n.val)
	if id == nil {
		return false
	}
	for p := n.parent; p != nil; p = p.parent {
		if identity(p.val) == id {
			return true
		}
	}
	return false
}

func (n *treeNode) expandable() bool {
	switch x := n.val.(type) {
	case *value.Array:
		return x.Len() > 0 && !n.recursive()
	case *value.Object:
		return (x.Len() > 0 || x.Serialized != nil) && !n.recursive()
	}
	return false
}

func (n *treeNode) load() {
	if n.loaded {
		return
	}
	n.loaded = true
	switch x := n.val.(type) {
	case *value.Array:
		for k, e := range x.All() {
			n.children = append(n.children, newTreeNode(n, arrayLabel(k), e))
		}
	case *value.Object:
		if x.Serialized != nil {
			n.children = append(n.children, newTreeNode(n, "@serialized", value.String(x.Serialized)))
		}
		for k, e := range x.All() {
			n.children = append(n.children, newTreeNode(n, propertyLabel(k), e))
		}
	}
}

func arrayLabel(k value.Key) string {
	if k.IsString() {
		return strconv.Quote(k.Str())
	}
	return strconv.FormatInt(k.Int(), 10)
}

func propertyLabel(k value.Key) string {
	if !k.IsString() {
		return strconv.FormatInt(k.Int(), 10)
	}
	class, prop, vis := value.SplitName(k.Str())
	switch vis {
	case value.Protected:
		return prop + " (protected)"
	case value.Private:
		return prop + " (private " + class + ")"
	}
	return prop
}

// summary describes the node's value on one line.
func (n *treeNode) summary() string {
	var s string
	switch x := n.val.(type) {
	case value.Null:
		s = scalarStyle.Render("null")
	case value.Bool, value.Int, value.Float:
		s = typeStyle.Render(x.Kind().String()) + " " + scalarStyle.Render(fmt.Sprint(x))
	case value.String:
		q := ansi.Truncate(strconv.Quote(string(x)), maxScalarWidth, "…")
		s = typeStyle.Render(fmt.Sprintf("string(%d)", len(x))) + " " + scalarStyle.Render(q)
	case *value.Array:
		s = typeStyle.Render(fmt.Sprintf("array(%d)", x.Len()))
	case *value.Object:
		s = typeStyle.Render(fmt.Sprintf("object(%s) (%d)", x.Class, x.Len()))
	default:
		s = typeStyle.Render(n.val.Kind().String())
	}
	if n.recursive() {
		s += " " + recursionStyle.Render("*RECURSION*")
	}
	if n.ref {
		s = "&" + s
	}
	return s
}

// visible returns the nodes shown with the current expansion state.
func visible(root *treeNode) []*treeNode {
	var out []*treeNode
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		out = append(out, n)
		if !n.open {
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(root)
	return out
}

type inspectModel struct {
	root     *treeNode
	name     string
	rows     []*treeNode
	view     viewport.Model
	selected int
	ready    bool
}

func newInspectModel(name string, v value.Value) *inspectModel {
	root := newTreeNode(nil, "", v)
	if root.expandable() {
		root.load()
		root.open = true
	}
	m := &inspectModel{root: root, name: name}
	m.rows = visible(root)
	return m
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Title line and help line.
		h := max(msg.Height-3, 1)
		if !m.ready {
			m.view = viewport.New(msg.Width, h)
			m.ready = true
		} else {
			m.view.Width = msg.Width
			m.view.Height = h
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < len(m.rows)-1 {
				m.selected++
			}
		case "enter", " ":
			m.toggle(!m.rows[m.selected].open)
		case "right", "l":
			m.toggle(true)
		case "left", "h":
			n := m.rows[m.selected]
			if !n.open && n.parent != nil {
				m.selectNode(n.parent)
			} else {
				m.toggle(false)
			}
		case "home", "g":
			m.selected = 0
		case "end", "G":
			m.selected = len(m.rows) - 1
		}
	}
	m.render()
	return m, nil
}

func (m *inspectModel) toggle(open bool) {
	n := m.rows[m.selected]
	if open && !n.expandable() {
		return
	}
	if open {
		n.load()
	}
	n.open = open
	m.rows = visible(m.root)
}

func (m *inspectModel) selectNode(n *treeNode) {
	for i, r := range m.rows {
		if r == n {
			m.selected = i
			return
		}
	}
}

func (m *inspectModel) line(i int) string {
	n := m.rows[i]
	marker := "  "
	if n.expandable() {
		marker = "▸ "
		if n.open {
			marker = "▾ "
		}
	}
	text := strings.Repeat("  ", n.depth) + marker
	if n.label != "" {
		text += keyStyle.Render("["+n.label+"]") + " "
	}
	text += n.summary()
	if i == m.selected {
		return selectedStyle.Render(ansi.Strip(text))
	}
	return text
}

// render refreshes the viewport content and keeps the selection in view.
func (m *inspectModel) render() {
	if !m.ready {
		return
	}
	lines := make([]string, len(m.rows))
	for i := range m.rows {
		lines[i] = ansi.Truncate(m.line(i), m.view.Width, "…")
	}
	m.view.SetContent(strings.Join(lines, "\n"))

	switch {
	case m.selected < m.view.YOffset:
		m.view.SetYOffset(m.selected)
	case m.selected >= m.view.YOffset+m.view.Height:
		m.view.SetYOffset(m.selected - m.view.Height + 1)
	}
}

func (m *inspectModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("igbinary"))
	b.WriteString(" ")
	b.WriteString(m.name)
	b.WriteString("\n\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move • enter toggle • ←/→ collapse/expand • q quit"))
	return b.String()
}
