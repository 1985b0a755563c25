// Package render turns log entries into styled transcript blocks. It is a
// pure formatting layer: no knowledge of polling, cursors, or context state,
// so every variant can be exercised in isolation.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/csheth/agentdeck/internal/api"
)

// Block is one rendered transcript unit. Key is the stable entry id and must
// be treated as an opaque reconciliation key by consumers.
type Block struct {
	Key  string
	Text string
}

// Renderer formats entries at a fixed wrap width. Build one per view width;
// it holds no mutable state across Render calls.
type Renderer struct {
	width    int
	dark     bool
	markdown *glamour.TermRenderer
}

const minRenderWidth = 20

// New builds a renderer for the given width and color scheme. The markdown
// renderer is best effort: when construction fails, markdown variants fall
// back to rich text.
func New(width int, dark bool) *Renderer {
	if width < minRenderWidth {
		width = minRenderWidth
	}
	style := "light"
	if dark {
		style = "dark"
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		md = nil
	}
	return &Renderer{width: width, dark: dark, markdown: md}
}

// Width returns the wrap width the renderer was built for.
func (r *Renderer) Width() int {
	return r.width
}

// Dark reports the color scheme the renderer was built for.
func (r *Renderer) Dark() bool {
	return r.dark
}

// Render produces the block for one entry. It never fails: malformed input
// degrades to a literal fallback block so one bad entry cannot block the rest
// of a snapshot.
func (r *Renderer) Render(e api.LogEntry) Block {
	variant := ParseVariant(e.Type)
	var b strings.Builder

	heading := sanitize(strings.TrimSpace(e.Heading))
	if heading == "" {
		heading = defaultHeading(variant)
	}
	marker := headingStyleFor(variant).Render(fmt.Sprintf("%s %s", variantBadge(variant), heading))
	if e.Temp {
		marker += " " + transientStyle.Render("(working)")
	}
	b.WriteString(marker)
	b.WriteByte('\n')

	content := sanitize(e.Content)
	switch {
	case strings.TrimSpace(content) == "":
		// heading-only entries are common for transient progress items
	case variant.preformatted():
		b.WriteString(preformattedStyle.Render(wordwrap.String(content, r.width)))
		b.WriteByte('\n')
	case variant.markdown() && r.markdown != nil:
		rendered, err := r.markdown.Render(content)
		if err != nil {
			b.WriteString(r.richText(content, variant))
		} else {
			b.WriteString(strings.Trim(rendered, "\n"))
		}
		b.WriteByte('\n')
	default:
		b.WriteString(r.richText(content, variant))
		b.WriteByte('\n')
	}

	for _, line := range r.attributeLines(e.KVPs) {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return Block{Key: e.ID, Text: strings.TrimRight(b.String(), "\n")}
}

// richText wraps content and styles recognized file paths and image
// references inline.
func (r *Renderer) richText(content string, variant Variant) string {
	wrapped := wordwrap.String(content, r.width)
	base := bodyStyleFor(variant)
	var b strings.Builder
	for _, span := range linkify(wrapped) {
		switch {
		case span.IsImage:
			b.WriteString(imageRefStyle.Render(span.Text))
		case span.IsPath:
			b.WriteString(pathRefStyle.Render(span.Text))
		default:
			b.WriteString(base.Render(span.Text))
		}
	}
	return b.String()
}

const maxAttributeValueRunes = 300

// attributeLines renders entry details in their server-supplied order. A
// value that fails to format cleanly renders literally rather than dropping
// the entry.
func (r *Renderer) attributeLines(attrs api.Attributes) []string {
	if len(attrs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(attrs))
	for _, attr := range attrs {
		value := sanitize(attr.Text())
		if value == "" {
			continue
		}
		if runes := []rune(value); len(runes) > maxAttributeValueRunes {
			value = string(runes[:maxAttributeValueRunes]) + "…"
		}
		value = strings.ReplaceAll(value, "\n", " ")
		line := fmt.Sprintf("%s %s", attrKeyStyle.Render(attr.Key+":"), attrValueStyle.Render(value))
		lines = append(lines, wordwrap.String(line, r.width))
	}
	return lines
}

func defaultHeading(v Variant) string {
	switch v {
	case VariantUser:
		return "You"
	case VariantAgent:
		return "Agent"
	case VariantResponse:
		return "Response"
	case VariantTool:
		return "Tool"
	case VariantCodeExecution:
		return "Code execution"
	case VariantBrowserAction:
		return "Browser"
	case VariantWarning:
		return "Warning"
	case VariantRateLimit:
		return "Rate limited"
	case VariantError:
		return "Error"
	case VariantInfo:
		return "Info"
	case VariantUtility:
		return "Utility"
	case VariantHint:
		return "Hint"
	default:
		return "Message"
	}
}

func variantBadge(v Variant) string {
	switch v {
	case VariantUser:
		return "▸"
	case VariantAgent:
		return "●"
	case VariantResponse:
		return "◆"
	case VariantTool, VariantCodeExecution, VariantBrowserAction:
		return "⚙"
	case VariantWarning, VariantRateLimit:
		return "▲"
	case VariantError:
		return "✗"
	case VariantHint:
		return "☛"
	default:
		return "·"
	}
}

func headingStyleFor(v Variant) lipgloss.Style {
	switch v {
	case VariantUser:
		return userHeadingStyle
	case VariantResponse:
		return responseHeadingStyle
	case VariantError, VariantRateLimit:
		return errorHeadingStyle
	case VariantWarning:
		return warningHeadingStyle
	case VariantUtility, VariantHint, VariantInfo:
		return mutedHeadingStyle
	default:
		return agentHeadingStyle
	}
}

func bodyStyleFor(v Variant) lipgloss.Style {
	switch v {
	case VariantError, VariantRateLimit:
		return errorBodyStyle
	case VariantWarning:
		return warningBodyStyle
	case VariantUtility, VariantHint, VariantInfo:
		return mutedBodyStyle
	default:
		return bodyStyle
	}
}

var (
	userHeadingStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	agentHeadingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	responseHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	errorHeadingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warningHeadingStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	mutedHeadingStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	transientStyle       = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244"))
	bodyStyle            = lipgloss.NewStyle()
	errorBodyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningBodyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedBodyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	preformattedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("235"))
	pathRefStyle         = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("75"))
	imageRefStyle        = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("141"))
	attrKeyStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	attrValueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)
