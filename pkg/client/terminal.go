package client

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mercator-hq/interviewer/pkg/config"
	"mercator-hq/interviewer/pkg/proxy/types"
)

const (
	typingText = "Interviewer is typing..."
	failedText = "(reply failed)"
	userPrefix = "You: "
)

// SurfaceOptions configures a TerminalSurface.
type SurfaceOptions struct {
	// WordWrap is the markdown render width. Zero uses the default.
	WordWrap int

	// Style is the glamour style: "auto", "dark", "light" or "notty".
	Style string

	// Plain disables markdown rendering and in-place redraws. Use it when the
	// output is not a terminal.
	Plain bool
}

// SurfaceOptionsFromConfig returns surface options from the client section.
func SurfaceOptionsFromConfig(cfg config.ClientConfig) SurfaceOptions {
	return SurfaceOptions{WordWrap: cfg.WordWrap, Style: cfg.Style}
}

// TerminalSurface renders a session to a terminal.
//
// Committed output is printed once. The in-progress reply and the typing
// indicator form a live block at the bottom that is erased and redrawn on
// every change.
type TerminalSurface struct {
	mu       sync.Mutex
	out      io.Writer
	plain    bool
	renderer *glamour.TermRenderer

	userStyle   lipgloss.Style
	typingStyle lipgloss.Style
	errorStyle  lipgloss.Style

	live      int
	typing    bool
	partialID string
	partial   string
}

var _ Surface = (*TerminalSurface)(nil)

// NewTerminalSurface returns a surface writing to out.
func NewTerminalSurface(out io.Writer, opts SurfaceOptions) (*TerminalSurface, error) {
	if opts.WordWrap <= 0 {
		opts.WordWrap = config.DefaultWordWrap
	}

	s := &TerminalSurface{out: out, plain: opts.Plain}

	styles := lipgloss.NewRenderer(out)
	s.userStyle = styles.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	s.typingStyle = styles.NewStyle().Faint(true).Italic(true)
	s.errorStyle = styles.NewStyle().Foreground(lipgloss.Color("9"))

	if opts.Plain {
		return s, nil
	}

	style := glamour.WithAutoStyle()
	if opts.Style != "" && opts.Style != "auto" {
		style = glamour.WithStandardStyle(opts.Style)
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(opts.WordWrap))
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	s.renderer = renderer

	return s, nil
}

// ShowTurn prints a user turn.
func (s *TerminalSurface) ShowTurn(turn types.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.print(s.userStyle.Render(userPrefix+turn.Content) + "\n")
}

// ClearInput is a no-op: the terminal line reader has already consumed the
// input line.
func (s *TerminalSurface) ClearInput() {}

// ShowTyping shows the typing indicator below the live reply.
func (s *TerminalSurface) ShowTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.typing = true
	s.redraw()
}

// HideTyping removes the typing indicator.
func (s *TerminalSurface) HideTyping() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.typing = false
	s.redraw()
}

// ShowPartial redraws the in-progress reply with content.
func (s *TerminalSurface) ShowPartial(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.partialID = id
	s.partial = content
	s.redraw()
}

// Finalize prints the committed reply.
func (s *TerminalSurface) Finalize(id, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.partialID == id {
		s.partialID, s.partial = "", ""
	}
	s.print(s.markdown(content))
}

// MarkFailed prints the partial reply for id, if any, followed by a failure
// marker.
func (s *TerminalSurface) MarkFailed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.partialID != id || s.partial == "" {
		return
	}
	content := s.partial
	s.partialID, s.partial = "", ""
	s.print(s.markdown(content) + s.errorStyle.Render(failedText) + "\n")
}

// ShowError prints an error bubble.
func (s *TerminalSurface) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.print(s.errorStyle.Render(message) + "\n")
}

// print writes committed text above the live block.
func (s *TerminalSurface) print(text string) {
	s.erase()
	_, _ = io.WriteString(s.out, text)
	s.draw()
}

func (s *TerminalSurface) redraw() {
	s.erase()
	s.draw()
}

func (s *TerminalSurface) erase() {
	if s.live == 0 {
		return
	}
	_, _ = io.WriteString(s.out, ansi.CursorPreviousLine(s.live)+ansi.EraseScreenBelow)
	s.live = 0
}

func (s *TerminalSurface) draw() {
	if s.plain {
		return
	}

	var b strings.Builder
	if s.partial != "" {
		b.WriteString(s.markdown(s.partial))
	}
	if s.typing {
		b.WriteString(s.typingStyle.Render(typingText) + "\n")
	}

	live := b.String()
	_, _ = io.WriteString(s.out, live)
	s.live = strings.Count(live, "\n")
}

func (s *TerminalSurface) markdown(content string) string {
	text := content
	if s.renderer != nil {
		if rendered, err := s.renderer.Render(content); err == nil {
			text = rendered
		}
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
