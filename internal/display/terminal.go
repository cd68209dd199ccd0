package display

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/squall/internal/dom"
)

// Terminal presents the live tree on a tcell screen and adapts terminal
// input into runtime events.
type Terminal struct {
	mu     sync.Mutex
	screen tcell.Screen
	events chan Event
	closed bool
}

var _ Presenter = (*Terminal)(nil)

// NewTerminal creates a terminal presenter on a fresh tcell screen. The
// terminal is not taken over until Init.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{
		screen: screen,
		events: make(chan Event, 16),
	}, nil
}

// Init takes over the terminal and starts the input poll loop.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.Clear()
	go t.poll()
	return nil
}

// Events returns the input event stream. The channel closes after Close
// once the poll loop drains.
func (t *Terminal) Events() <-chan Event {
	return t.events
}

// Present paints the plain-text projection of root, one line per screen
// row, clipped to the screen size.
func (t *Terminal) Present(root *dom.Node) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	t.screen.Clear()
	width, height := t.screen.Size()
	for y, line := range strings.Split(root.PlainText(), "\n") {
		if y >= height {
			break
		}
		x := 0
		for _, r := range line {
			if x >= width {
				break
			}
			t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
			x++
		}
	}
	t.screen.Show()
	return nil
}

// Close restores the terminal. The event channel closes once the poll
// loop observes the shutdown.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.screen.Fini()
	return nil
}

// poll forwards tcell events until Fini makes PollEvent return nil. Slow
// consumers drop input rather than wedging the loop.
func (t *Terminal) poll() {
	defer close(t.events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		out, ok := convertEvent(ev)
		if !ok {
			continue
		}
		if out.Kind == EventResize {
			t.screen.Sync()
		}
		select {
		case t.events <- out:
		default:
		}
	}
}

// convertEvent maps a tcell event onto a runtime event. The second return
// is false for event types the runtime ignores.
func convertEvent(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		switch e.Key() {
		case tcell.KeyRune:
			return Event{Kind: EventKey, Rune: e.Rune()}, true
		case tcell.KeyEnter:
			return Event{Kind: EventKey, Rune: '\n'}, true
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return Event{Kind: EventInterrupt}, true
		}
		return Event{}, false
	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Kind: EventResize, Width: w, Height: h}, true
	case *tcell.EventInterrupt:
		return Event{Kind: EventInterrupt}, true
	}
	return Event{}, false
}
