// Package termview previews an AO buffer in a terminal.
//
// Every character cell shows two vertically stacked samples using the
// upper half block: the foreground paints the top sample and the background
// the bottom one. Samples are box-filtered from the AO buffer so any buffer
// fits any terminal.
package termview

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/ssao"
)

const halfBlock = '▀'

// View draws an AO buffer onto a tcell screen.
type View struct {
	screen tcell.Screen
	ao     *ssao.AOBuffer
	title  string
}

// New returns a view of ao on screen. The caller owns screen and must call
// Fini on it.
func New(screen tcell.Screen, ao *ssao.AOBuffer, title string) *View {
	return &View{screen: screen, ao: ao, title: title}
}

// Draw renders the buffer and a one-line status bar, then shows the frame.
func (v *View) Draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	rows := h - 1
	if w <= 0 || rows <= 0 {
		v.screen.Show()
		return
	}

	samples := Downsample(v.ao, w, rows*2)
	for cy := range rows {
		for cx := range w {
			top := samples[(2*cy)*w+cx]
			bottom := samples[(2*cy+1)*w+cx]
			style := tcell.StyleDefault.Foreground(gray(top)).Background(gray(bottom))
			v.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}

	lo, hi, mean := v.ao.Stats()
	status := fmt.Sprintf(" %s  %dx%d  min %.3f  max %.3f  mean %.3f  q: quit",
		v.title, v.ao.Width, v.ao.Height, lo, hi, mean)
	statusStyle := tcell.StyleDefault.Reverse(true)
	for x := range w {
		r := ' '
		if x < len(status) {
			r = rune(status[x])
		}
		v.screen.SetContent(x, h-1, r, nil, statusStyle)
	}
	v.screen.Show()
}

// Run draws the view and handles events until the user quits or ctx is done.
// q, Esc and Ctrl-C quit; a resize redraws.
func (v *View) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	stop := make(chan struct{})
	defer close(stop)
	go pumpEvents(v.screen, events, stop)

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					return nil
				}
			case *tcell.EventResize:
				v.screen.Sync()
				v.Draw()
			}
		}
	}
}

// pumpEvents forwards screen events until the screen is finalized or stop
// is closed.
func pumpEvents(screen tcell.Screen, events chan<- tcell.Event, stop <-chan struct{}) {
	defer close(events)
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

func gray(v float32) tcell.Color {
	c := int32(min(max(v, 0), 1)*255 + 0.5)
	return tcell.NewRGBColor(c, c, c)
}

// Downsample box-filters ao to w x h samples. Each output sample averages
// the source pixels its footprint covers, at least one pixel.
func Downsample(ao *ssao.AOBuffer, w, h int) []float32 {
	out := make([]float32, max(w, 0)*max(h, 0))
	if ao.Width <= 0 || ao.Height <= 0 {
		return out
	}
	for y := range h {
		y0, y1 := span(y, h, ao.Height)
		for x := range w {
			x0, x1 := span(x, w, ao.Width)
			var sum float32
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					sum += ao.Data[sy*ao.Width+sx]
				}
			}
			out[y*w+x] = sum / float32((x1-x0)*(y1-y0))
		}
	}
	return out
}

// span returns the source range [lo, hi) covered by output index i of n.
func span(i, n, src int) (lo, hi int) {
	lo = min(i*src/n, src-1)
	hi = max((i+1)*src/n, lo+1)
	return lo, min(hi, src)
}
