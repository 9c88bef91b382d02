package render

import (
	"image"

	"github.com/rook-computer/binaryrain/internal/frame"
	"github.com/rook-computer/binaryrain/internal/page"
)

// software is the shared core of the hosts that composite in memory: the
// rain canvas, its frame queue and the presented frame.
type software struct {
	canvas   *Canvas
	composer Composer
	queue    frame.Queue
	frame    *image.RGBA
}

func (s *software) setup(width, height, ratio float64, fonts *Fonts) {
	s.canvas = NewCanvas(width, height, ratio, fonts)
	s.composer = Composer{Fonts: fonts}
	s.frame = image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
}

func (s *software) Surface() Surface {
	if s.canvas == nil {
		return nil
	}
	return s.canvas
}

func (s *software) Frames() frame.Scheduler { return &s.queue }

// Canvas exposes the rain surface for inspection.
func (s *software) Canvas() *Canvas { return s.canvas }

// present composes the current rain and page state into the frame.
func (s *software) present(pg *page.Page) *image.RGBA {
	s.composer.Compose(s.frame, s.canvas, pg)
	return s.frame
}
