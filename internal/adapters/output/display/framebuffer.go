package display

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const maxScale = 8

// Discard is a device that accepts and drops every frame.
var Discard io.WriterAt = discard{}

type discard struct{}

func (discard) WriteAt(p []byte, _ int64) (int, error) { return len(p), nil }

// Framebuffer renders labels into an RGBA frame and blits it to an RGB565
// device asynchronously. At most one blit is in flight.
type Framebuffer struct {
	dev    io.WriterAt
	closer io.Closer
	frame  *image.RGBA
	face   font.Face
	fg, bg color.RGBA

	mu      sync.Mutex
	pending chan struct{}
}

func Open(path string, width, height int) (*Framebuffer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	fb := New(f, width, height)
	fb.closer = f
	return fb, nil
}

func New(dev io.WriterAt, width, height int) *Framebuffer {
	return &Framebuffer{
		dev:   dev,
		frame: image.NewRGBA(image.Rect(0, 0, width, height)),
		face:  basicfont.Face7x13,
		fg:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		bg:    color.RGBA{A: 0xff},
	}
}

func (f *Framebuffer) DrawCenteredLabel(text string) error {
	f.Wait()
	RenderLabel(f.frame, f.face, text, f.fg, f.bg)
	buf := EncodeRGB565(f.frame)

	done := make(chan struct{})
	f.mu.Lock()
	f.pending = done
	f.mu.Unlock()

	go func() {
		defer close(done)
		if _, err := f.dev.WriteAt(buf, 0); err != nil {
			log.WithError(err).Warn("framebuffer blit failed")
		}
	}()
	return nil
}

func (f *Framebuffer) Wait() {
	f.mu.Lock()
	pending := f.pending
	f.mu.Unlock()
	if pending != nil {
		<-pending
	}
}

// Frame returns the last rendered frame. Callers must not modify it.
func (f *Framebuffer) Frame() image.Image {
	f.Wait()
	return f.frame
}

func (f *Framebuffer) Close() error {
	f.Wait()
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// RenderLabel clears dst to bg and draws text in fg, scaled up by the largest
// whole factor that fits and centered.
func RenderLabel(dst *image.RGBA, face font.Face, text string, fg, bg color.Color) {
	bounds := dst.Bounds()
	draw.Draw(dst, bounds, image.NewUniform(bg), image.Point{}, draw.Src)
	if text == "" {
		return
	}

	metrics := face.Metrics()
	tw := font.MeasureString(face, text).Ceil()
	th := metrics.Height.Ceil()
	if tw == 0 || th == 0 {
		return
	}

	small := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.Draw(small, small.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, metrics.Ascent.Ceil()),
	}
	d.DrawString(text)

	scale := min(bounds.Dx()*9/10/tw, bounds.Dy()*9/10/th, maxScale)
	if scale < 1 {
		scale = 1
	}
	w, h := tw*scale, th*scale
	x0 := bounds.Min.X + (bounds.Dx()-w)/2
	y0 := bounds.Min.Y + (bounds.Dy()-h)/2
	xdraw.NearestNeighbor.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), small, small.Bounds(), draw.Over, nil)
}

// EncodeRGB565 packs img into little-endian RGB565 rows.
func EncodeRGB565(img *image.RGBA) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			v := uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
			out = append(out, byte(v), byte(v>>8))
		}
	}
	return out
}
