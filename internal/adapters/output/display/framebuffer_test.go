package display

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/basicfont"
)

type slowDevice struct {
	mu     sync.Mutex
	delay  time.Duration
	writes [][]byte
}

func (d *slowDevice) WriteAt(p []byte, off int64) (int, error) {
	time.Sleep(d.delay)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (d *slowDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.writes)
}

func TestEncodeRGB565(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
	img.SetRGBA(1, 0, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

	assert.Equal(t, []byte{0x00, 0xf8, 0xff, 0xff}, EncodeRGB565(img))
}

func TestRenderLabel_Centered(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 240, 135))
	RenderLabel(img, basicfont.Face7x13, "Kitchen", color.White, color.Black)

	minX, maxX := img.Bounds().Max.X, -1
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y).R > 0 {
				minX = min(minX, x)
				maxX = max(maxX, x)
			}
		}
	}
	require.GreaterOrEqual(t, maxX, 0, "label drew nothing")
	left, right := minX, img.Bounds().Dx()-1-maxX
	assert.InDelta(t, left, right, float64(maxScale*7))
	assert.Greater(t, maxX-minX, 7*7, "label should be scaled up")
}

func TestRenderLabel_Empty(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.SetRGBA(5, 5, color.RGBA{R: 0xff, A: 0xff})
	RenderLabel(img, basicfont.Face7x13, "", color.White, color.Black)
	assert.Equal(t, uint8(0), img.RGBAAt(5, 5).R)
}

func TestFramebuffer_WaitBarrier(t *testing.T) {
	dev := &slowDevice{delay: 50 * time.Millisecond}
	fb := New(dev, 135, 240)

	require.NoError(t, fb.DrawCenteredLabel("Kitchen"))
	require.NoError(t, fb.DrawCenteredLabel("Office"))
	fb.Wait()

	assert.Equal(t, 2, dev.count())
	assert.Len(t, dev.writes[1], 135*240*2)
	assert.NoError(t, fb.Close())
}
