package environment

import (
	"image"

	"github.com/gammazero/deque"
	"github.com/samuelfneumann/goinvaders/emulator"
	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// DownscaledSize is the side length in pixels of a Downscaled
// observation frame
const DownscaledSize int = 84

// obsComposer builds observation tensors from hardware framebuffer
// reads. It owns the frame-stacking window, a bounded FIFO of the most
// recently composed frames.
type obsComposer struct {
	emu        emulator.Emulator
	obsType    ObsType
	frameStack int

	// frames holds the last frameStack composed frames, most recent
	// at the back. Only maintained when frameStack > 1.
	frames *deque.Deque[[]uint8]
}

// newObsComposer returns a new obsComposer reading frames from emu.
// The obsType and frameStack must already be validated.
func newObsComposer(emu emulator.Emulator, obsType ObsType,
	frameStack int) *obsComposer {
	return &obsComposer{
		emu:        emu,
		obsType:    obsType,
		frameStack: frameStack,
		frames:     deque.New[[]uint8](),
	}
}

// reset discards the frame-stacking window. Must be called at every
// episode boundary so stacks never span two episodes.
func (o *obsComposer) reset() {
	o.frames.Clear()
}

// observe composes a fresh observation tensor from the current
// hardware frame. The returned tensor is backed by newly allocated
// memory on every call.
func (o *obsComposer) observe() *tensor.Dense {
	o.emu.UpdateFramebuffer()

	// RAM observations are a vector, not a frame, and are never
	// stacked
	if o.obsType == RAM {
		return tensor.New(
			tensor.WithShape(emulator.RAMSize),
			tensor.WithBacking(make([]uint8, emulator.RAMSize)),
		)
	}

	frame, shape := o.composeFrame()
	if o.frameStack == 1 {
		return tensor.New(tensor.WithShape(shape...),
			tensor.WithBacking(frame))
	}

	o.frames.PushBack(frame)
	if o.frames.Len() > o.frameStack {
		o.frames.PopFront()
	}

	// Before the window fills, earlier slots are padded with the
	// current frame. The padded entries are duplicates, not genuine
	// history; this mirrors the warm-up behaviour agents are trained
	// against.
	frameSize := len(frame)
	stacked := make([]uint8, o.frameStack*frameSize)
	padding := o.frameStack - o.frames.Len()
	for i := 0; i < padding; i++ {
		copy(stacked[i*frameSize:(i+1)*frameSize], frame)
	}
	for i := 0; i < o.frames.Len(); i++ {
		offset := (padding + i) * frameSize
		copy(stacked[offset:offset+frameSize], o.frames.At(i))
	}

	stackedShape := append([]int{o.frameStack}, shape...)
	return tensor.New(tensor.WithShape(stackedShape...),
		tensor.WithBacking(stacked))
}

// composeFrame reads and converts a single frame, returning its pixel
// data and tensor shape. The returned slice never aliases emulator
// memory.
func (o *obsComposer) composeFrame() ([]uint8, []int) {
	switch o.obsType {
	case RGB:
		return dropAlpha(o.emu.Framebuffer()),
			[]int{emulator.ScreenHeight, emulator.ScreenWidth, 3}

	case Downscaled:
		return downscale(o.emu.FramebufferGray()),
			[]int{DownscaledSize, DownscaledSize}

	default: // Grayscale
		gray := o.emu.FramebufferGray()
		frame := make([]uint8, len(gray))
		copy(frame, gray)
		return frame, []int{emulator.ScreenHeight, emulator.ScreenWidth}
	}
}

// ObservationSpec returns the observation specification of the
// composer's configuration
func (o *obsComposer) ObservationSpec() Spec {
	var dims []float64
	switch o.obsType {
	case RGB:
		dims = []float64{float64(emulator.ScreenHeight),
			float64(emulator.ScreenWidth), 3}

	case Downscaled:
		dims = []float64{float64(DownscaledSize), float64(DownscaledSize)}

	case RAM:
		dims = []float64{float64(emulator.RAMSize)}

	default: // Grayscale
		dims = []float64{float64(emulator.ScreenHeight),
			float64(emulator.ScreenWidth)}
	}

	if o.frameStack > 1 && o.obsType != RAM {
		dims = append([]float64{float64(o.frameStack)}, dims...)
	}

	shape := mat.NewVecDense(len(dims), dims)
	lowerBound := mat.NewVecDense(1, []float64{0})
	upperBound := mat.NewVecDense(1, []float64{255})
	return NewSpec(shape, Observation, lowerBound, upperBound, Discrete)
}

// dropAlpha converts an ARGB framebuffer to packed RGB bytes
func dropAlpha(argb []uint8) []uint8 {
	pixels := len(argb) / 4
	rgb := make([]uint8, pixels*3)
	for i := 0; i < pixels; i++ {
		rgb[i*3] = argb[i*4+1]
		rgb[i*3+1] = argb[i*4+2]
		rgb[i*3+2] = argb[i*4+3]
	}
	return rgb
}

// downscale resizes a full-resolution grayscale frame to
// DownscaledSize x DownscaledSize with bilinear interpolation
func downscale(gray []uint8) []uint8 {
	src := &image.Gray{
		Pix:    gray,
		Stride: emulator.ScreenWidth,
		Rect: image.Rect(0, 0, emulator.ScreenWidth,
			emulator.ScreenHeight),
	}
	dst := image.NewGray(image.Rect(0, 0, DownscaledSize, DownscaledSize))

	draw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return dst.Pix
}
