package environment

import (
	"testing"

	"github.com/samuelfneumann/goinvaders/emulator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGrayscale(t *testing.T) {
	fake := newFakeEmulator()
	fake.frames = 7
	composer := newObsComposer(fake, Grayscale, 1)

	obs := composer.observe()
	assert.Equal(t, []int{emulator.ScreenHeight, emulator.ScreenWidth},
		[]int(obs.Shape()))

	data := obs.Data().([]uint8)
	require.Len(t, data, emulator.ScreenHeight*emulator.ScreenWidth)
	assert.Equal(t, uint8(7), data[0])
	assert.Equal(t, uint8(7), data[len(data)-1])
}

func TestObserveRGBDropsAlpha(t *testing.T) {
	fake := newFakeEmulator()
	fake.frames = 9
	composer := newObsComposer(fake, RGB, 1)

	obs := composer.observe()
	assert.Equal(t, []int{emulator.ScreenHeight, emulator.ScreenWidth, 3},
		[]int(obs.Shape()))

	data := obs.Data().([]uint8)
	require.Len(t, data, emulator.ScreenHeight*emulator.ScreenWidth*3)
	assert.Equal(t, uint8(9), data[0])    // red
	assert.Equal(t, uint8(0x10), data[1]) // green
	assert.Equal(t, uint8(0x20), data[2]) // blue
}

func TestObserveDownscaled(t *testing.T) {
	fake := newFakeEmulator()
	fake.frames = 200
	composer := newObsComposer(fake, Downscaled, 1)

	obs := composer.observe()
	assert.Equal(t, []int{DownscaledSize, DownscaledSize},
		[]int(obs.Shape()))

	// Bilinear interpolation of a constant frame is constant
	data := obs.Data().([]uint8)
	for _, pixel := range data {
		assert.Equal(t, uint8(200), pixel)
	}
}

func TestObserveRAMPlaceholder(t *testing.T) {
	fake := newFakeEmulator()
	composer := newObsComposer(fake, RAM, 4)

	// RAM observations are never stacked
	obs := composer.observe()
	assert.Equal(t, []int{emulator.RAMSize}, []int(obs.Shape()))

	for _, b := range obs.Data().([]uint8) {
		assert.Equal(t, uint8(0), b)
	}
}

func TestObserveFrameStackWarmUp(t *testing.T) {
	fake := newFakeEmulator()
	fake.frames = 5
	composer := newObsComposer(fake, Grayscale, 4)

	obs := composer.observe()
	require.Equal(t, []int{4, emulator.ScreenHeight, emulator.ScreenWidth},
		[]int(obs.Shape()))

	// Immediately after reset the stack is four copies of the single
	// current frame
	frameSize := emulator.ScreenHeight * emulator.ScreenWidth
	data := obs.Data().([]uint8)
	for plane := 0; plane < 4; plane++ {
		assert.Equal(t, uint8(5), data[plane*frameSize], "plane %v", plane)
	}
}

func TestObserveFrameStackHistory(t *testing.T) {
	fake := newFakeEmulator()
	composer := newObsComposer(fake, Grayscale, 3)
	frameSize := emulator.ScreenHeight * emulator.ScreenWidth

	fake.frames = 1
	composer.observe()
	fake.frames = 2
	composer.observe()
	fake.frames = 3
	obs := composer.observe()

	// Once warm, planes are genuine history ordered oldest to newest
	data := obs.Data().([]uint8)
	assert.Equal(t, uint8(1), data[0])
	assert.Equal(t, uint8(2), data[frameSize])
	assert.Equal(t, uint8(3), data[2*frameSize])

	fake.frames = 4
	obs = composer.observe()
	data = obs.Data().([]uint8)
	assert.Equal(t, uint8(2), data[0])
	assert.Equal(t, uint8(4), data[2*frameSize])
}

func TestObserveFreshTensorPerCall(t *testing.T) {
	fake := newFakeEmulator()
	composer := newObsComposer(fake, Grayscale, 2)

	first := composer.observe()
	second := composer.observe()

	firstData := first.Data().([]uint8)
	secondData := second.Data().([]uint8)
	assert.NotSame(t, &firstData[0], &secondData[0])
}

func TestObserveResetClearsWindow(t *testing.T) {
	fake := newFakeEmulator()
	composer := newObsComposer(fake, Grayscale, 2)
	frameSize := emulator.ScreenHeight * emulator.ScreenWidth

	fake.frames = 1
	composer.observe()
	fake.frames = 2
	composer.observe()

	composer.reset()

	// The first observation of the new episode must not contain
	// frames from the previous one
	fake.frames = 9
	obs := composer.observe()
	data := obs.Data().([]uint8)
	assert.Equal(t, uint8(9), data[0])
	assert.Equal(t, uint8(9), data[frameSize])
}
