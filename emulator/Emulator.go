// Package emulator defines the boundary between this module and the
// Space Invaders hardware emulation engine.
//
// The emulation itself (8080 CPU, interrupts, video RAM) lives behind
// the Emulator interface and is treated as an opaque, deterministic
// state-transition engine. Implementations are expected to wrap the
// headless C core through cgo, but any engine that satisfies the
// interface (including scripted test doubles) can drive an
// environment.Environment.
package emulator

// Input button bitmask values. These match the cabinet's input port
// layout and must be combined with bitwise OR.
const (
	BtnCoin    uint8 = 1 << 0
	BtnP2Start uint8 = 1 << 1
	BtnP1Start uint8 = 1 << 2
	BtnP1Fire  uint8 = 1 << 4
	BtnLeft    uint8 = 1 << 5
	BtnRight   uint8 = 1 << 6
)

// Screen geometry of the rotated raster, in pixels
const (
	ScreenWidth  int = 256
	ScreenHeight int = 224
)

// RAMSize is the size of the machine's addressable RAM in bytes
const RAMSize int = 8192

// Emulator is the narrow call interface to the hardware engine. All
// calls are blocking and synchronous; a single goroutine must own an
// Emulator at any time.
//
// Save states are unversioned opaque blobs owned entirely by the
// engine. This module never inspects their contents.
type Emulator interface {
	// Reset performs a cold reset of the hardware. The machine comes
	// up in attract mode; see environment.Environment.Reset for the
	// bring-up sequence that makes it playable.
	Reset()

	// StepFrame advances the hardware by exactly one video frame and
	// returns the number of CPU cycles executed
	StepFrame() int

	// SetInput latches the button bitmask. The mask stays latched
	// until the next call.
	SetInput(buttons uint8)

	// Input returns the currently latched button bitmask
	Input() uint8

	// UpdateFramebuffer decodes video RAM into the framebuffers. Must
	// be called before Framebuffer or FramebufferGray to observe the
	// current frame.
	UpdateFramebuffer()

	// Framebuffer returns the full-colour frame as ARGB bytes in
	// row-major order, length ScreenHeight*ScreenWidth*4
	Framebuffer() []uint8

	// FramebufferGray returns the frame as single-channel bytes in
	// row-major order, length ScreenHeight*ScreenWidth
	FramebufferGray() []uint8

	// Score returns the player's current score as shown on screen
	Score() uint32

	// Lives returns the number of lives remaining
	Lives() int

	// Level returns the current wave number, starting at 1
	Level() int

	// GameOver reports whether the machine has reached its game-over
	// state
	GameOver() bool

	// FrameCount returns the total number of frames executed since
	// the engine was created
	FrameCount() uint32

	// CycleCount returns the total number of CPU cycles executed
	// since the engine was created
	CycleCount() uint64

	// SaveState writes the engine's complete state to path. The blob
	// layout is owned by the engine.
	SaveState(path string) error

	// LoadState restores the engine's complete state from path
	LoadState(path string) error

	// Close releases the engine. No other method may be called after
	// Close.
	Close() error
}
