package device

import (
	"sync"

	"github.com/bnema/inputkit/internal/events"
	"github.com/bnema/inputkit/internal/keys"
	"github.com/bnema/inputkit/internal/native"
)

// DefaultDelay is the initial pointer and keyboard delay in milliseconds.
const DefaultDelay = 10

// MoveOptions control Move.
type MoveOptions struct {
	Smooth   bool
	Relative bool
}

// RelativeOptions control DragTo and ScrollTo.
type RelativeOptions struct {
	Relative bool
}

// Pointer drives the mouse and publishes its events.
type Pointer struct {
	mu        sync.Mutex
	engine    native.Pointer
	hook      native.Hook
	delay     int
	propagate bool

	buttons *events.Emitter[events.PointerEvent]
	wheel   *events.Emitter[events.WheelEvent]
}

// NewPointer creates a pointer facade. Events come from n, which must already
// be attached to hook.
func NewPointer(engine native.Pointer, hook native.Hook, n *events.Normalizer) *Pointer {
	return &Pointer{
		engine:    engine,
		hook:      hook,
		delay:     DefaultDelay,
		propagate: true,
		buttons:   n.Pointer,
		wheel:     n.Wheel,
	}
}

// Delay returns the delay applied after each native pointer action.
func (p *Pointer) Delay() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.delay
}

// SetDelay changes the delay in milliseconds.
func (p *Pointer) SetDelay(ms int) error {
	if ms < 0 {
		return invalid("delay", "non-negative milliseconds", ms)
	}
	p.mu.Lock()
	p.delay = ms
	p.mu.Unlock()

	p.engine.SetPointerDelay(ms)
	return nil
}

// Propagate reports whether clicks reach other applications while hooked.
func (p *Pointer) Propagate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.propagate
}

// SetPropagate toggles click propagation on the hook.
func (p *Pointer) SetPropagate(enabled bool) error {
	var err error
	if enabled {
		err = p.hook.EnableClickPropagation()
	} else {
		err = p.hook.DisableClickPropagation()
	}
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.propagate = enabled
	p.mu.Unlock()
	return nil
}

// Move moves the pointer to x, y, or by x, y when opts.Relative is set.
func (p *Pointer) Move(x, y int, opts MoveOptions) error {
	if opts.Relative {
		x, y = p.offset(x, y)
	}
	if opts.Smooth {
		return p.engine.MoveToSmooth(x, y)
	}
	return p.engine.MoveTo(x, y)
}

// DragTo drags from the current position to x, y.
func (p *Pointer) DragTo(x, y int, opts RelativeOptions) error {
	if opts.Relative {
		x, y = p.offset(x, y)
	}
	return p.engine.DragTo(x, y)
}

// ScrollTo scrolls until the given position would be reached. In absolute
// mode the scroll amount is the distance from the current position.
func (p *Pointer) ScrollTo(x, y int, opts RelativeOptions) error {
	if !opts.Relative {
		cx, cy := p.engine.Position()
		x -= cx
		y -= cy
	}
	return p.engine.ScrollBy(x, y)
}

// Down presses button. An empty button means left.
func (p *Pointer) Down(button keys.Button) error {
	button, err := checkButton(button)
	if err != nil {
		return err
	}
	return p.engine.SetButtonState(button, native.StateDown)
}

// Up releases button. An empty button means left.
func (p *Pointer) Up(button keys.Button) error {
	button, err := checkButton(button)
	if err != nil {
		return err
	}
	return p.engine.SetButtonState(button, native.StateUp)
}

// Click releases, presses and releases button. A failure part way leaves the
// earlier steps applied.
func (p *Pointer) Click(button keys.Button) error {
	button, err := checkButton(button)
	if err != nil {
		return err
	}
	for _, state := range []native.State{native.StateUp, native.StateDown, native.StateUp} {
		if err := p.engine.SetButtonState(button, state); err != nil {
			return err
		}
	}
	return nil
}

// ClickAt moves to x, y and clicks there.
func (p *Pointer) ClickAt(x, y int, button keys.Button) error {
	button, err := checkButton(button)
	if err != nil {
		return err
	}
	if err := p.Move(x, y, MoveOptions{}); err != nil {
		return err
	}
	return p.Click(button)
}

// X returns the current horizontal position.
func (p *Pointer) X() int {
	x, _ := p.engine.Position()
	return x
}

// Y returns the current vertical position.
func (p *Pointer) Y() int {
	_, y := p.engine.Position()
	return y
}

// OnDown subscribes to button presses.
func (p *Pointer) OnDown(fn func(events.PointerEvent)) (events.Subscription, error) {
	return p.buttons.Subscribe(events.TagDown, fn)
}

// OnMove subscribes to pointer moves.
func (p *Pointer) OnMove(fn func(events.PointerEvent)) (events.Subscription, error) {
	return p.buttons.Subscribe(events.TagMove, fn)
}

// OnClick subscribes to clicks.
func (p *Pointer) OnClick(fn func(events.PointerEvent)) (events.Subscription, error) {
	return p.buttons.Subscribe(events.TagClick, fn)
}

// OnDrag subscribes to drags.
func (p *Pointer) OnDrag(fn func(events.PointerEvent)) (events.Subscription, error) {
	return p.buttons.Subscribe(events.TagDrag, fn)
}

// OnWheel subscribes to wheel events.
func (p *Pointer) OnWheel(fn func(events.WheelEvent)) (events.Subscription, error) {
	return p.wheel.Subscribe(events.TagWheel, fn)
}

// Off removes a subscription made with any of the On methods.
func (p *Pointer) Off(sub events.Subscription) error {
	if sub.Tag == events.TagWheel {
		return p.wheel.Unsubscribe(sub)
	}
	return p.buttons.Unsubscribe(sub)
}

func (p *Pointer) offset(dx, dy int) (int, int) {
	x, y := p.engine.Position()
	return x + dx, y + dy
}

func checkButton(b keys.Button) (keys.Button, error) {
	if b == "" {
		return keys.ButtonLeft, nil
	}
	if !b.Valid() {
		return "", invalid("button", `one of "left", "right", "middle"`, string(b))
	}
	return b, nil
}
