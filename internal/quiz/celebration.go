package quiz

import (
	"sync"
	"time"
)

// DefaultCelebrationTimeout is how long a celebration stays visible.
const DefaultCelebrationTimeout = 2 * time.Second

// Celebration is a transient acknowledgment shown to the learner.
type Celebration string

const (
	CelebrationNone        Celebration = ""
	CelebrationBasic       Celebration = "basic"
	CelebrationAmazing     Celebration = "amazing"
	CelebrationMindblowing Celebration = "mindblowing"
	CelebrationPerfect     Celebration = "perfect"
)

// CelebrationFor maps a streak to its milestone. Only the exact milestone values fire,
// so each is reached once per streak run.
func CelebrationFor(streak int) (Celebration, bool) {
	switch streak {
	case 5:
		return CelebrationBasic, true
	case 10:
		return CelebrationAmazing, true
	case 20:
		return CelebrationMindblowing, true
	}
	return CelebrationNone, false
}

// Message is the headline rendered for the celebration.
func (c Celebration) Message() string {
	switch c {
	case CelebrationBasic:
		return "Wow! 5 in a row!"
	case CelebrationAmazing:
		return "Amazing! 10 in a row!"
	case CelebrationMindblowing:
		return "Mind-blowing! 20 in a row!"
	case CelebrationPerfect:
		return "Perfect score!"
	}
	return ""
}

// Celebrations holds the visible celebration and clears it after a timeout. A newer
// celebration supersedes the older one together with its timer.
type Celebrations struct {
	mu       sync.Mutex
	timeout  time.Duration
	current  Celebration
	gen      uint64
	timer    *time.Timer
	onChange func(Celebration)
}

// NewCelebrations calls onChange (may be nil) whenever a timer clears a celebration.
func NewCelebrations(timeout time.Duration, onChange func(Celebration)) *Celebrations {
	if timeout <= 0 {
		timeout = DefaultCelebrationTimeout
	}
	return &Celebrations{timeout: timeout, onChange: onChange}
}

// Show makes kind the visible celebration.
func (c *Celebrations) Show(kind Celebration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
	c.current = kind
	gen := c.gen
	c.timer = time.AfterFunc(c.timeout, func() { c.expire(gen) })
}

// Current returns the visible celebration, or CelebrationNone.
func (c *Celebrations) Current() Celebration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Clear hides the visible celebration immediately.
func (c *Celebrations) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
	c.current = CelebrationNone
}

// Stop cancels any pending timer; call on teardown.
func (c *Celebrations) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
}

func (c *Celebrations) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Celebrations) expire(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.current = CelebrationNone
	c.timer = nil
	onChange := c.onChange
	c.mu.Unlock()

	if onChange != nil {
		onChange(CelebrationNone)
	}
}
