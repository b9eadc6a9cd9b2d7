package main

import "time"

// heldKeys emulates key-down state. Terminals only report presses and
// auto-repeats, so a key counts as held until hold has passed since its
// last event.
type heldKeys struct {
	hold  time.Duration
	until map[rune]time.Time
}

func newHeldKeys(hold time.Duration) *heldKeys {
	return &heldKeys{hold: hold, until: make(map[rune]time.Time)}
}

// Press records a press or repeat of r at now.
func (k *heldKeys) Press(r rune, now time.Time) {
	k.until[r] = now.Add(k.hold)
}

// Down reports whether r is still held at now.
func (k *heldKeys) Down(r rune, now time.Time) bool {
	return now.Before(k.until[r])
}

// Clear releases every key.
func (k *heldKeys) Clear() {
	clear(k.until)
}
