package main

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// specialKeys maps non-printing keys to their Hack keyboard codes.
var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:     128,
	ebiten.KeyBackspace: 129,
	ebiten.KeyLeft:      130,
	ebiten.KeyUp:        131,
	ebiten.KeyRight:     132,
	ebiten.KeyDown:      133,
	ebiten.KeyHome:      134,
	ebiten.KeyEnd:       135,
	ebiten.KeyPageUp:    136,
	ebiten.KeyPageDown:  137,
	ebiten.KeyInsert:    138,
	ebiten.KeyDelete:    139,
	ebiten.KeyEscape:    140,
	ebiten.KeyF1:        141,
	ebiten.KeyF2:        142,
	ebiten.KeyF3:        143,
	ebiten.KeyF4:        144,
	ebiten.KeyF5:        145,
	ebiten.KeyF6:        146,
	ebiten.KeyF7:        147,
	ebiten.KeyF8:        148,
	ebiten.KeyF9:        149,
	ebiten.KeyF10:       150,
	ebiten.KeyF11:       151,
}

// keyboard tracks the key code the Hack keyboard register should hold.
type keyboard struct {
	held uint16
}

// update folds one frame of input into the held key code. chars are the
// characters typed this frame and pressed the keys currently down.
func (k *keyboard) update(chars []rune, pressed []ebiten.Key) uint16 {
	if len(pressed) == 0 {
		k.held = 0
		return 0
	}
	for _, key := range pressed {
		if code, ok := specialKeys[key]; ok {
			k.held = code
			return code
		}
	}
	for _, r := range chars {
		if r >= 32 && r < 127 {
			k.held = uint16(r)
		}
	}
	return k.held
}
