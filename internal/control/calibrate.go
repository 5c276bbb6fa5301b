// internal/control/calibrate.go
package control

import "github.com/tamzrod/cw-keyer/internal/keyer"

// Pitch plays a steady series of E's while the paddle moves the sidetone
// pitch: dit lowers, dah raises. It ends once repeat E's passed without
// paddle activity, or on the control key.
//
// No Beat here: the blocking Char call drives engine timing.
func Pitch(eng keyer.Engine, repeat int) {
	timer := repeat

	for timer > 0 {
		if eng.CtrlKey(true) {
			return
		}
		timer--

		eng.Char('E')

		c := eng.Contacts()
		if c.Dit {
			eng.Pitch(keyer.Down)
			timer = repeat
		}
		if c.Dah {
			eng.Pitch(keyer.Up)
			timer = repeat
		}
	}
}

// Farnsworth plays dit-dah with the configured spacing while the paddle
// moves the Farnsworth speed: dit adds spacing, dah removes it.
func Farnsworth(eng keyer.Engine, repeat int) {
	timer := repeat

	for timer > 0 {
		if eng.CtrlKey(true) {
			return
		}
		timer--

		eng.Element(keyer.Dit)
		eng.Element(keyer.Dah)
		eng.Delay(keyer.CharGap - keyer.ElementGap)
		eng.Farns()

		c := eng.Contacts()
		if c.Dit {
			eng.Speed(keyer.Down, keyer.SpeedFarnsworth)
			timer = repeat
		} else if c.Dah {
			eng.Speed(keyer.Up, keyer.SpeedFarnsworth)
			timer = repeat
		}
	}
}
