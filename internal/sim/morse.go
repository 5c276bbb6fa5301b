// internal/sim/morse.go
package sim

import "github.com/tamzrod/cw-keyer/internal/keyer"

// morse maps a symbol onto its element pattern. Prosigns ride on
// punctuation that has no use in command mode.
var morse = map[byte]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".",
	'F': "..-.", 'G': "--.", 'H': "....", 'I': "..", 'J': ".---",
	'K': "-.-", 'L': ".-..", 'M': "--", 'N': "-.", 'O': "---",
	'P': ".--.", 'Q': "--.-", 'R': ".-.", 'S': "...", 'T': "-",
	'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-", 'Y': "-.--",
	'Z': "--..",

	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",

	'?': "..--..", '/': "-..-.", '.': ".-.-.-", ',': "--..--",
	'=': "-...-", '+': ".-.-.", '-': "-....-",
	'#': "...-.-", // SK
	'&': ".-...",  // AS
	'(': "-.--.",  // KN
}

// errorPattern is the eight-dit error prosign.
const errorPattern = "........"

// pattern returns the element pattern for c, folding lower case.
func pattern(c byte) (string, bool) {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	p, ok := morse[c]
	return p, ok
}

// segments keys one pattern: each element followed by an element gap,
// the last one stretched to a character gap.
func segments(p string) []Segment {
	out := make([]Segment, 0, 2*len(p))
	for i := 0; i < len(p); i++ {
		units := 1
		if p[i] == '-' {
			units = keyer.DahLen
		}
		gap := keyer.ElementGap
		if i == len(p)-1 {
			gap = keyer.CharGap
		}
		out = append(out, Segment{On: true, Units: units}, Segment{Units: gap})
	}
	return out
}
