package printer

import (
	"bytes"
	"strings"
)

const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

// Align is an ESC a justification mode
type Align byte

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Size is a GS ! character size
type Size byte

const (
	SizeNormal Size = 0x00
	SizeDouble Size = 0x11
)

// Document builds an ESC/POS byte stream for a thermal receipt printer.
// Methods chain; the stream starts with ESC @.
type Document struct {
	buf   bytes.Buffer
	width int // characters per line: 32 on 58mm paper, 48 on 80mm
}

// NewDocument starts a document laid out for charWidth columns
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.cmd(esc, '@')
	return d
}

func (d *Document) cmd(b ...byte) *Document {
	d.buf.Write(b)
	return d
}

// Align sets the justification of the following lines
func (d *Document) Align(a Align) *Document {
	return d.cmd(esc, 'a', byte(a))
}

// Bold toggles emphasized printing
func (d *Document) Bold(on bool) *Document {
	if on {
		return d.cmd(esc, 'E', 1)
	}
	return d.cmd(esc, 'E', 0)
}

// Size sets the character size
func (d *Document) Size(s Size) *Document {
	return d.cmd(gs, '!', byte(s))
}

// Line writes s and ends the line
func (d *Document) Line(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(lf)
	return d
}

// Blank feeds n empty lines
func (d *Document) Blank(n int) *Document {
	d.buf.Write(bytes.Repeat([]byte{lf}, n))
	return d
}

// Rule prints char across the full width
func (d *Document) Rule(char byte) *Document {
	return d.Line(strings.Repeat(string(char), d.width))
}

// Banner prints s centered in double size bold and leaves alignment
// centered
func (d *Document) Banner(s string) *Document {
	return d.Align(AlignCenter).Bold(true).Size(SizeDouble).Line(s).
		Size(SizeNormal).Bold(false)
}

// Centered prints each non-empty line centered, then restores left
// alignment
func (d *Document) Centered(lines ...string) *Document {
	d.Align(AlignCenter)
	for _, l := range lines {
		if l != "" {
			d.Line(l)
		}
	}
	return d.Align(AlignLeft)
}

// Pair prints key on the left and value right-aligned on the same line.
// A value that does not fit moves to its own right-aligned line.
func (d *Document) Pair(key, value string) *Document {
	gap := d.width - runeLen(key) - runeLen(value)
	if gap < 1 {
		d.Line(key)
		key = ""
		gap = max(d.width-runeLen(value), 0)
	}
	return d.Line(key + strings.Repeat(" ", gap) + value)
}

// StrongPair is Pair printed bold
func (d *Document) StrongPair(key, value string) *Document {
	return d.Bold(true).Pair(key, value).Bold(false)
}

// Wrapped prints s broken into lines of at most the document width,
// splitting on spaces where possible
func (d *Document) Wrapped(s string) *Document {
	for _, line := range wrap(s, d.width) {
		d.Line(line)
	}
	return d
}

// PaymentLine prints one payment of a history: date and method on the left,
// the amount right-aligned, and the receipt number indented underneath
func (d *Document) PaymentLine(date, method, amount, number string) *Document {
	d.Pair(date+" "+method, amount)
	if number != "" {
		d.Line("  " + number)
	}
	return d
}

func runeLen(s string) int {
	return len([]rune(s))
}

func wrap(s string, width int) []string {
	var lines []string
	var line []rune
	for _, word := range strings.Fields(s) {
		w := []rune(word)
		for len(w) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		switch {
		case len(line) == 0:
			line = append(line, w...)
		case len(line)+1+len(w) <= width:
			line = append(line, ' ')
			line = append(line, w...)
		default:
			lines = append(lines, string(line))
			line = append([]rune{}, w...)
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}

// Cut feeds past the tear bar and cuts the paper, leaving a hinge when
// partial is set
func (d *Document) Cut(partial bool) *Document {
	d.Blank(3)
	if partial {
		return d.cmd(gs, 'V', 0x01)
	}
	return d.cmd(gs, 'V', 0x00)
}

// Bytes returns the accumulated ESC/POS byte stream
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
