package texture

import (
	"fmt"
	"strings"
)

// Key identifies a rotator icon texture.
type Key struct {
	Border string
	Arrow  string
	Size   int
}

func (k Key) String() string {
	return fmt.Sprintf("rotator:%s:%s:%d", strings.ToLower(k.Border), strings.ToLower(k.Arrow), k.Size)
}

// RotatorIconSVG returns the rotator icon: a filled disc with a border and
// a curved two-headed arrow. The drawing uses a 24x24 view box and scales
// to size pixels.
func RotatorIconSVG(border, arrow string, size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 24 24">`, size, size)
	fmt.Fprintf(&b, `<circle cx="12" cy="12" r="10.5" fill="#ffffff" stroke="%s" stroke-width="2"/>`, border)
	fmt.Fprintf(&b, `<path d="M7 14 C7 9.5 9.5 7.5 12 7.5 C14.5 7.5 17 9.5 17 14" fill="none" stroke="%s" stroke-width="1.8" stroke-linecap="round"/>`, arrow)
	fmt.Fprintf(&b, `<polygon points="4.6,12.6 9.4,12.6 7,16.4" fill="%s"/>`, arrow)
	fmt.Fprintf(&b, `<polygon points="14.6,12.6 19.4,12.6 17,16.4" fill="%s"/>`, arrow)
	b.WriteString(`</svg>`)
	return b.String()
}
