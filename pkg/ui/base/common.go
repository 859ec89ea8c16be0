package base

import "strings"

// PadString pads a string to the specified width with spaces
func PadString(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Bar draws a fixed-width gauge of filled out of total cells.
func Bar(filled, total, width int) string {
	if total <= 0 || width <= 0 {
		return ""
	}
	n := filled * width / total
	n = max(0, min(n, width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
