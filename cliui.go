package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	clrDim     = color.New(color.FgHiBlack)
	clrBold    = color.New(color.FgWhite, color.Bold)
	clrSuccess = color.New(color.FgGreen)
	clrError   = color.New(color.FgRed)
	clrWarning = color.New(color.FgYellow)
	clrInfo    = color.New(color.FgBlue)
)

// printStatus writes a one-line status message for the one-shot commands.
func printStatus(w io.Writer, category, message string) {
	var icon string
	switch category {
	case "success":
		icon = clrSuccess.Sprint("✔")
	case "error":
		icon = clrError.Sprint("✖")
		message = clrError.Sprint(message)
	case "warning":
		icon = clrWarning.Sprint("⚠")
	case "info":
		icon = clrInfo.Sprint("ℹ")
	default:
		icon = clrDim.Sprint("●")
	}
	fmt.Fprintf(w, "%s  %s\n", icon, message)
}

// printColor writes one labelled color line with a true-color swatch.
func printColor(w io.Writer, label string, c Color) {
	swatch := color.BgRGB(int(c.R), int(c.G), int(c.B)).Sprint("      ")
	fmt.Fprintf(w, "  %s %s  %s  %s  %s\n",
		clrDim.Sprintf("%-8s", label), swatch, clrBold.Sprint(c.Hex()), c.RGB(), clrDim.Sprintf("alpha %d", c.A))
}

// printShades writes c between its lighter and darker variants.
func printShades(w io.Writer, c Color) {
	printColor(w, "lighter", Lighter(c))
	printColor(w, "color", c)
	printColor(w, "darker", Darker(c))
}
