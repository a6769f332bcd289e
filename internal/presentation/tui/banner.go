package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the stackbt banner to w.
func PrintBanner(w io.Writer, p termenv.Profile) {
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct {
		text  string
		color string
	}{
		{"      _             _    _     _   ", "#818cf8"},
		{"  ___| |_ __ _  ___| | _| |__ | |_ ", "#a78bfa"},
		{" / __| __/ _` |/ __| |/ / '_ \\| __|", "#c084fc"},
		{" \\__ \\ || (_| | (__|   <| |_) | |_ ", "#e879f9"},
		{" |___/\\__\\__,_|\\___|_|\\_\\_.__/ \\__|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
