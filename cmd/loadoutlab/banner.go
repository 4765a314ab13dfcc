package main

import (
	"fmt"
	"io"
	"strings"
)

// ANSI escape codes
const (
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

const bannerWidth = 62

var logo = []string{
	"  _                    _             _   _           _     ",
	" | |    ___   __ _  __| | ___  _   _| |_| |    __ _ | |__  ",
	" | |   / _ \\ / _` |/ _` |/ _ \\| | | | __| |   / _` || '_ \\ ",
	" | |__| (_) | (_| | (_| | (_) | |_| | |_| |__| (_| || |_) |",
	" |_____\\___/ \\__,_|\\__,_|\\___/ \\__,_|\\__|_____\\__,_||_.__/ ",
}

// showBanner prints the boxed logo
func showBanner(w io.Writer) {
	border := strings.Repeat("═", bannerWidth)

	fmt.Fprintf(w, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		if pad := bannerWidth - len(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		fmt.Fprintf(w, "  %s║%s%s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	fmt.Fprintf(w, "  %s╚%s╝%s\n\n", cyan, border, reset)
}
