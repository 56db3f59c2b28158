package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art followed by the subtitle lines,
// every line horizontally centred for the current terminal width.
func RenderBanner(subtitles ...string) string {
	return centerBlock(termWidth(), append(strings.Split(strings.TrimRight(bannerRaw, "\n"), "\n"), subtitles...))
}

func centerBlock(width int, lines []string) string {
	maxW := 0
	for _, l := range lines {
		maxW = max(maxW, len([]rune(l)))
	}
	pad := 0
	if width > maxW {
		pad = (width - maxW) / 2
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.Repeat(" ", pad))
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
