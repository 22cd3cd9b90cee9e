package artifact

import "strings"

// verticalFonts are rendered with --writing_mode=vertical-upright.
var verticalFonts = []string{
	"TakaoExGothic",
	"TakaoExMincho",
	"AR PL UKai Patched",
	"AR PL UMing Patched Light",
	"Baekmuk Batang Patched",
}

// isVerticalFont reports whether the font must be rendered vertically.
func isVerticalFont(font string) bool {
	for _, f := range verticalFonts {
		if f == font {
			return true
		}
	}
	return false
}

// makeFontName converts a font name into a form safe for file names by
// dropping commas and replacing spaces with underscores.
func makeFontName(font string) string {
	return strings.ReplaceAll(strings.ReplaceAll(font, " ", "_"), ",", "")
}
