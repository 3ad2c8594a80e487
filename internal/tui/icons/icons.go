// ABOUTME: Icon set with Nerd Font detection and Unicode fallback
// ABOUTME: Used by the TUI frame, toasts and directory views

package icons

import (
	"os"
	"slices"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// nerdFontTerminals commonly ship with a patched font
var nerdFontTerminals = []string{"iTerm.app", "alacritty", "WezTerm", "kitty", "ghostty"}

func detectNerdFonts() bool {
	if v := os.Getenv("INTRANET_NERD_FONTS"); v != "" {
		return v == "1" || strings.EqualFold(v, "true")
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")
	return slices.ContainsFunc(nerdFontTerminals, func(t string) bool {
		return strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t))
	})
}

// HasNerdFonts reports whether Nerd Font glyphs should be used
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon has a Nerd Font glyph and a plain Unicode fallback
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the variant supported by the terminal
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	App    = Icon{"󰡉", "◈"} // nf-md-account_group
	User   = Icon{"", "●"} // nf-oct-person
	Admin  = Icon{"󰒃", "★"} // nf-md-shield_check
	Mail   = Icon{"", "✉"} // nf-oct-mail
	Phone  = Icon{"", "☎"} // nf-oct-device_mobile
	Cake   = Icon{"󰃩", "✱"} // nf-md-cake
	Place  = Icon{"", "⌂"} // nf-oct-location
	Tag    = Icon{"", "#"} // nf-oct-tag
	Chart  = Icon{"󰄭", "▁"} // nf-md-chart_line
	Search = Icon{"", "⌕"} // nf-oct-search
	Lock   = Icon{"", "⚿"} // nf-oct-lock

	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Random  = Icon{"󰒝", "⚄"} // nf-md-shuffle
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
)
