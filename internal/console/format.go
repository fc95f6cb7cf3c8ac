package console

import (
	"time"

	"github.com/fatih/color"
)

const (
	previewLimit  = 25
	previewLength = 22
	timeLayout    = "2006-01-02 15:04"
)

type palette struct {
	title   *color.Color
	success *color.Color
	failure *color.Color
}

func newPalette(enabled bool) *palette {
	p := &palette{
		title:   color.New(color.FgCyan, color.Bold),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
	}
	if !enabled {
		p.title.DisableColor()
		p.success.DisableColor()
		p.failure.DisableColor()
	}
	return p
}

// preview shortens long message content for the chat list.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

func formatTime(t time.Time) string {
	return t.Local().Format(timeLayout)
}
