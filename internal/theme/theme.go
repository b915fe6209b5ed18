// Package theme holds the Nord palette used across the interface.
package theme

import (
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/waabox/stagedeck/internal/domain"
)

// Nord palette. See https://www.nordtheme.com/.
var (
	Nord0  = mustHex("#2e3440")
	Nord1  = mustHex("#3b4252")
	Nord2  = mustHex("#434c5e")
	Nord3  = mustHex("#4c566a")
	Nord4  = mustHex("#d8dee9")
	Nord5  = mustHex("#e5e9f0")
	Nord6  = mustHex("#eceff4")
	Nord7  = mustHex("#8fbcbb")
	Nord8  = mustHex("#88c0d0")
	Nord9  = mustHex("#81a1c1")
	Nord10 = mustHex("#5e81ac")
	Nord11 = mustHex("#bf616a")
	Nord12 = mustHex("#d08770")
	Nord13 = mustHex("#ebcb8b")
	Nord14 = mustHex("#a3be8c")
	Nord15 = mustHex("#b48ead")
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Semantic aliases.
var (
	Background = Nord0
	Border     = Nord3
	Text       = Nord4
	TextDim    = Nord3
	TextBright = Nord6
	Accent     = Nord8
	Error      = Nord11
	Info       = Nord12
)

// StatusColor is the color of a pipeline or job status in the pipeline pane.
func StatusColor(s domain.PipelineStatus) colorful.Color {
	switch s {
	case domain.StatusSuccess:
		return Nord14
	case domain.StatusRunning, domain.StatusCanceled, domain.StatusCanceling:
		return Nord8
	case domain.StatusPending, domain.StatusWaitingForResource, domain.StatusPreparing:
		return Nord13
	case domain.StatusFailed:
		return Nord11
	case domain.StatusSkipped:
		return Nord3
	case domain.StatusManual:
		return Nord15
	default:
		return Nord4
	}
}

// StageColor is StatusColor of the stage, except that a stage holding both
// failed and passing jobs gets its own color.
func StageColor(s domain.Stage) colorful.Color {
	if s.HasMixedFailure() {
		return Info
	}
	return StatusColor(s.Status())
}

// CommitHashColor colors a commit hash in the commit list by pipeline status.
func CommitHashColor(s domain.PipelineStatus) colorful.Color {
	switch s {
	case domain.StatusSuccess:
		return Nord14
	case domain.StatusRunning, domain.StatusPending, domain.StatusPreparing:
		return Nord10
	case domain.StatusFailed:
		return Nord11
	case domain.StatusCanceled, domain.StatusCanceling:
		return Nord8
	case domain.StatusSkipped, domain.StatusManual, domain.StatusWaitingForResource:
		return Nord12
	default:
		return Nord4
	}
}

// Blend mixes c toward target by t in [0,1] in RGB space.
func Blend(c, target colorful.Color, t float64) colorful.Color {
	switch {
	case t <= 0:
		return c
	case t >= 1:
		return target
	}
	return c.BlendRgb(target, t).Clamped()
}

// Dim pulls c halfway toward the background.
func Dim(c colorful.Color) colorful.Color {
	return Blend(c, Background, 0.45)
}

// Brighten pulls c toward the bright text color.
func Brighten(c colorful.Color) colorful.Color {
	return Blend(c, TextBright, 0.35)
}
