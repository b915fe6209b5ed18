package pipelineview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/theme"
)

func TestOverlayCommitHashes(t *testing.T) {
	s := loaded(t, "abcdef1234567", details(domain.StatusSuccess, job(1, "build", "a", domain.StatusSuccess)))
	g := canvas.New(30, 2)
	g.SetString(2, 0, "abcdef1 fix things", canvas.Style{})
	g.SetString(2, 1, "9999999 unknown", canvas.Style{})

	s.OverlayCommitHashes(g, []HashRow{{Y: 0, SHA: "abcdef1234567"}, {Y: 1, SHA: "9999999000"}})

	for x := 2; x < 9; x++ {
		c, _ := g.Cell(x, 0)
		assert.Equal(t, theme.CommitHashColor(domain.StatusSuccess), c.Style.Fg, "column %d", x)
	}
	c, _ := g.Cell(10, 0)
	assert.False(t, c.Style.HasFg)
	c, _ = g.Cell(2, 1)
	assert.False(t, c.Style.HasFg)
}

func TestOverlayCommitHashes_SkipsNotFound(t *testing.T) {
	s := loaded(t, "abcdef1234567", nil)
	g := canvas.New(20, 1)
	g.SetString(0, 0, "abcdef1", canvas.Style{})

	s.OverlayCommitHashes(g, []HashRow{{Y: 0, SHA: "abcdef1234567"}})

	c, _ := g.Cell(0, 0)
	assert.False(t, c.Style.HasFg)
}

func TestOverlayCommitHashes_SweepsActive(t *testing.T) {
	s := loaded(t, "abcdef1234567", details(domain.StatusRunning, job(1, "build", "a", domain.StatusRunning)))
	g := canvas.New(20, 1)
	g.SetString(0, 0, "abcdef1", canvas.Style{})

	s.OverlayCommitHashes(g, []HashRow{{Y: 0, SHA: "abcdef1234567"}})

	for x := 0; x < 7; x++ {
		c, _ := g.Cell(x, 0)
		assert.True(t, c.Style.HasFg)
	}
}
