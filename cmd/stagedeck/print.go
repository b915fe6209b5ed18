package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/waabox/stagedeck/internal/canvas"
	"github.com/waabox/stagedeck/internal/domain"
	"github.com/waabox/stagedeck/internal/layout"
	"github.com/waabox/stagedeck/internal/pipelineview"
)

var errNoPipeline = errors.New("no pipeline for this commit")

var (
	headerColor    = color.New(color.Bold)
	succeededColor = color.New(color.FgGreen)
	failedColor    = color.New(color.FgRed)
	runningColor   = color.New(color.FgCyan)
	pendingColor   = color.New(color.FgYellow)
	mutedColor     = color.New(color.Faint)
)

func statusColor(s domain.PipelineStatus) *color.Color {
	switch s {
	case domain.StatusSuccess:
		return succeededColor
	case domain.StatusFailed:
		return failedColor
	case domain.StatusRunning:
		return runningColor
	case domain.StatusPending, domain.StatusWaitingForResource, domain.StatusPreparing:
		return pendingColor
	default:
		return mutedColor
	}
}

// printPipeline writes the pipeline diagram of sha followed by a job
// summary.
func printPipeline(ctx context.Context, w io.Writer, source domain.PipelineSource, repo domain.Repository, sha string, width int) error {
	d, err := source.PipelineDetails(ctx, repo.ProjectPath(), sha)
	if err != nil {
		return err
	}
	headerColor.Fprintf(w, "%s @ %s\n", repo.ProjectPath(), domain.Commit{SHA: sha}.ShortSHA())
	if d == nil {
		return errNoPipeline
	}

	if len(d.Stages) > 0 && width > 0 {
		s := pipelineview.NewState(1)
		s.Visit(sha)
		s.SetPipeline(sha, d)
		g := canvas.New(width, layout.Compute(d.Stages, width).TotalHeight+1)
		pipelineview.Render(g, g.Bounds(), s)
		fmt.Fprintln(w, g.Render())
	}

	for _, st := range d.Stages {
		status := st.Status()
		statusColor(status).Fprintf(w, "%s %s\n", status.Symbol(), st.Name)
		for _, j := range st.Jobs {
			fmt.Fprintf(w, "  %s %-30s %s\n", statusColor(j.Status).Sprint(j.Status.Symbol()), j.Name, jobDuration(j))
		}
	}
	fmt.Fprintf(w, "%s %s\n", statusColor(d.Pipeline.Status).Sprint(d.Pipeline.Status), d.Pipeline.WebURL)
	return nil
}

func jobDuration(j domain.Job) string {
	if j.Duration <= 0 {
		return ""
	}
	return j.Duration.Round(time.Second).String()
}
