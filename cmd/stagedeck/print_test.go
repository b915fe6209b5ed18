package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/waabox/stagedeck/internal/domain"
)

type stubSource struct {
	details *domain.PipelineDetails
	err     error
}

func (s stubSource) PipelineDetails(context.Context, string, string) (*domain.PipelineDetails, error) {
	return s.details, s.err
}

func (s stubSource) JobTrace(context.Context, string, int64) (string, error) {
	return "", nil
}

func TestPrintPipeline(t *testing.T) {
	color.NoColor = true
	d := domain.NewPipelineDetails(
		domain.Pipeline{ID: 42, Status: domain.StatusSuccess, WebURL: "https://gitlab.com/g/p/-/pipelines/42"},
		[]domain.Job{
			{ID: 1, Name: "compile", Stage: "build", Status: domain.StatusSuccess, Duration: 62 * time.Second},
			{ID: 2, Name: "unit", Stage: "test", Status: domain.StatusSuccess},
		},
	)
	repo := domain.Repository{Host: "gitlab.com", Owner: "g", Name: "p"}
	var out bytes.Buffer

	err := printPipeline(context.Background(), &out, stubSource{details: d}, repo, "abc1234def", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"g/p @ abc1234", "Pipeline #42 - success", "compile", "1m2s", "success https://gitlab.com/g/p/-/pipelines/42"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output, got:\n%s", want, got)
		}
	}
}

func TestPrintPipeline_NoPipeline(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer

	err := printPipeline(context.Background(), &out, stubSource{}, domain.Repository{Name: "p"}, "abc", 60)
	if !errors.Is(err, errNoPipeline) {
		t.Errorf("expected errNoPipeline, got %v", err)
	}
}

func TestPrintPipeline_FetchError(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("boom")

	err := printPipeline(context.Background(), &out, stubSource{err: boom}, domain.Repository{Name: "p"}, "abc", 60)
	if !errors.Is(err, boom) {
		t.Errorf("expected fetch error, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}
