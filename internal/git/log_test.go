package git_test

import (
	"testing"

	"github.com/waabox/stagedeck/internal/git"
)

func TestParseLog(t *testing.T) {
	out := "abc123def4567\x1ffix: handle empty stages\x1fAda\n" +
		"0011223344556\x1fsubject with | pipes\x1fGrace Hopper\n\n"

	commits := git.ParseLog(out)

	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].SHA != "abc123def4567" || commits[0].Subject != "fix: handle empty stages" || commits[0].Author != "Ada" {
		t.Errorf("unexpected first commit: %+v", commits[0])
	}
	if commits[1].ShortSHA() != "0011223" {
		t.Errorf("expected short SHA '0011223', got '%s'", commits[1].ShortSHA())
	}
}

func TestParseLog_Empty(t *testing.T) {
	if commits := git.ParseLog(""); len(commits) != 0 {
		t.Errorf("expected no commits, got %d", len(commits))
	}
}
