package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestPrepareProposalInlineText(t *testing.T) {
	svc := NewRunService()

	preview, err := svc.PrepareProposal(context.Background(), PrepareProposalRequest{
		ProposalText: "We will collect consent from users aged 13 and above.\nData is stored in the EU.",
	})
	if err != nil {
		t.Fatalf("PrepareProposal returned error: %v", err)
	}

	if preview.Source != "inline text" {
		t.Errorf("source = %q, want %q", preview.Source, "inline text")
	}
	if preview.Words != 16 {
		t.Errorf("words = %d, want 16", preview.Words)
	}
	if preview.Lines != 2 {
		t.Errorf("lines = %d, want 2", preview.Lines)
	}
	if preview.Characters == 0 {
		t.Error("characters = 0, want the full text length")
	}
}

func TestPrepareProposalTruncatesPreview(t *testing.T) {
	svc := NewRunService()
	long := strings.Repeat("compliance ", 100)

	preview, err := svc.PrepareProposal(context.Background(), PrepareProposalRequest{ProposalText: long})
	if err != nil {
		t.Fatalf("PrepareProposal returned error: %v", err)
	}

	if !strings.HasSuffix(preview.Preview, "...") {
		t.Errorf("long proposal preview not truncated: %q", preview.Preview[:50])
	}
	if len(preview.Preview) > proposalPreviewLength+len("...") {
		t.Errorf("preview length = %d, want <= %d", len(preview.Preview), proposalPreviewLength+3)
	}
	if preview.Characters != len(long) {
		t.Errorf("characters = %d, want %d (stats cover the full text)", preview.Characters, len(long))
	}
}

func TestDeleteRunWithoutRepository(t *testing.T) {
	svc := NewRunService()
	if err := svc.DeleteRun(context.Background(), uuid.New()); err == nil {
		t.Error("expected an error when no run repository is configured")
	}
}

func TestPrepareProposalRejectsEmpty(t *testing.T) {
	svc := NewRunService()

	_, err := svc.PrepareProposal(context.Background(), PrepareProposalRequest{})
	if !errors.Is(err, ErrNoProposalText) {
		t.Errorf("err = %v, want ErrNoProposalText", err)
	}
}
