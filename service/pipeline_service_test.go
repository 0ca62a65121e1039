package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestGetDocumentJobWithoutRepository(t *testing.T) {
	svc := NewPipelineService()
	if _, err := svc.GetDocumentJob(context.Background(), uuid.New()); err == nil {
		t.Error("expected an error when no job repository is configured")
	}
}

func TestGetAnalysisStatusWithoutRepository(t *testing.T) {
	svc := NewPipelineService()
	_, err := svc.GetAnalysisStatus(context.Background(), GetAnalysisStatusRequest{JobID: uuid.New()})
	if err == nil {
		t.Error("expected an error when no job repository is configured")
	}
}
