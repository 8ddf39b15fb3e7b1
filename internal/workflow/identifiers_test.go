package workflow_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"petdeface/internal/services"
	"petdeface/internal/testsupport"
	"petdeface/internal/workflow"
)

func TestResolveIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		t1      string
		pet     string
		want    workflow.Identifiers
		wantErr error
	}{
		{
			name: "matching subjects",
			t1:   "/data/sub-01/anat/sub-01_T1w.nii.gz",
			pet:  "/data/sub-01/pet/sub-01_pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-01"},
		},
		{
			name: "sessions resolved per file",
			t1:   "/data/sub-01/ses-a/anat/sub-01_ses-a_T1w.nii.gz",
			pet:  "/data/sub-01/ses-a/pet/sub-01_ses-a_pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-01", T1Session: "ses-a", PETSession: "ses-a"},
		},
		{
			name: "fallback when both absent",
			t1:   "/scans/t1.nii.gz",
			pet:  "/scans/pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-temporarydefacee", Fallback: true},
		},
		{
			name: "empty subject value counts as absent",
			t1:   "/scans/sub-_T1w.nii.gz",
			pet:  "/scans/pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-temporarydefacee", Fallback: true},
		},
		{
			name: "fallback drops sessions",
			t1:   "/scans/ses-01/t1.nii.gz",
			pet:  "/scans/ses-01/pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-temporarydefacee", Fallback: true},
		},
		{
			name:    "subject mismatch",
			t1:      "/data/sub-01/anat/sub-01_T1w.nii.gz",
			pet:     "/data/sub-02/pet/sub-02_pet.nii.gz",
			wantErr: services.ErrIdentifierConflict,
		},
		{
			name:    "subject on one side only",
			t1:      "/data/sub-01/anat/sub-01_T1w.nii.gz",
			pet:     "/scans/pet.nii.gz",
			wantErr: services.ErrIdentifierConflict,
		},
		{
			name: "session mismatch is tolerated",
			t1:   "/data/sub-01/ses-a/anat/sub-01_ses-a_T1w.nii.gz",
			pet:  "/data/sub-01/ses-b/pet/sub-01_ses-b_pet.nii.gz",
			want: workflow.Identifiers{Subject: "sub-01", T1Session: "ses-a", PETSession: "ses-b"},
		},
	}

	cfg := testsupport.NewConfig(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := workflow.ResolveIdentifiers(tt.t1, tt.pet, cfg, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ResolveIdentifiers = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestResolveIdentifiersStrictSessions(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStrictSessions())
	_, err := workflow.ResolveIdentifiers(
		"/data/sub-01/ses-a/anat/sub-01_ses-a_T1w.nii.gz",
		"/data/sub-01/pet/sub-01_pet.nii.gz",
		cfg, nil,
	)
	if !errors.Is(err, services.ErrIdentifierConflict) {
		t.Fatalf("expected conflict with strict sessions, got %v", err)
	}
	if !strings.Contains(err.Error(), "ses-a") || !strings.Contains(err.Error(), "<none>") {
		t.Fatalf("expected both sessions in message, got %v", err)
	}
}

func TestResolveIdentifiersWarnsOnSessionMismatch(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := testsupport.NewConfig(t)

	if _, err := workflow.ResolveIdentifiers(
		"/data/sub-01/ses-a/anat/sub-01_ses-a_T1w.nii.gz",
		"/data/sub-01/ses-b/pet/sub-01_ses-b_pet.nii.gz",
		cfg, logger,
	); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, "event_type=session_mismatch") {
		t.Fatalf("expected session mismatch warning, got %s", out)
	}
}
