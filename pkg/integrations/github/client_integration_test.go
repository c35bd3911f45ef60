//go:build integration

package github

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/depman/pkg/integrations"
)

func TestFetch_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client, err := NewClient(nil, token, "", "depman/integration-test")
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	m, err := client.Fetch(ctx, "psf", "requests", true)
	if err != nil {
		t.Fatalf("Fetch(psf/requests) error: %v", err)
	}
	if m.Stars <= 0 || m.LastCommitAt == nil {
		t.Errorf("unexpected metrics: %+v", m)
	}

	_, err = client.Fetch(ctx, "nonexistent-owner-12345", "nonexistent-repo", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("missing repo: got %v, want ErrNotFound", err)
	}
}
