//go:build integration

package pypi

import (
	"context"
	"testing"
	"time"
)

func TestFetchPackage_Integration(t *testing.T) {
	client := NewClient(nil, "", "depman/integration-test")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		{"requests", "requests", false},
		{"flask", "flask", false},
		{"nonexistent", "this-package-should-not-exist-12345", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := client.FetchPackage(ctx, tt.pkg, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchPackage(%q) error = %v, wantErr %v", tt.pkg, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if info.Version == "" {
				t.Error("Version should not be empty")
			}
			if info.ReleaseDate == nil {
				t.Error("ReleaseDate should be known for a published project")
			}
		})
	}
}
