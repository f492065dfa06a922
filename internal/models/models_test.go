package models

import (
	"strings"
	"testing"
)

func TestSearchRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SearchRequest
		wantErr error
	}{
		{"ok", SearchRequest{Query: "laptop", Limit: 10}, nil},
		{"empty query", SearchRequest{Query: ""}, ErrInvalidQuery},
		{"query too long", SearchRequest{Query: strings.Repeat("x", 201)}, ErrInvalidQuery},
		{"limit too high", SearchRequest{Query: "laptop", Limit: 101}, ErrInvalidLimit},
		{"limit negative", SearchRequest{Query: "laptop", Limit: -1}, ErrInvalidLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSearchRequestDefaultLimit(t *testing.T) {
	req := SearchRequest{Query: "laptop"}
	if err := req.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if req.Limit != LimitDefault {
		t.Errorf("Limit = %d; want default %d", req.Limit, LimitDefault)
	}
}
