package page

import (
	"errors"
	"testing"
)

func TestDefaultConfigConstants(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ContentHeight(); got != 973 {
		t.Fatalf("content height: got %v, want 973", got)
	}
	if got := cfg.MarginStack(); got != 190 {
		t.Fatalf("margin stack: got %v, want 190", got)
	}
	if got := cfg.ContentWidth(); got != 644 {
		t.Fatalf("content width: got %v, want 644", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidateRejectsNoContentArea(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MarginTop = 600
	cfg.MarginBottom = 600
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for margins larger than the page")
	}
}

func TestLayoutResultValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  *LayoutResult
		wantErr bool
	}{
		{name: "nil", result: nil, wantErr: true},
		{name: "single page", result: &LayoutResult{PageCount: 1}},
		{name: "zero pages", result: &LayoutResult{PageCount: 0}, wantErr: true},
		{
			name: "count mismatch",
			result: &LayoutResult{PageCount: 3, PageStarts: []PageStart{
				{Pos: 10, PageNumber: 2},
			}},
			wantErr: true,
		},
		{
			name: "positions not increasing",
			result: &LayoutResult{PageCount: 3, PageStarts: []PageStart{
				{Pos: 10, PageNumber: 2},
				{Pos: 10, PageNumber: 3},
			}},
			wantErr: true,
		},
		{
			name: "page numbers skip",
			result: &LayoutResult{PageCount: 2, PageStarts: []PageStart{
				{Pos: 10, PageNumber: 3},
			}},
			wantErr: true,
		},
		{
			name: "valid",
			result: &LayoutResult{PageCount: 3, PageStarts: []PageStart{
				{Pos: 10, PageNumber: 2, RemainingSpace: 12},
				{Pos: 40, PageNumber: 3},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.result.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLayout) {
					t.Fatalf("expected ErrInvalidLayout, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRectContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 24}
	if !r.Contains(10, 20) {
		t.Fatal("top-left corner should be inside")
	}
	if r.Contains(10, 44) {
		t.Fatal("bottom edge should be outside")
	}
	if r.Bottom() != 44 {
		t.Fatalf("bottom: got %v", r.Bottom())
	}
}
