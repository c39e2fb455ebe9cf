package model

import "testing"

func TestListOptions_Clamp(t *testing.T) {
	tests := []struct {
		name       string
		input      ListOptions
		wantLimit  int
		wantOffset int
	}{
		{"zero limit", ListOptions{}, 20, 0},
		{"negative limit", ListOptions{Limit: -1}, 20, 0},
		{"over max", ListOptions{Limit: 500}, 100, 0},
		{"negative offset", ListOptions{Limit: 5, Offset: -7}, 5, 0},
		{"policy filter untouched", ListOptions{Limit: 30, Offset: 4, Policy: "rr"}, 30, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := tt.input.Policy
			tt.input.Clamp()
			if tt.input.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.wantLimit)
			}
			if tt.input.Offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.wantOffset)
			}
			if tt.input.Policy != policy {
				t.Errorf("Policy = %q, want %q", tt.input.Policy, policy)
			}
		})
	}
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total, limit, offset int
		hasMore              bool
	}{
		{0, 20, 0, false},
		{3, 2, 0, true},
		{3, 2, 2, false},
		{4, 2, 2, false},
	}
	for _, tt := range tests {
		pg := NewPagination(tt.total, ListOptions{Limit: tt.limit, Offset: tt.offset})
		if pg.Total != tt.total || pg.Limit != tt.limit || pg.Offset != tt.offset || pg.HasMore != tt.hasMore {
			t.Errorf("NewPagination(%d, %d/%d) = %+v, want has_more %v", tt.total, tt.limit, tt.offset, pg, tt.hasMore)
		}
	}
}
