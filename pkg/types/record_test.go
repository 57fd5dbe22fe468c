// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestPairResKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SETSM_s2s041_WV01_20200101_2m_v040103", "SETSM_s2s041_WV01_20200101_2m"},
		{"pair_2m_v4.1.3", "pair_2m"},
		{"pair_2m_v4", "pair_2m"},
		{"pair_2m", "pair_2m"},
		{"pair_2m_version", "pair_2m_version"},
		{"pair_2m_v", "pair_2m_v"},
		{"noseparator", "noseparator"},
	}

	for _, tt := range tests {
		if got := PairResKey(tt.in); got != tt.want {
			t.Errorf("PairResKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelfHref(t *testing.T) {
	item := &Item{Links: []Link{
		{Rel: "parent", Href: "https://x/parent.json"},
		{Rel: "self", Href: "https://x/self.json"},
	}}
	if got := item.SelfHref(); got != "https://x/self.json" {
		t.Errorf("SelfHref() = %q", got)
	}

	empty := &Item{}
	if got := empty.SelfHref(); got != "" {
		t.Errorf("SelfHref() on linkless item = %q, want empty", got)
	}
}
