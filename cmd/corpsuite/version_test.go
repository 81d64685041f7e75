package main

import (
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRevision(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		settings []debug.BuildSetting
		expected string
	}{
		{
			name: "test_clean",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "4f1c2d9e8a7b6c5d4e3f"},
				{Key: "vcs.modified", Value: "false"},
			},
			expected: "4f1c2d9e8a7b",
		},
		{
			name: "test_dirty",
			settings: []debug.BuildSetting{
				{Key: "vcs.modified", Value: "true"},
				{Key: "vcs.revision", Value: "abc123"},
			},
			expected: "abc123-dirty",
		},
		{
			name:     "test_no_vcs",
			settings: []debug.BuildSetting{{Key: "vcs.modified", Value: "true"}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tc.expected, revision(tc.settings)); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}
