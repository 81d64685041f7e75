package cleaner

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/robotomize/corpsuite/internal/logging"
)

func TestCleaner_Clean(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		files     []string
		dirs      []string
		removed   int
		remaining []string
		err       bool
	}{
		{
			name: "test_ok",
			files: []string{
				"test-output/reports/TestReport_2024-03-01_10-00-00.html",
				"test-output/screenshots/TC013_2024-03-01_10-00-00.png",
				"target/allure-results/abc-result.json",
				"target/allure-results/nested/x.txt",
				"keep/me.txt",
			},
			dirs:      []string{"test-output/reports", "test-output/screenshots", "target/allure-results", "target/allure-report"},
			removed:   4,
			remaining: []string{"keep/me.txt"},
		},
		{
			name:    "test_missing_dirs",
			dirs:    []string{"test-output/reports", ""},
			removed: 0,
		},
		{
			name:      "test_file_instead_of_dir",
			files:     []string{"test-output/reports"},
			dirs:      []string{"test-output/reports"},
			remaining: []string{"test-output/reports"},
			err:       true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fsys := afero.NewMemMapFs()
			for _, f := range tc.files {
				require.NoError(t, afero.WriteFile(fsys, f, []byte("x"), 0o644))
			}

			n, err := New(fsys).Clean(context.Background(), tc.dirs...)
			if (err != nil) != tc.err {
				t.Fatalf("got: %v, want error: %v", err, tc.err)
			}

			require.Equal(t, tc.removed, n)

			var remaining []string
			for _, f := range tc.files {
				ok, err := afero.Exists(fsys, f)
				require.NoError(t, err)
				if ok {
					remaining = append(remaining, f)
				}
			}

			if diff := cmp.Diff(tc.remaining, remaining); diff != "" {
				t.Errorf("mismatch (-want, +got):\n%s", diff)
			}

			for _, dir := range tc.dirs {
				if dir == "" || tc.err {
					continue
				}
				if ok, _ := afero.DirExists(fsys, dir); ok {
					entries, err := afero.ReadDir(fsys, dir)
					require.NoError(t, err)
					require.Empty(t, entries)
				}
			}
		})
	}
}

func TestCleaner_Logging(t *testing.T) {
	t.Parallel()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "test-output/reports/a.html", []byte("x"), 0o644))

	logger := &logging.Recorder{}
	_, err := New(fsys, WithLogger(logger), WithConcurrency(1)).Clean(context.Background(), "test-output/reports", "target/allure-report")
	require.NoError(t, err)

	expected := []string{
		"Cleaning directory: test-output/reports",
		"Directory does not exist: target/allure-report",
	}
	if diff := cmp.Diff(expected, logger.Levels("info")); diff != "" {
		t.Errorf("mismatch (-want, +got):\n%s", diff)
	}

	require.Equal(t, []string{"Deleted file: test-output/reports/a.html"}, logger.Levels("debug"))
	require.Len(t, logger.Levels("done"), 1)
}

func TestCleaner_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(afero.NewMemMapFs()).Clean(ctx, "test-output/reports")
	require.ErrorIs(t, err, context.Canceled)
}
