// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package worklist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitlesToCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "skips blanks and trims",
			in:   "First Paper\n\n  Second Paper, with comma  \n\n",
			want: "First Paper\n\"Second Paper, with comma\"\n",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
		{
			name: "no trailing newline",
			in:   "Only Paper",
			want: "Only Paper\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			err := TitlesToCSV(strings.NewReader(tt.in), &out)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func writeWorklist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worklist.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadDOIs(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		errMsg  string
	}{
		{
			name:    "reads DOI column and skips blanks",
			content: "Title,DOI\nA paper,10.1111/jofi.1\nAnother, 10.1111/jofi.2 \nBlank,\n",
			want:    []string{"10.1111/jofi.1", "10.1111/jofi.2"},
		},
		{
			name:    "header is case-insensitive",
			content: "title,doi\nA paper,10.1111/jofi.1\n",
			want:    []string{"10.1111/jofi.1"},
		},
		{
			name:    "missing DOI column",
			content: "Title,URL\nA paper,https://example.com\n",
			errMsg:  "no DOI column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWorklist(t, tt.content)

			dois, err := ReadDOIs(path)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dois)
		})
	}
}

func TestReadDOIsMissingFile(t *testing.T) {
	_, err := ReadDOIs(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
