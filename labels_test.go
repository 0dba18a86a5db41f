package emotion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadLabels(t *testing.T) {
	tests := []struct {
		name      string
		file      string
		content   string
		want      LabelSet
		configErr bool
	}{
		{name: "json", file: "labels.json", content: `["angry","happy"]`, want: LabelSet{"angry", "happy"}},
		{name: "text", file: "labels.txt", content: "angry\r\n\nhappy\n  sad  \n", want: LabelSet{"angry", "happy", "sad"}},
		{name: "empty text", file: "labels.txt", content: "\n\n", configErr: true},
		{name: "empty json", file: "labels.json", content: `[]`, configErr: true},
		{name: "empty label", file: "labels.json", content: `["angry",""]`, configErr: true},
		{name: "duplicate", file: "labels.txt", content: "happy\nhappy\n", configErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			labels, err := LoadLabels(writeFile(t, tc.file, tc.content))
			if tc.configErr {
				assert.True(t, IsConfigurationError(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, labels)
		})
	}
}

func TestLoadLabelsErrors(t *testing.T) {
	_, err := LoadLabels(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "Can't read labels file")

	_, err = LoadLabels(writeFile(t, "labels.json", `{"angry":0}`))
	assert.ErrorContains(t, err, "Can't parse labels")
	assert.False(t, IsConfigurationError(err))
}
