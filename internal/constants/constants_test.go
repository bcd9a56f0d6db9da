package constants_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sudokufaceoff/faceoff/internal/constants"
)

func TestGetDefaultConfigPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		baseDir func() (string, error)

		want string
	}{
		"Base dir is joined with app folder": {
			baseDir: func() (string, error) { return "abc/def", nil },
			want:    filepath.Join("abc/def", constants.DefaultAppFolder),
		},
		"Error returns empty path": {
			baseDir: func() (string, error) { return "", errors.New("error") },
			want:    "",
		},
		"Error with partial dir returns empty path": {
			baseDir: func() (string, error) { return "abc", errors.New("error") },
			want:    "",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got := constants.GetDefaultConfigPath(constants.WithBaseDir(tc.baseDir))
			assert.Equal(t, tc.want, got)
		})
	}
}
