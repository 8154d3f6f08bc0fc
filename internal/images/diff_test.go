package images

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

func ref(id string) ImageRef {
	return ImageRef{ImageURL: "https://assets.test/" + id, PublicID: id}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name       string
		current    []ImageRef
		desired    []ImageRef
		wantDelete []ImageRef
		wantInsert []ImageRef
	}{
		{
			name:       "replace one keep one",
			current:    []ImageRef{ref("a"), ref("b")},
			desired:    []ImageRef{ref("b"), ref("c")},
			wantDelete: []ImageRef{ref("a")},
			wantInsert: []ImageRef{ref("c")},
		},
		{
			name:       "clear all",
			current:    []ImageRef{ref("a"), ref("b")},
			desired:    nil,
			wantDelete: []ImageRef{ref("a"), ref("b")},
		},
		{
			name:       "duplicates collapse to first",
			desired:    []ImageRef{ref("x"), {ImageURL: "other", PublicID: "x"}, ref("y")},
			wantInsert: []ImageRef{ref("x"), ref("y")},
		},
		{
			name:    "unchanged",
			current: []ImageRef{ref("a")},
			desired: []ImageRef{ref("a")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toDelete, toInsert, err := Diff(tt.current, tt.desired)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelete, toDelete)
			assert.Equal(t, tt.wantInsert, toInsert)
		})
	}
}

func TestDiffRejectsBlankPublicID(t *testing.T) {
	_, _, err := Diff(nil, []ImageRef{ref("a"), {ImageURL: "u", PublicID: "  "}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
