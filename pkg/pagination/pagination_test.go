package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsValues(t *testing.T) {
	cases := []struct {
		name string
		in   Params
		want Params
	}{
		{"defaults", Params{}, Params{Page: 1, Limit: DefaultLimit}},
		{"limit capped", Params{Page: 2, Limit: 1000}, Params{Page: 2, Limit: MaxLimit}},
		{"negative page", Params{Page: -4, Limit: 5}, Params{Page: 1, Limit: 5}},
		{"zero page", Params{Page: 0, Limit: 50}, Params{Page: 1, Limit: 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, Params{Page: -1, Limit: 20}.Offset())
}

func TestNewMetaRoundsPagesUp(t *testing.T) {
	meta := NewMeta(Params{Page: 2, Limit: 10}, 21)
	assert.Equal(t, Meta{Total: 21, Page: 2, Limit: 10, Pages: 3}, meta)

	empty := NewMeta(Params{}, 0)
	assert.Equal(t, 0, empty.Pages)
	assert.Equal(t, DefaultLimit, empty.Limit)
}
