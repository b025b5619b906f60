package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArrayScan(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want []string
	}{
		{"nil", nil, []string{}},
		{"json array", `["Auto lot size","Trailing stop"]`, []string{"Auto lot size", "Trailing stop"}},
		{"bytes", []byte(`["MT4"]`), []string{"MT4"}},
		{"blank entries", `[" News filter ",""," "]`, []string{"News filter"}},
		{"one per line", "VPS recommended\r\n\nECN account\n", []string{"VPS recommended", "ECN account"}},
		{"null", "null", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var a StringArray
			require.NoError(t, a.Scan(tc.in))
			assert.Equal(t, tc.want, []string(a))
		})
	}

	var a StringArray
	assert.Error(t, a.Scan(`["unterminated"`))
	assert.Error(t, a.Scan(42))
}

func TestStringArrayValue(t *testing.T) {
	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = StringArray{" a ", "", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)
}

func TestBlogPrimarySeoPicksLowestID(t *testing.T) {
	b := &Blog{SeoMeta: []SeoMeta{
		{Base: Base{ID: 9}, SeoTitle: "later"},
		{Base: Base{ID: 3}, SeoTitle: "first"},
	}}
	require.NotNil(t, b.PrimarySeo())
	assert.Equal(t, "first", b.PrimarySeo().SeoTitle)
	assert.Nil(t, (&Blog{}).PrimarySeo())
}
