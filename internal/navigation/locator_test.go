package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/folio/internal/navigation"
)

func TestHrefParts(t *testing.T) {
	h := navigation.Href("text/ch1.xhtml#sec-2")

	assert.Equal(t, "text/ch1.xhtml", h.Path())
	assert.Equal(t, "sec-2", h.Fragment())
	assert.True(t, h.HasFragment())
	assert.Equal(t, navigation.Href("text/ch1.xhtml"), h.WithoutFragment())
	assert.Equal(t, navigation.Href("text/ch1.xhtml#x"), h.WithFragment("x"))
	assert.Equal(t, navigation.Href("text/ch1.xhtml"), h.WithFragment(""))
	assert.False(t, navigation.Href("a.xhtml#").HasFragment())
}

func TestHrefResolve(t *testing.T) {
	base := navigation.Href("text/ch1.xhtml")
	tests := []struct {
		rel  string
		want navigation.Href
	}{
		{"ch2.xhtml", "text/ch2.xhtml"},
		{"ch2.xhtml#n1", "text/ch2.xhtml#n1"},
		{"../images/a.png", "images/a.png"},
		{"#local", "text/ch1.xhtml#local"},
		{"/root.xhtml", "root.xhtml"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Resolve(tt.rel))
		})
	}
}

func TestLocatorConstructors(t *testing.T) {
	assert.Equal(t, 0.0, navigation.AtProgress("a", -1).Progress)
	assert.Equal(t, 1.0, navigation.AtProgress("a", 3).Progress)
	assert.Equal(t, 0.25, navigation.AtProgress("a", 0.25).Progress)

	end := navigation.AtEnd("a")
	assert.True(t, end.End)
	assert.Equal(t, navigation.AtEnd("a"), end)
	assert.NotEqual(t, navigation.AtProgress("a", 1), end)
}

func TestNewTargetValidatesFragment(t *testing.T) {
	n := navigation.ReadingOrderNode{Index: 0}

	_, err := navigation.NewTarget(n, "ok")
	assert.NoError(t, err)
	_, err = navigation.NewTarget(n, "")
	assert.NoError(t, err)
	_, err = navigation.NewTarget(n, "  ")
	assert.Error(t, err)
	_, err = navigation.NewTarget(n, "a#b")
	assert.Error(t, err)
}
