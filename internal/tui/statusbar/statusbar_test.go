package statusbar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestView(t *testing.T) {
	m := New()
	m.SetWidth(100)
	assert.Contains(t, m.View(), "disconnected")

	m.SetConnection("primary", "shop")
	m.SetPane("tables")
	view := m.View()
	assert.Contains(t, view, "shop (primary)")
	assert.Contains(t, view, "tables")
	assert.Contains(t, view, "ctrl+e: run")

	m.SetError("Connection failed")
	assert.Contains(t, m.View(), "Connection failed")
	assert.NotContains(t, m.View(), "ctrl+e: run")

	m.SetMessage("")
	assert.Empty(t, m.Message())
	assert.Contains(t, m.View(), "ctrl+e: run")
}

func TestView_TargetMatchingDatabase(t *testing.T) {
	m := New()
	m.SetWidth(80)
	m.SetConnection("shop", "shop")

	assert.NotContains(t, m.View(), "(shop)")
}
