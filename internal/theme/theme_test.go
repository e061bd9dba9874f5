package theme

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := For(&buf)

	assert.Equal(t, "NULL", s.Null.Render("NULL"))
	assert.Equal(t, "primary", s.Active.Render("primary"))
}
