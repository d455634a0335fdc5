package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	e := NewEngine()

	out, err := e.Render("Question: {{{question}}}", map[string]interface{}{
		"question": "What's the late fee?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Question: What's the late fee?", out)
}

func TestRender_Helpers(t *testing.T) {
	e := NewEngine()

	out, err := e.Render(`[{{{trim padded}}}]`, map[string]interface{}{
		"padded": "\n  open  \n",
	})
	require.NoError(t, err)
	assert.Equal(t, "[open]", out)
}

func TestNewEngine_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewEngine()
		_ = NewEngine()
	})
}

func TestValidateTemplate(t *testing.T) {
	e := NewEngine()

	assert.NoError(t, e.ValidateTemplate("Question: {{{question}}}"))
	assert.Error(t, e.ValidateTemplate("Question: {{#if question}}"))
	assert.Error(t, e.ValidateTemplate("Question: {{{question}}"))
}

func TestRender_Caches(t *testing.T) {
	e := NewEngine()

	_, err := e.Render("{{{a}}}", map[string]interface{}{"a": "x"})
	require.NoError(t, err)
	_, err = e.Render("{{{a}}}", map[string]interface{}{"a": "y"})
	require.NoError(t, err)

	e.mu.RLock()
	assert.Len(t, e.cache, 1)
	e.mu.RUnlock()
}
