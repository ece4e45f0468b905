package view

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderErrorPage(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	err = engine.Render(rr, "pages/error.html", TemplateData{
		Title: "Erro",
		Data:  map[string]any{"Message": "API de vendas inacessível"},
	})
	assert.NoError(t, err)
	assert.True(t, strings.Contains(rr.Body.String(), "API de vendas inacessível"))
}
