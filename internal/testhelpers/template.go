package testhelpers

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TemplateRenderer renders a templ component once and offers chained
// assertions on the resulting HTML.
type TemplateRenderer struct {
	t    *testing.T
	html string
}

// Render renders component and fails the test on error.
func Render(t *testing.T, component templ.Component) *TemplateRenderer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, component.Render(context.Background(), &buf), "render component")
	return &TemplateRenderer{t: t, html: buf.String()}
}

// HTML returns the rendered markup.
func (r *TemplateRenderer) HTML() string {
	return r.html
}

// AssertContains checks the HTML contains substring.
func (r *TemplateRenderer) AssertContains(substring string) *TemplateRenderer {
	r.t.Helper()
	assert.Contains(r.t, r.html, substring)
	return r
}

// AssertNotContains checks the HTML does not contain substring.
func (r *TemplateRenderer) AssertNotContains(substring string) *TemplateRenderer {
	r.t.Helper()
	assert.NotContains(r.t, r.html, substring)
	return r
}

// AssertHasElementWithID checks for an element with the given id.
func (r *TemplateRenderer) AssertHasElementWithID(id string) *TemplateRenderer {
	r.t.Helper()
	if !strings.Contains(r.html, `id="`+id+`"`) && !strings.Contains(r.html, `id='`+id+`'`) {
		r.t.Errorf("expected element with id=%q\nHTML: %s", id, r.html)
	}
	return r
}

// AssertHasDatastarAttribute checks for a data-<attribute> with value.
func (r *TemplateRenderer) AssertHasDatastarAttribute(attribute, value string) *TemplateRenderer {
	r.t.Helper()
	name := "data-" + attribute
	if !strings.Contains(r.html, name+`="`+value+`"`) && !strings.Contains(r.html, name+`='`+value+`'`) {
		r.t.Errorf("expected attribute %s=%q\nHTML: %s", name, value, r.html)
	}
	return r
}

// AssertElementCount checks how many <tag> elements were rendered.
func (r *TemplateRenderer) AssertElementCount(tag string, want int) *TemplateRenderer {
	r.t.Helper()
	got := len(regexp.MustCompile(`<` + regexp.QuoteMeta(tag) + `[\s>]`).FindAllString(r.html, -1))
	assert.Equal(r.t, want, got, "<%s> elements", tag)
	return r
}
