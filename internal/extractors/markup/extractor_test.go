package markup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func TestExtract_StripsTags(t *testing.T) {
	e := New()
	html := "<html><body><p>plain paragraph text</p></body></html>"

	result, err := e.Extract(context.Background(), &domain.RawInput{Content: []byte(html)})

	require.NoError(t, err)
	assert.Contains(t, result.Text, "plain paragraph text")
	assert.NotContains(t, result.Text, "<p>")
}

func TestExtract_ParagraphsBecomeBoundaries(t *testing.T) {
	e := New()
	html := "<p>first block</p><p>second block</p>"

	result, err := e.Extract(context.Background(), &domain.RawInput{Content: []byte(html)})

	require.NoError(t, err)
	require.Len(t, result.Boundaries, 2)
	assert.Equal(t, 0, result.Boundaries[0])
}

func TestExtract_NilInput(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtract_RejectsInvalidUTF8(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), &domain.RawInput{
		Content: []byte{'<', 'p', '>', 0xff, 0xfe},
	})
	assert.ErrorIs(t, err, domain.ErrCorruptInput)
}

func TestExtract_EmptyMarkup(t *testing.T) {
	e := New()
	result, err := e.Extract(context.Background(), &domain.RawInput{
		Content: []byte("<html><body></body></html>"),
	})

	require.NoError(t, err)
	assert.Empty(t, result.Text)
	assert.Empty(t, result.Boundaries)
}
