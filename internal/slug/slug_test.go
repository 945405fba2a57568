package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Casa Azul", "casa-azul"},
		{"accents stripped", "Casa Familiar — Pisco! 2024", "casa-familiar-pisco-2024"},
		{"spanish diacritics", "Departamento en Ñaña, cerca al río", "departamento-en-nana-cerca-al-rio"},
		{"symbols removed", "Casa (nueva) #3 @ centro", "casa-nueva-3-centro"},
		{"whitespace runs", "  Casa \t con   vista  ", "casa-con-vista"},
		{"hyphen runs", "casa--con---guiones", "casa-con-guiones"},
		{"edge hyphens trimmed", "- casa -", "casa"},
		{"all symbols collapse to empty", "!!! ??? ***", ""},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Generate(tc.title))
		})
	}
}

func TestGenerateCharsetAndLength(t *testing.T) {
	titles := []string{
		"Casa Familiar — Pisco! 2024",
		"ÁÉÍÓÚ äëïöü çñ 42",
		strings.Repeat("casa bonita frente al mar ", 20),
		"日本語のタイトル casa 7",
	}
	for _, title := range titles {
		got := Generate(title)
		assert.LessOrEqual(t, len(got), 100, "slug too long for %q", title)
		assert.False(t, strings.HasPrefix(got, "-"), "leading hyphen for %q", title)
		assert.False(t, strings.HasSuffix(got, "-"), "trailing hyphen for %q", title)
		assert.NotContains(t, got, "--", "consecutive hyphens for %q", title)
		for _, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, ok, "unexpected rune %q in slug for %q", r, title)
		}
	}
}

func TestGenerateIdempotent(t *testing.T) {
	for _, title := range []string{"Casa Azul", "Casa Familiar — Pisco! 2024", "depa-miraflores-2"} {
		once := Generate(title)
		assert.Equal(t, once, Generate(once))
	}
}

// fakeStore answers SlugExists from a fixed slug -> owner map.
type fakeStore struct {
	slugs map[string]uint64
	err   error
	calls int
}

func (f *fakeStore) SlugExists(ctx context.Context, slug string, excludeID uint64) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.slugs[slug]
	if !ok {
		return false, nil
	}
	return owner != excludeID || excludeID == 0, nil
}

func TestResolveNoCollision(t *testing.T) {
	r := NewResolver(&fakeStore{slugs: map[string]uint64{}})
	got, err := r.Resolve(context.Background(), "Casa Azul", 0)
	require.NoError(t, err)
	assert.Equal(t, "casa-azul", got)
}

func TestResolveAppendsCounter(t *testing.T) {
	r := NewResolver(&fakeStore{slugs: map[string]uint64{
		"casa-azul":   7,
		"casa-azul-1": 9,
	}})
	got, err := r.Resolve(context.Background(), "Casa Azul", 0)
	require.NoError(t, err)
	assert.Equal(t, "casa-azul-2", got)
}

func TestResolveExcludesOwnProperty(t *testing.T) {
	// Editing property 7 with an unchanged title must keep its slug.
	r := NewResolver(&fakeStore{slugs: map[string]uint64{"casa-azul": 7}})
	got, err := r.Resolve(context.Background(), "Casa Azul", 7)
	require.NoError(t, err)
	assert.Equal(t, "casa-azul", got)
}

func TestResolveEmptySlugFallback(t *testing.T) {
	store := &fakeStore{slugs: map[string]uint64{"propiedad": 3}}
	r := NewResolver(store)
	got, err := r.Resolve(context.Background(), "!!!", 0)
	require.NoError(t, err)
	assert.Equal(t, "propiedad-1", got)
}

func TestResolvePropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	r := NewResolver(&fakeStore{err: boom})
	_, err := r.Resolve(context.Background(), "Casa Azul", 0)
	require.ErrorIs(t, err, boom)
}
