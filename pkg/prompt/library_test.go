package prompt_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/prompt"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
)

func TestDefaultLibrary(t *testing.T) {
	t.Parallel()

	lib := prompt.DefaultLibrary()
	assert.Equal(t, []string{
		"hint_sequence",
		"math_application_qa_intro",
		"math_with_detailed_explanation",
		"quick_math_revision",
	}, lib.Names())

	entry, err := lib.Get("hint_sequence")
	require.NoError(t, err)
	require.NotEmpty(t, entry.Messages)
	assert.Equal(t, prompt.RoleSystem, entry.Messages[0].Role)

	slots := retrieval.Placeholders(entry.Messages[0].Content)
	assert.ElementsMatch(t, []string{"lesson", "question", "correct_answer", "incorrect_answer"}, slots)

	entry.Messages[0].Content = "mutated"
	again, err := lib.Get("hint_sequence")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Messages[0].Content)
}

func TestLibrary_Get(t *testing.T) {
	t.Parallel()

	_, err := prompt.DefaultLibrary().Get("slip_correction")
	assert.True(t, errors.Is(err, prompt.ErrTemplateNotFound))
}

func TestLoadLibrary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		wantErr error
		wantLen int
	}{
		{
			name: "valid",
			src: `
- name: quick
  messages:
    - role: system
      content: "Hi {question}"
`,
			wantLen: 1,
		},
		{name: "empty document", src: "", wantLen: 0},
		{
			name:    "missing name",
			src:     "- messages: [{role: system, content: x}]",
			wantErr: prompt.ErrInvalidLibrary,
		},
		{
			name:    "duplicate",
			src:     "- {name: a, messages: [{role: system, content: x}]}\n- {name: a, messages: [{role: system, content: y}]}",
			wantErr: prompt.ErrInvalidLibrary,
		},
		{
			name:    "no messages",
			src:     "- name: a",
			wantErr: prompt.ErrEmptyTemplate,
		},
		{
			name:    "bad role",
			src:     "- {name: a, messages: [{role: robot, content: x}]}",
			wantErr: prompt.ErrInvalidRole,
		},
		{
			name:    "malformed",
			src:     "- name: [",
			wantErr: prompt.ErrInvalidLibrary,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lib, err := prompt.LoadLibrary(strings.NewReader(tt.src))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, lib.Len())
		})
	}

	t.Run("pretty name defaults to name", func(t *testing.T) {
		t.Parallel()
		lib, err := prompt.LoadLibrary(strings.NewReader("- {name: a, messages: [{role: user, content: x}]}"))
		require.NoError(t, err)
		e, err := lib.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "a", e.PrettyName)
	})
}
