package prompt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/prompt"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
)

func newManager(t *testing.T, slots retrieval.SlotMap) *prompt.Manager {
	t.Helper()
	return prompt.NewManager(retrieval.NewLiteral(slots))
}

func TestManager_States(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		assert.Equal(t, prompt.StateEmpty, m.State())
		assert.Empty(t, m.StoredMessages())
		assert.Empty(t, m.IntroMessages())
	})

	t.Run("build before intro fails", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)

		_, err := m.BuildQuery(ctx, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, prompt.ErrInvalidState))

		var stateErr *prompt.StateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, prompt.StateEmpty, stateErr.State)
	})

	t.Run("add before intro fails", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)

		err := m.AddStoredMessage(prompt.AssistantMessage("hi"))
		assert.True(t, errors.Is(err, prompt.ErrInvalidState))
		assert.Equal(t, prompt.StateEmpty, m.State())
	})

	t.Run("intro then add then clear", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		intro := prompt.Template{prompt.SystemMessage("You are a tutor.")}

		require.NoError(t, m.SetIntroMessages(intro))
		assert.Equal(t, prompt.StateReady, m.State())

		require.NoError(t, m.AddStoredMessage(prompt.AssistantMessage("Hint 1")))
		assert.Equal(t, prompt.StateActive, m.State())

		m.ClearStoredMessages()
		assert.Equal(t, prompt.StateReady, m.State())
		assert.Empty(t, m.StoredMessages())
		assert.Equal(t, intro, m.IntroMessages())
	})

	t.Run("clear when empty stays empty", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		m.ClearStoredMessages()
		assert.Equal(t, prompt.StateEmpty, m.State())
	})

	t.Run("new intro resets exchange", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("a")}))
		require.NoError(t, m.AddStoredMessage(prompt.AssistantMessage("b")))

		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("c")}))
		assert.Equal(t, prompt.StateReady, m.State())
		assert.Empty(t, m.StoredMessages())
	})

	t.Run("rejects empty template", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		assert.True(t, errors.Is(m.SetIntroMessages(nil), prompt.ErrEmptyTemplate))
		assert.Equal(t, prompt.StateEmpty, m.State())
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("a")}))

		err := m.AddStoredMessage(prompt.Message{Role: "narrator", Content: "x"})
		assert.True(t, errors.Is(err, prompt.ErrInvalidRole))
		assert.Equal(t, prompt.StateReady, m.State())

		err = m.SetIntroMessages(prompt.Template{{Role: "tool", Content: "x"}})
		assert.True(t, errors.Is(err, prompt.ErrInvalidRole))
	})
}

func TestManager_BuildQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("renders intro and appends exchange", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, retrieval.SlotMap{"question": "2+2=?"})
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("Solve: {question}")}))
		require.NoError(t, m.AddStoredMessage(prompt.AssistantMessage("Think about pairs.")))

		got, err := m.BuildQuery(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []prompt.Message{
			prompt.SystemMessage("Solve: 2+2=?"),
			prompt.AssistantMessage("Think about pairs."),
		}, got)

		// the template itself is not modified by rendering
		assert.Equal(t, "Solve: {question}", m.IntroMessages()[0].Content)
	})

	t.Run("user input is appended and stored", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("intro")}))

		got, err := m.BuildQuery(ctx, "Why 4?")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, prompt.UserMessage("Why 4?"), got[1])
		assert.Equal(t, prompt.StateActive, m.State())
		assert.Equal(t, []prompt.Message{prompt.UserMessage("Why 4?")}, m.StoredMessages())
	})

	t.Run("blank input adds nothing", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("intro")}))

		got, err := m.BuildQuery(ctx, "   ")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, prompt.StateReady, m.State())
	})

	t.Run("missing slot leaves state untouched", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("{lesson}")}))

		_, err := m.BuildQuery(ctx, "hello")
		require.Error(t, err)
		assert.True(t, errors.Is(err, retrieval.ErrMissingSlot))
		assert.Equal(t, prompt.StateReady, m.State())
		assert.Empty(t, m.StoredMessages())
	})

	t.Run("no strategy", func(t *testing.T) {
		t.Parallel()
		m := prompt.NewManager(nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("intro")}))

		_, err := m.BuildQuery(ctx, "")
		assert.True(t, errors.Is(err, prompt.ErrNoRetrievalStrategy))

		m.SetRetrievalStrategy(retrieval.NewLiteral(nil))
		assert.NotNil(t, m.RetrievalStrategy())
		_, err = m.BuildQuery(ctx, "")
		assert.NoError(t, err)
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, nil)
		require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("intro")}))
		require.NoError(t, m.AddStoredMessage(prompt.AssistantMessage("a")))

		stored := m.StoredMessages()
		stored[0].Content = "mutated"
		assert.Equal(t, "a", m.StoredMessages()[0].Content)
	})
}

func TestManager_SnapshotRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	m := newManager(t, retrieval.SlotMap{"topic": "fractions"})
	empty := m.Snapshot()

	require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("Tutor on {topic}.")}))
	require.NoError(t, m.AddStoredMessage(prompt.AssistantMessage("Hint 1")))
	snap := m.Snapshot()

	require.NoError(t, m.SetIntroMessages(prompt.Template{prompt.SystemMessage("Other intro.")}))
	assert.Equal(t, prompt.StateReady, m.State())
	assert.Empty(t, m.StoredMessages())

	m.Restore(snap)
	assert.Equal(t, prompt.StateActive, m.State())
	assert.Equal(t, []prompt.Message{prompt.AssistantMessage("Hint 1")}, m.StoredMessages())

	messages, err := m.BuildQuery(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Tutor on fractions.", messages[0].Content)

	m.Restore(empty)
	assert.Equal(t, prompt.StateEmpty, m.State())
	_, err = m.BuildQuery(ctx, "")
	assert.True(t, errors.Is(err, prompt.ErrInvalidState))
}

func TestConversationString(t *testing.T) {
	t.Parallel()

	got := prompt.ConversationString([]prompt.Message{
		prompt.SystemMessage("intro"),
		prompt.UserMessage("question"),
	})
	assert.Equal(t, "system: intro\n\nuser: question", got)
	assert.Equal(t, "", prompt.ConversationString(nil))
}
