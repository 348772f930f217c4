package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tutorkit/pkg/config"
)

// setupEnv points the chat log at a temp directory and clears cached config.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHATLOG_DRIVER", "file")
	t.Setenv("CHATLOG_DIR", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOG_LEVEL", "error")
	config.Reset()
	t.Cleanup(config.Reset)
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// every invocation parses the environment again
	config.Reset()

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func fakeOpenAI(t *testing.T, replies ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		n := int(calls.Add(1)) - 1
		reply := replies[min(n, len(replies)-1)]

		body, _ := json.Marshal(map[string]any{
			"id":    "chatcmpl-test",
			"model": "gpt-3.5-turbo-0613",
			"choices": []map[string]any{
				{"index": 0, "message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestTemplatesCommand(t *testing.T) {
	setupEnv(t)

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "templates")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "hint_sequence")
		assert.Contains(t, out, "math_application_qa_intro")
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "--json", "templates")
		require.NoError(t, err)

		var rows []struct {
			Name  string   `json:"name"`
			Slots []string `json:"slots"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &rows))
		require.NotEmpty(t, rows)

		var found bool
		for _, r := range rows {
			if r.Name == "hint_sequence" {
				found = true
				assert.Contains(t, r.Slots, "question")
				assert.Contains(t, r.Slots, "incorrect_answer")
			}
		}
		assert.True(t, found)
	})
}

func TestHintCommand_DryRun(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "hint",
		"--question", "What is 1/2 + 1/4?",
		"--correct", "3/4",
		"--incorrect", "2/6",
		"--lesson", "Fractions with different denominators",
		"--dry-run",
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "system: "))
	assert.Contains(t, out, "What is 1/2 + 1/4?")
	assert.Contains(t, out, "The correct answer is 3/4, but the student answered 2/6.")
	assert.Contains(t, out, "Fractions with different denominators")
	assert.NotContains(t, out, "{question}")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "dry run must not log")
}

func TestHintCommand_DryRunFollowUps(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "--json", "hint",
		"--question", "What is 1/2 + 1/4?",
		"--correct", "3/4",
		"--incorrect", "2/6",
		"--followup", "Why do I need a common denominator?",
		"--followup", "What is a quarter?",
		"--dry-run",
	)
	require.NoError(t, err)

	var res struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Messages, 3)
	assert.Equal(t, "system", res.Messages[0].Role)
	assert.Equal(t, "user", res.Messages[1].Role)
	assert.Equal(t, "Why do I need a common denominator?", res.Messages[1].Content)
	assert.Equal(t, "What is a quarter?", res.Messages[2].Content)

	_, err = run(t, "hint", "--question", "2+2?", "--correct", "4", "--incorrect", "5",
		"--followup", "   ", "--dry-run")
	require.Error(t, err)
}

func TestHintCommand_LessonTrimmed(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "hint",
		"--type", "quick_math_revision",
		"--question", "What is 7 x 8?",
		"--correct", "56",
		"--incorrect", "54",
		"--lesson", "  Times tables up to 10  ",
		"--dry-run",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "===\nTimes tables up to 10\n")
	assert.NotContains(t, out, "  Times tables up to 10  ")
}

func TestHintCommand_DryRunRetrievalTemplate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "--json", "hint",
		"--type", "math_application_qa_intro",
		"--question", "A bag holds 12 mangoes. How many in 3 bags?",
		"--correct", "36",
		"--incorrect", "15",
		"--lesson", "Multiplying by repeated addition",
		"--dry-run",
	)
	require.NoError(t, err)

	var res struct {
		ChatID   string `json:"chat_id"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.ChatID)
	require.NotEmpty(t, res.Messages)
	assert.Contains(t, res.Messages[0].Content, "Multiplying by repeated addition")
	assert.NotContains(t, res.Messages[0].Content, "{rori_microlesson_texts}")
	assert.NotContains(t, res.Messages[0].Content, "{openstax_subsection_texts}")
}

func TestHintCommand_Errors(t *testing.T) {
	setupEnv(t)

	t.Run("missing flags", func(t *testing.T) {
		_, err := run(t, "hint", "--question", "2+2?")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "required flag")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, err := run(t, "hint", "--type", "nope", "--question", "2+2?", "--correct", "4", "--incorrect", "5", "--dry-run")
		require.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := run(t, "hint", "--question", "2+2?", "--correct", "4", "--incorrect", "5")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("CHATLOG_DRIVER", "sqlite")
		_, err := run(t, "chats", "list")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite")
	})
}

func TestHintCommand_WithCompletion(t *testing.T) {
	dir := setupEnv(t)
	srv, calls := fakeOpenAI(t, "Hint 1: add the quarters.", "Turn 1/2 into 2/4 first.")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")

	out, err := run(t, "hint",
		"--question", "What is 1/2 + 1/4?",
		"--correct", "3/4",
		"--incorrect", "2/6",
		"--followup", "How do I change 1/2?",
	)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, out, "Hint 1: add the quarters.")
	assert.Contains(t, out, "> How do I change 1/2?")
	assert.Contains(t, out, "Turn 1/2 into 2/4 first.")

	files, err := filepath.Glob(filepath.Join(dir, "*.ndjson"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	t.Run("list shows the logged chat", func(t *testing.T) {
		out, err := run(t, "--json", "chats", "list")
		require.NoError(t, err)

		var records []struct {
			ChatID   string `json:"chat_id"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &records))
		require.Len(t, records, 1)

		// the latest record holds the intro, the first reply and the follow-up
		msgs := records[0].Messages
		require.Len(t, msgs, 3)
		assert.Equal(t, "assistant", msgs[1].Role)
		assert.Equal(t, "Hint 1: add the quarters.", msgs[1].Content)
		assert.Equal(t, "How do I change 1/2?", msgs[2].Content)

		show, err := run(t, "chats", "show", records[0].ChatID)
		require.NoError(t, err)
		assert.Contains(t, show, "user: How do I change 1/2?")
	})

	t.Run("search", func(t *testing.T) {
		out, err := run(t, "chats", "search", "quarters")
		require.NoError(t, err)
		assert.Contains(t, out, "CHAT ID")

		out, err = run(t, "chats", "search", "pineapple")
		require.NoError(t, err)
		assert.Contains(t, out, "no chats")
	})

	t.Run("stats", func(t *testing.T) {
		out, err := run(t, "chats", "stats")
		require.NoError(t, err)
		assert.Contains(t, out, "sessions: 1")
		assert.Contains(t, out, "messages: 3")
	})

	t.Run("export", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "chats.html")
		out, err := run(t, "chats", "export", target)
		require.NoError(t, err)
		assert.Contains(t, out, "exported 1 chat(s)")

		html, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(html), "Hint 1: add the quarters.")
	})

	t.Run("cleanup keeps recent logs", func(t *testing.T) {
		out, err := run(t, "chats", "cleanup", "--days", "30")
		require.NoError(t, err)
		assert.Contains(t, out, "deleted 0")
	})
}

func TestChatsCommand_Empty(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "chats", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "no chats")

	out, err = run(t, "--json", "chats", "list")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)

	out, err = run(t, "chats", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "sessions: 0")

	_, err = run(t, "chats", "show", "missing")
	require.Error(t, err)

	_, err = run(t, "chats", "cleanup", "--days", "-1")
	require.Error(t, err)
}

func TestEnvFileFlag(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "--env-file", filepath.Join(t.TempDir(), "missing.env"), "templates")
	require.Error(t, err)

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("COMPLETION_MODEL=gpt-4\n"), 0o600))
	t.Setenv("COMPLETION_MODEL", "")
	require.NoError(t, os.Unsetenv("COMPLETION_MODEL"))

	_, err = run(t, "--env-file", envFile, "templates")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4", os.Getenv("COMPLETION_MODEL"))
}

func TestCheckCommand(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "--json", "check")
	require.NoError(t, err)

	var res checkResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "file", res.Driver)
	assert.True(t, res.Reachable)
	assert.False(t, res.APIKeySet)
	assert.Equal(t, "gpt-3.5-turbo-0613", res.Model)

	t.Run("unreachable redis", func(t *testing.T) {
		t.Setenv("CHATLOG_DRIVER", "redis")
		t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")
		t.Setenv("REDIS_RETRY_ATTEMPTS", "1")
		t.Setenv("REDIS_RETRY_INTERVAL", "10ms")
		t.Setenv("REDIS_CONNECT_TIMEOUT", "2s")

		out, err := run(t, "check")
		require.Error(t, err)
		assert.Contains(t, out, "chat log (redis): failed")
	})
}
