package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tutorkit/pkg/prompt"
	"github.com/dmitrymomot/tutorkit/pkg/retrieval"
	"github.com/dmitrymomot/tutorkit/pkg/tutor"
)

// Placeholders used by the retrieval templates. Without a corpus mapping the
// lesson text stands in for the micro-lesson and the textbook section is empty.
const (
	slotMicrolessonTexts = "rori_microlesson_texts"
	slotOpenstaxTexts    = "openstax_subsection_texts"
)

type hintOptions struct {
	hintType  string
	request   tutor.HintRequest
	corpus    string
	followUps []string
	dryRun    bool
	showQuery bool
}

func newHintCmd(a *app) *cobra.Command {
	opts := &hintOptions{}

	cmd := &cobra.Command{
		Use:   "hint",
		Short: "Generate a hint for a wrong answer",
		Long: `Builds the hint prompt for a question the student answered incorrectly and
sends it to the chat completion endpoint. Each --followup continues the same
conversation. With --dry-run the assembled messages, follow-ups included, are
printed instead.`,
		Example: `  tutor hint --question "What is 1/2 + 1/4?" --correct 3/4 --incorrect 2/6
  tutor hint --type quick_math_revision --corpus lessons.yaml --question "..." --correct 5 --incorrect 6 --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHint(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.hintType, "type", "hint_sequence", "Hint template name (see 'tutor templates')")
	f.StringVar(&opts.request.Question, "question", "", "Question text")
	f.StringVar(&opts.request.CorrectAnswer, "correct", "", "Correct answer")
	f.StringVar(&opts.request.IncorrectAnswer, "incorrect", "", "The student's incorrect answer")
	f.StringVar(&opts.request.Lesson, "lesson", "", "Lesson text to ground the hint")
	f.StringVar(&opts.corpus, "corpus", "", "YAML file mapping placeholders to reference corpora")
	f.StringArrayVar(&opts.followUps, "followup", nil, "Follow-up question (repeatable)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "Print the assembled messages without calling the completion API")
	f.BoolVar(&opts.showQuery, "show-prompt", false, "Print the full prompt before each reply")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("correct")
	_ = cmd.MarkFlagRequired("incorrect")

	return cmd
}

func (a *app) runHint(cmd *cobra.Command, opts *hintOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	strategy, err := a.newStrategy(opts.corpus)
	if err != nil {
		return err
	}

	sessionOpts := []tutor.Option{
		tutor.WithLogger(a.log),
		tutor.WithDefaultSlots(retrieval.SlotMap{
			slotMicrolessonTexts: strings.TrimSpace(opts.request.Lesson),
			slotOpenstaxTexts:    "",
		}),
	}

	if !opts.dryRun {
		chats, closeLog, err := a.openChatLog(ctx)
		if err != nil {
			return err
		}
		defer closeLog()
		sessionOpts = append(sessionOpts, tutor.WithChatLog(chats))
	}

	manager := prompt.NewManager(strategy, prompt.WithLogger(a.log))
	session, err := tutor.NewSession(manager, prompt.DefaultLibrary(), sessionOpts...)
	if err != nil {
		return err
	}

	messages, err := session.NewHint(ctx, opts.hintType, opts.request)
	if err != nil {
		return err
	}

	if opts.dryRun {
		// without replies each follow-up is appended as a user turn
		for _, query := range opts.followUps {
			if messages, err = session.FollowUp(ctx, query); err != nil {
				return err
			}
		}
		return a.printMessages(out, session.ChatID(), messages)
	}

	completer, err := a.newCompleter()
	if err != nil {
		return err
	}

	turns := append([]string{""}, opts.followUps...)
	for i, query := range turns {
		if i > 0 {
			if messages, err = session.FollowUp(ctx, query); err != nil {
				return err
			}
		}
		if opts.showQuery {
			fmt.Fprintf(out, "--- prompt ---\n%s\n--------------\n", prompt.ConversationString(messages))
		}

		reply, err := session.Respond(ctx, completer, a.cfg.CompletionModel, messages)
		if err != nil {
			return err
		}

		if a.asJSON {
			if err := writeJSON(out, map[string]any{"chat_id": session.ChatID(), "reply": reply}); err != nil {
				return err
			}
			continue
		}
		if i > 0 {
			fmt.Fprintf(out, "\n> %s\n\n", query)
		}
		fmt.Fprintln(out, reply.Content)
	}

	return nil
}

func (a *app) printMessages(w io.Writer, chatID string, messages []prompt.Message) error {
	if a.asJSON {
		return writeJSON(w, map[string]any{"chat_id": chatID, "messages": messages})
	}
	_, err := fmt.Fprintln(w, prompt.ConversationString(messages))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
