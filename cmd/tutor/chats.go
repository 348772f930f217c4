package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/tutorkit/pkg/chatlog"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

func newChatsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Inspect and maintain the chat log",
	}

	cmd.AddCommand(
		newChatsListCmd(a),
		newChatsShowCmd(a),
		newChatsSearchCmd(a),
		newChatsStatsCmd(a),
		newChatsExportCmd(a),
		newChatsCleanupCmd(a),
	)
	return cmd
}

// withChatLog opens the chat log for the duration of fn.
func (a *app) withChatLog(cmd *cobra.Command, fn func(l *chatlog.Log) error) error {
	l, closeLog, err := a.openChatLog(cmd.Context())
	if err != nil {
		return err
	}
	defer closeLog()
	return fn(l)
}

func newChatsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every chat ordered by logged time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				records, err := l.List(cmd.Context())
				if err != nil {
					return err
				}
				return a.printRecords(cmd, records)
			})
		},
	}
}

func newChatsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <chat-id>",
		Short: "Print the latest messages of one chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				r, err := l.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if a.asJSON {
					return writeJSON(cmd.OutOrStdout(), r)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "chat %s (%s)\n\n", r.ChatID, r.LoggedAt().Format(time.DateTime))
				_, err = fmt.Fprintln(out, prompt.ConversationString(r.Messages))
				return err
			})
		},
	}
}

func newChatsSearchCmd(a *app) *cobra.Command {
	var field string

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find chats with a message field containing keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				records, err := l.Search(cmd.Context(), args[0], chatlog.Field(field))
				if err != nil {
					return err
				}
				return a.printRecords(cmd, records)
			})
		},
	}
	cmd.Flags().StringVar(&field, "field", string(chatlog.FieldContent), "Message field to search: content or role")
	return cmd
}

func newChatsStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the chat log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				stats, err := l.Statistics(cmd.Context())
				if err != nil {
					return err
				}
				if a.asJSON {
					return writeJSON(cmd.OutOrStdout(), stats)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "sessions: %d\n", stats.TotalSessions)
				fmt.Fprintf(out, "messages: %d\n", stats.TotalMessages)
				fmt.Fprintf(out, "average:  %.2f\n", stats.AvgMessages)
				if stats.TotalSessions > 0 {
					fmt.Fprintf(out, "earliest: %s\n", stats.Earliest.Format(time.DateTime))
					fmt.Fprintf(out, "latest:   %s\n", stats.Latest.Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func newChatsExportCmd(a *app) *cobra.Command {
	var chatID string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write chats to an HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}

				n, err := l.ExportHTML(cmd.Context(), f, chatID)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d chat(s) to %s\n", n, args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "Export only this chat")
	return cmd
}

func newChatsCleanupCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete chat logs older than --days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			return a.withChatLog(cmd, func(l *chatlog.Log) error {
				deleted, err := l.Cleanup(cmd.Context(), time.Duration(days)*24*time.Hour)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", deleted)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Age threshold in days")
	return cmd
}

func (a *app) printRecords(cmd *cobra.Command, records []chatlog.Record) error {
	out := cmd.OutOrStdout()
	if a.asJSON {
		if records == nil {
			records = []chatlog.Record{}
		}
		return writeJSON(out, records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no chats")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "CHAT ID\tLOGGED\tMESSAGES")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.ChatID, r.LoggedAt().Format(time.DateTime), len(r.Messages))
	}
	return w.Flush()
}
