// Command tutor builds retrieval-augmented hint prompts for a math tutor,
// sends them to an OpenAI compatible chat endpoint and keeps a chat log.
//
// Configuration comes from the environment (and an optional dotfile):
// OPENAI_API_KEY, COMPLETION_MODEL, EMBEDDING_MODEL, CHATLOG_DRIVER and the
// REDIS_* / PG_* settings of the chosen backend.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
