// Package tutor ties prompt assembly, completion and chat logging into a
// hint session.
//
// A Session is created per conversation. NewHint validates the problem,
// loads the hint template, fills the question, correct_answer,
// incorrect_answer and lesson slots and returns the opening messages.
// FollowUp adds a student turn. Respond calls the completion endpoint, stores
// the assistant reply and logs the exchange under the session's chat id.
//
//	session, err := tutor.NewSession(prompt.NewManager(strategy), prompt.DefaultLibrary(),
//	    tutor.WithChatLog(chats))
//	messages, err := session.NewHint(ctx, "hint_sequence", tutor.HintRequest{
//	    Question:        "What is 1/2 + 1/4?",
//	    CorrectAnswer:   "3/4",
//	    IncorrectAnswer: "2/6",
//	})
//	reply, err := session.Respond(ctx, client, "", messages)
package tutor
