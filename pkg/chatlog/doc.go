// Package chatlog persists chat completions and reconstructs conversations.
//
// Every completion is appended as a Record holding the chat id, the messages
// that were sent, the raw provider response and a logged_timestamp in epoch
// seconds. A chat is logged again after every turn, so the same id appears
// many times; LoadPreviousChats keeps only the record with the greatest
// timestamp per id. When two records tie, the first one read wins.
//
// Three stores are provided:
//
//   - FileStore writes newline-delimited JSON, one file per day
//     (chat_log_YYYYMMDD.ndjson), and reads every *.ndjson file of its
//     directory in lexical order.
//   - RedisStore appends to a single Redis list.
//   - PostgresStore writes to the chat_records table created by the goose
//     migrations in Migrations.
//
// Log sits on top of a Store and adds lookup, continuation matching,
// keyword search, statistics, HTML export and retention cleanup:
//
//	store, err := chatlog.NewFileStore("logs")
//	log, err := chatlog.NewLog(store)
//	err = log.LogCompletion(ctx, chatlog.GenerateChatID(time.Now()), messages, completion.Raw)
//	ids, err := log.MatchingChatIDs(ctx, messages[:1])
package chatlog
