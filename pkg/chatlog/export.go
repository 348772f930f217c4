package chatlog

import (
	"context"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/logger"
	"github.com/dmitrymomot/tutorkit/pkg/prompt"
)

var exportTemplate = template.Must(template.New("export").Funcs(template.FuncMap{
	"roleClass": func(r prompt.Role) string {
		if r == prompt.RoleUser {
			return "user"
		}
		return "assistant"
	},
	"roleTitle": func(r prompt.Role) string {
		s := string(r)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"isoTime": func(r Record) string {
		return r.LoggedAt().Format(time.RFC3339)
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chat Logs Export</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; }
.chat { border: 1px solid #ddd; margin-bottom: 20px; padding: 15px; border-radius: 5px; }
.message { margin-bottom: 10px; white-space: pre-wrap; }
.user { color: #0066cc; }
.assistant { color: #009933; }
.role { font-weight: bold; }
.timestamp { color: #666; font-size: 0.8em; }
.chat-id { font-size: 0.9em; color: #888; }
</style>
</head>
<body>
<h1>Chat Logs Export</h1>
{{- range .}}
<div class="chat">
<div class="chat-id">Chat ID: {{.ChatID}}</div>
<div class="timestamp">Logged: {{isoTime .}}</div>
{{- range .Messages}}
<div class="message {{roleClass .Role}}"><span class="role">{{roleTitle .Role}}:</span> <span class="content">{{.Content}}</span></div>
{{- end}}
</div>
{{- end}}
</body>
</html>
`))

// ExportHTML writes chatID, or every chat when chatID is empty, as a
// standalone HTML page and returns the number of chats written. Message text
// is escaped.
func (l *Log) ExportHTML(ctx context.Context, w io.Writer, chatID string) (int, error) {
	var records []Record
	if chatID != "" {
		r, err := l.Get(ctx, chatID)
		if err != nil {
			return 0, err
		}
		records = []Record{r}
	} else {
		all, err := l.List(ctx)
		if err != nil {
			return 0, err
		}
		records = all
	}

	if len(records) == 0 {
		l.log.WarnContext(ctx, "no chats found to export")
		return 0, ErrNoChats
	}

	if err := exportTemplate.Execute(w, records); err != nil {
		return 0, err
	}

	l.log.InfoContext(ctx, "chats exported", logger.Count(len(records)))
	return len(records), nil
}
