package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"

	ChatSessionDefaultTitle = "Unnamed session"
	ChatGreetingMessage     = "Hi, upload a C snippet and I'll analyze it for you."
)
