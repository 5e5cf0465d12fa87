package notification

// Log messages
const (
	LogMsgNoticeSent = "Participant notified"
)
