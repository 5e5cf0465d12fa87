package domain

// NotificationKind enumerates the out-of-band notices sent to participants
type NotificationKind string

const (
	NotifyChallengeReceived NotificationKind = "challenge_received"
	NotifyChallengeDeclined NotificationKind = "challenge_declined"
	NotifyCounterProposed   NotificationKind = "counter_proposed"
	NotifyDuelStarted       NotificationKind = "duel_started"
	NotifyYourTurn          NotificationKind = "your_turn"
	NotifyDuelEnded         NotificationKind = "duel_ended"
)
