package discord

import "github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"

// Embed colors
const (
	ColorChallenge = 0x3498db
	ColorTurn      = 0xf1c40f
	ColorStarted   = 0x2ecc71
	ColorEnded     = 0x9b59b6
	ColorDeclined  = 0xe74c3c
)

// FooterBothSides is shown under every notice
const FooterBothSides = "Both Sides"

type noticeTemplate struct {
	title string
	body  string
	color int
}

var noticeTemplates = map[domain.NotificationKind]noticeTemplate{
	domain.NotifyChallengeReceived: {"⚔️ New Challenge", "<@%s> you have been challenged to a duel.", ColorChallenge},
	domain.NotifyChallengeDeclined: {"🚫 Challenge Declined", "<@%s> your challenge was declined.", ColorDeclined},
	domain.NotifyCounterProposed:   {"🔁 Counter Proposal", "<@%s> your opponent proposed a different duration.", ColorChallenge},
	domain.NotifyDuelStarted:       {"🎬 Duel Started", "<@%s> your duel has begun.", ColorStarted},
	domain.NotifyYourTurn:          {"⏳ Your Turn", "<@%s> the clock is running. Present your ground.", ColorTurn},
	domain.NotifyDuelEnded:         {"🏁 Duel Over", "<@%s> your duel has ended.", ColorEnded},
}

// Log messages
const (
	LogMsgNoticeFailed = "Failed to deliver Discord notice"
)
