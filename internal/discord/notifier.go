package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/notification"
)

// Config holds the notifier configuration
type Config struct {
	Token     string
	ChannelID string
	// DuelURL formats a link to a duel, e.g. "https://example.com/duels/%s"
	DuelURL string
}

// embedSender is the slice of *discordgo.Session the notifier uses
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier posts participant notices to a Discord channel
type Notifier struct {
	sender    embedSender
	channelID string
	duelURL   string
}

// New creates a notifier backed by a bot session. The session is REST only,
// no gateway connection is opened.
func New(cfg Config) (*Notifier, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	return newNotifier(s, cfg), nil
}

func newNotifier(sender embedSender, cfg Config) *Notifier {
	return &Notifier{
		sender:    sender,
		channelID: cfg.ChannelID,
		duelURL:   cfg.DuelURL,
	}
}

// Notify sends n as an embed. Participant IDs are mentioned verbatim so
// deployments that key users by Discord snowflake get a ping.
func (n *Notifier) Notify(ctx context.Context, notice notification.Notice) error {
	tmpl, ok := noticeTemplates[notice.Kind]
	if !ok {
		return fmt.Errorf("unknown notice kind %q", notice.Kind)
	}

	embed := createEmbed(tmpl.title, fmt.Sprintf(tmpl.body, notice.UserID), tmpl.color)
	if n.duelURL != "" {
		embed.URL = fmt.Sprintf(n.duelURL, notice.DuelID)
	}

	if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		slog.WarnContext(ctx, LogMsgNoticeFailed, "kind", notice.Kind, "duel_id", notice.DuelID, "error", err)
		return fmt.Errorf("send discord notice: %w", err)
	}
	return nil
}

func createEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: FooterBothSides,
		},
	}
}
