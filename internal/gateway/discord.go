package gateway

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// DiscordAdapter announces to one Discord channel and listens for
// suggestion commands anywhere the bot can read.
type DiscordAdapter struct {
	token     string
	channelID string
	session   *discordgo.Session
	handler   MessageHandler
	logger    *zap.Logger
}

// NewDiscordAdapter creates a Discord adapter. channelID is where
// announcements land.
func NewDiscordAdapter(token, channelID string, logger *zap.Logger) *DiscordAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscordAdapter{
		token:     token,
		channelID: channelID,
		logger:    logger,
	}
}

// Name implements Adapter.
func (a *DiscordAdapter) Name() string { return "discord" }

// OnMessage implements Adapter.
func (a *DiscordAdapter) OnMessage(h MessageHandler) { a.handler = h }

// Start opens the Discord gateway websocket.
func (a *DiscordAdapter) Start(_ context.Context) error {
	session, err := discordgo.New("Bot " + a.token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	a.session = session

	a.session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent
	a.session.AddHandler(a.onMessageCreate)

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}

	if len(a.session.State.Guilds) == 0 {
		a.logger.Warn("discord bot not added to any server, invite it first")
	}
	a.logger.Info("discord adapter connected",
		zap.String("user", a.session.State.User.Username),
		zap.Int("guilds", len(a.session.State.Guilds)))
	return nil
}

func (a *DiscordAdapter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.ID == s.State.User.ID {
		return
	}
	if a.handler == nil {
		return
	}

	reply := a.handler(&InboundMessage{
		Platform:  "discord",
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		UserName:  m.Author.Username,
		Content:   m.Content,
		Timestamp: m.Timestamp,
	})
	if reply == "" {
		return
	}
	if _, err := s.ChannelMessageSend(m.ChannelID, reply); err != nil {
		a.logger.Warn("discord reply failed",
			zap.String("channel", m.ChannelID), zap.Error(err))
	}
}

// Announce posts to the configured announcement channel.
func (a *DiscordAdapter) Announce(_ context.Context, ann Announcement) error {
	if a.channelID == "" {
		return nil
	}
	content := fmt.Sprintf("**%s**\n%s", ann.Title, ann.Body)
	if _, err := a.session.ChannelMessageSend(a.channelID, content); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}

// Stop shuts down the Discord session.
func (a *DiscordAdapter) Stop() error {
	if a.session != nil {
		return a.session.Close()
	}
	return nil
}
