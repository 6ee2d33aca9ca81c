package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// SlackAdapter announces to one Slack channel over Socket Mode and
// listens for suggestion commands.
type SlackAdapter struct {
	client  *slack.Client
	socket  *socketmode.Client
	channel string
	handler MessageHandler
	logger  *zap.Logger
}

// NewSlackAdapter creates a Slack adapter. botToken is the Bot User OAuth
// Token (xoxb-...), appToken the App-Level Token (xapp-...) for Socket
// Mode, channel the announcement channel ID.
func NewSlackAdapter(botToken, appToken, channel string, logger *zap.Logger) *SlackAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := slack.New(botToken,
		slack.OptionAppLevelToken(appToken),
	)
	socket := socketmode.New(client,
		socketmode.OptionLog(zap.NewStdLog(logger)),
	)
	return &SlackAdapter{
		client:  client,
		socket:  socket,
		channel: channel,
		logger:  logger,
	}
}

// Name implements Adapter.
func (a *SlackAdapter) Name() string { return "slack" }

// OnMessage implements Adapter.
func (a *SlackAdapter) OnMessage(h MessageHandler) { a.handler = h }

// Start runs the Socket Mode event loop in background goroutines.
func (a *SlackAdapter) Start(ctx context.Context) error {
	go a.handleEvents(ctx)
	go func() {
		if err := a.socket.RunContext(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("slack socket mode error", zap.Error(err))
		}
	}()
	a.logger.Info("slack adapter connected via socket mode")
	return nil
}

func (a *SlackAdapter) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-a.socket.Events:
			if !ok {
				return
			}
			a.processEvent(evt)
		}
	}
}

func (a *SlackAdapter) processEvent(evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeEventsAPI:
		eventsAPI, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		a.socket.Ack(*evt.Request)

		if eventsAPI.Type == slackevents.CallbackEvent {
			switch inner := eventsAPI.InnerEvent.Data.(type) {
			case *slackevents.MessageEvent:
				// Ignore bot messages to avoid loops
				if inner.BotID != "" {
					return
				}
				a.handleSlackMessage(inner)
			}
		}
	}
}

func (a *SlackAdapter) handleSlackMessage(ev *slackevents.MessageEvent) {
	if a.handler == nil {
		return
	}

	reply := a.handler(&InboundMessage{
		Platform:  "slack",
		ChannelID: ev.Channel,
		UserID:    ev.User,
		UserName:  ev.User,
		Content:   ev.Text,
		Timestamp: time.Now(),
	})
	if reply == "" {
		return
	}

	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}
	opts := []slack.MsgOption{
		slack.MsgOptionText(reply, false),
		slack.MsgOptionTS(threadTS),
	}
	if _, _, err := a.client.PostMessage(ev.Channel, opts...); err != nil {
		a.logger.Warn("slack reply failed",
			zap.String("channel", ev.Channel), zap.Error(err))
	}
}

// Announce posts to the configured announcement channel.
func (a *SlackAdapter) Announce(_ context.Context, ann Announcement) error {
	if a.channel == "" {
		return nil
	}
	text := fmt.Sprintf("*%s*\n%s", ann.Title, ann.Body)
	if _, _, err := a.client.PostMessage(a.channel, slack.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	return nil
}

// Stop is a no-op; the socket context cancellation handles shutdown.
func (a *SlackAdapter) Stop() error {
	return nil
}
