package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"ecstasy/internal/stats"
)

// Bot represents the Discord bot
type Bot struct {
	session   *discordgo.Session
	ingestor  *stats.Ingestor
	analytics *stats.Analytics
	logger    logrus.FieldLogger

	rateLimit   time.Duration
	lastCommand map[string]time.Time // userID -> last /stats use
}

// New creates a new Discord bot feeding events into the ingestor and
// answering commands from the analytics reads.
func New(token string, ingestor *stats.Ingestor, analytics *stats.Analytics, rateLimit time.Duration, logger logrus.FieldLogger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates

	// Events are applied to the stats store by one worker at a time.
	session.SyncEvents = true

	bot := &Bot{
		session:     session,
		ingestor:    ingestor,
		analytics:   analytics,
		logger:      logger,
		rateLimit:   rateLimit,
		lastCommand: make(map[string]time.Time),
	}

	session.AddHandler(bot.ready)
	session.AddHandler(bot.messageCreate)
	session.AddHandler(bot.voiceStateUpdate)
	session.AddHandler(bot.interactionCreate)

	return bot, nil
}

// Start starts the bot
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	return nil
}

// Stop stops the bot
func (b *Bot) Stop() error {
	return b.session.Close()
}

// ready registers the slash commands once the gateway is up
func (b *Bot) ready(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.WithField("user", r.User.Username).Info("bot is online")
	if err := b.registerSlashCommands(s); err != nil {
		b.logger.WithError(err).Error("failed to register slash commands")
	}
}

// messageCreate feeds message events into the stats pipeline
func (b *Bot) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	b.ingestor.OnMessage(m.Author.ID, m.ChannelID, time.Now().UTC())
}

// voiceStateUpdate feeds voice transitions into the stats pipeline
func (b *Bot) voiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	prevChannelID := ""
	if vs.BeforeUpdate != nil {
		prevChannelID = vs.BeforeUpdate.ChannelID
	}
	b.ingestor.OnVoiceTransition(vs.UserID, prevChannelID, vs.ChannelID, time.Now().UTC())
}

// allowCommand applies the per-user command rate limit
func (b *Bot) allowCommand(userID string, now time.Time) bool {
	if last, ok := b.lastCommand[userID]; ok && now.Sub(last) < b.rateLimit {
		return false
	}
	b.lastCommand[userID] = now
	return true
}
