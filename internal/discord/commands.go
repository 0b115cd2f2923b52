package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"ecstasy/pkg/utils"
)

const embedColor = 0x1ABC9C

// registerSlashCommands registers the /stats command globally
func (b *Bot) registerSlashCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "stats",
			Description: "View your stats or server stats",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "me",
					Description: "View your personal last 7-day stats",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "server",
					Description: "View overall server stats",
				},
			},
		},
	}

	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", commands); err != nil {
		return fmt.Errorf("failed to register slash commands: %w", err)
	}
	b.logger.Info("slash commands registered")
	return nil
}

// interactionCreate dispatches /stats subcommands
func (b *Bot) interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != "stats" || len(data.Options) == 0 {
		return
	}

	user := interactionUser(i)
	if user == nil {
		return
	}

	if !b.allowCommand(user.ID, time.Now()) {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: "You're doing that too fast. Please wait a moment.",
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	switch data.Options[0].Name {
	case "me":
		b.handleStatsMe(s, i, user)
	case "server":
		b.handleStatsServer(s, i)
	}
}

// handleStatsMe answers /stats me with the caller's 7-day numbers
func (b *Bot) handleStatsMe(s *discordgo.Session, i *discordgo.InteractionCreate, user *discordgo.User) {
	messages := b.analytics.MessagesInWindow(user.ID, 7)
	voiceSeconds := b.analytics.VoiceSecondsInWindow(user.ID, 7)
	rank := b.analytics.Rank(user.ID)
	totalMessages, totalVoiceSeconds := b.analytics.LifetimeTotals(user.ID)

	voiceField := "No Data"
	if voiceSeconds > 0 {
		voiceField = utils.FormatMinutes(voiceSeconds)
	}

	topChannelsField := "No channel data"
	if top := b.analytics.TopChannels(user.ID, 3, 7); len(top) > 0 {
		var lines []string
		for _, tc := range top {
			lines = append(lines, fmt.Sprintf("• %s: **%d** messages", utils.FormatChannelMention(tc.ChannelID), tc.Count))
		}
		topChannelsField = strings.Join(lines, "\n")
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Ecstasy Stats for %s", user.Username),
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Server Rank", Value: fmt.Sprintf("#%d", rank), Inline: true},
			{Name: "Messages (7d)", Value: fmt.Sprintf("%d", messages), Inline: true},
			{Name: "Voice (7d)", Value: voiceField, Inline: true},
			{Name: "Messages (total)", Value: fmt.Sprintf("%d", totalMessages), Inline: true},
			{Name: "Voice (total)", Value: utils.FormatDuration(int64(totalVoiceSeconds)), Inline: true},
			{Name: "Top Channels (7d)", Value: topChannelsField},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Server Lookback: Last 7 days (UTC) • Provided by Ecstasy",
		},
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// handleStatsServer answers /stats server with 7-day totals and the
// top five users
func (b *Bot) handleStatsServer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	top := b.analytics.TopUsers(5, 7)
	if len(top) == 0 {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Content: "No stats available yet.",
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return
	}

	totalMessages, totalVoiceSeconds := b.analytics.ServerTotals(7)

	var lines []string
	for idx, uc := range top {
		lines = append(lines, utils.FormatLeaderboardEntry(
			idx+1,
			utils.FormatUserMention(uc.UserID),
			fmt.Sprintf("%d messages", uc.Messages),
		))
	}

	embed := &discordgo.MessageEmbed{
		Title: "Ecstasy Server Stats (Last 7 Days)",
		Color: embedColor,
		Description: fmt.Sprintf(
			"**Total Messages (7d):** %d\n**Total Voice (7d):** %s\n\n**Top 5 Users (by messages):**\n%s",
			totalMessages, utils.FormatMinutes(totalVoiceSeconds), strings.Join(lines, "\n"),
		),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Server Lookback: Last 7 days (UTC) • Provided by Ecstasy",
		},
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.WithError(err).Error("failed to respond to interaction")
	}
}

// interactionUser returns the invoking user for guild and DM contexts
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}
