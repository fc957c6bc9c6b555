package roles

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	maxButtonsPerRow = 5
	maxRows          = 5
	maxReactions     = 20
	maxLabelLength   = 80

	embedColorGold = 0xF1C40F
)

// MessageSender posts messages and reactions. *discordgo.Session implements it.
type MessageSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
}

// RoleNamer turns role IDs into display names.
type RoleNamer interface {
	RoleName(ctx context.Context, guildID string, roleID uint64) string
}

// Publisher renders a registry into a self-assign message.
type Publisher struct {
	sender MessageSender
	names  RoleNamer
}

func NewPublisher(sender MessageSender, names RoleNamer) *Publisher {
	return &Publisher{sender: sender, names: names}
}

// PublishButtons posts an embed listing the registry's roles with one toggle
// button per role.
func (p *Publisher) PublishButtons(ctx context.Context, reg *Registry, guildID, channelID string, author *discordgo.User) (*discordgo.Message, error) {
	if reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	if reg.Len() > maxButtonsPerRow*maxRows {
		return nil, fmt.Errorf("%w: %d buttons, at most %d", ErrTooManyRoles, reg.Len(), maxButtonsPerRow*maxRows)
	}

	entries := reg.Entries()
	var rows []discordgo.MessageComponent
	var row discordgo.ActionsRow
	mentions := make([]string, 0, len(entries))
	for _, e := range entries {
		row.Components = append(row.Components, discordgo.Button{
			Label:    truncate(p.names.RoleName(ctx, guildID, e.RoleID), maxLabelLength),
			Style:    discordgo.PrimaryButton,
			CustomID: ButtonID(e),
		})
		if len(row.Components) == maxButtonsPerRow {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
		mentions = append(mentions, e.Mention())
	}
	if len(row.Components) > 0 {
		rows = append(rows, row)
	}

	embed := &discordgo.MessageEmbed{
		Author: embedAuthor(author),
		Title:  "Sign up for squad mentions!",
		Description: "Click on one of the buttons to assign or unassign the corresponding squad-role to or from yourself." +
			"\n\nAvailable Roles:\n" + strings.Join(mentions, "\n"),
		Color: embedColorGold,
	}

	msg, err := p.sender.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: rows,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, remote("send self-assign message", err)
	}
	return msg, nil
}

// PublishReactions posts an embed listing emote -> role pairs and seeds the
// message with every configured reaction. If seeding fails part way the
// message is still returned alongside the error.
func (p *Publisher) PublishReactions(ctx context.Context, reg *Registry, guildID, channelID string, author *discordgo.User) (*discordgo.Message, error) {
	if reg.Len() == 0 {
		return nil, ErrEmptyRegistry
	}
	if reg.Len() > maxReactions {
		return nil, fmt.Errorf("%w: %d reactions, at most %d", ErrTooManyRoles, reg.Len(), maxReactions)
	}

	entries := reg.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %s", e.EmojiMarkup(), e.Mention()))
	}

	embed := &discordgo.MessageEmbed{
		Author: embedAuthor(author),
		Title:  "Pick your roles!",
		Description: "React with one of the emotes below to get the corresponding role. Remove your reaction to give it back." +
			"\n\nAvailable Roles:\n" + strings.Join(lines, "\n"),
		Color: embedColorGold,
	}

	msg, err := p.sender.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, remote("send self-assign message", err)
	}

	for _, e := range entries {
		if err := p.sender.MessageReactionAdd(channelID, msg.ID, e.Emoji, discordgo.WithContext(ctx)); err != nil {
			return msg, remote("add reaction "+e.Emoji, err)
		}
	}
	return msg, nil
}

func embedAuthor(u *discordgo.User) *discordgo.MessageEmbedAuthor {
	if u == nil {
		return nil
	}
	return &discordgo.MessageEmbedAuthor{
		Name:    u.String(),
		IconURL: u.AvatarURL(""),
	}
}

// EmojiMarkup renders custom emotes in message markup and leaves unicode as is.
func (e Entry) EmojiMarkup() string {
	if strings.Contains(e.Emoji, ":") {
		return "<:" + e.Emoji + ">"
	}
	return e.Emoji
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
