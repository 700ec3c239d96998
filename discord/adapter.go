package discord

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/verifygate/verifygate/verify"
)

// SendDM opens (or reuses) the user's DM channel and delivers the message
// with the QR PNG attached.
func (b *Bot) SendDM(userID, content string, qr []byte) error {
	channel, err := b.session.UserChannelCreate(userID)
	if err != nil {
		if isDMForbidden(err) {
			return verify.ErrDMForbidden
		}
		return fmt.Errorf("open dm channel: %w", err)
	}

	_, err = b.session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: content,
		Files: []*discordgo.File{{
			Name:        "qrcode.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(qr),
		}},
	})
	if err != nil {
		if isDMForbidden(err) {
			return verify.ErrDMForbidden
		}
		return fmt.Errorf("send dm: %w", err)
	}
	return nil
}

// ResolveMember checks the user is still in the gated guild.
func (b *Bot) ResolveMember(userID string) error {
	_, err := b.session.GuildMember(b.cfg.GuildID, userID)
	if err != nil {
		if hasErrCode(err, discordgo.ErrCodeUnknownMember) {
			return verify.ErrMemberNotFound
		}
		return fmt.Errorf("guild member lookup: %w", err)
	}
	return nil
}

// GrantRole assigns the configured verified role.
func (b *Bot) GrantRole(userID string) error {
	if err := b.session.GuildMemberRoleAdd(b.cfg.GuildID, userID, b.cfg.RoleID); err != nil {
		return fmt.Errorf("role grant: %w", err)
	}
	return nil
}

func isDMForbidden(err error) bool {
	return hasErrCode(err, discordgo.ErrCodeCannotSendMessagesToThisUser)
}

func hasErrCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == code
}
