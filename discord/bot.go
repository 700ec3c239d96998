// Package discord is the transport surface: it owns the gateway session and
// translates Discord events into state-machine calls and outcomes back into
// replies.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/verifygate/verifygate/config"
	"github.com/verifygate/verifygate/model"
	"github.com/verifygate/verifygate/verify"
)

const (
	panelCommand   = "verifychannel"
	verifyButtonID = "verify_button"

	colorBlurple = 0x5865F2
)

// Bot wraps the gateway session. It also implements verify.Adapter, so the
// state machine reaches Discord through it.
type Bot struct {
	log     *zap.Logger
	cfg     *config.Config
	session *discordgo.Session
	machine *verify.Machine
}

var _ verify.Adapter = (*Bot)(nil)

func New(cfg *config.Config, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMembers |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{log: log, cfg: cfg, session: session}, nil
}

// Start binds the machine, registers event handlers and opens the gateway
// connection.
func (b *Bot) Start(machine *verify.Machine) error {
	b.machine = machine
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	adminOnly := int64(discordgo.PermissionAdministrator)
	_, err := s.ApplicationCommandCreate(r.User.ID, b.cfg.GuildID, &discordgo.ApplicationCommand{
		Name:                     panelCommand,
		Description:              "Send the verification embed with button.",
		DefaultMemberPermissions: &adminOnly,
	})
	if err != nil {
		b.log.Error("slash command registration failed", zap.Error(err))
		return
	}
	b.log.Info("logged in",
		zap.String("username", r.User.Username),
		zap.String("id", r.User.ID))
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == panelCommand {
			b.handlePanelCommand(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == verifyButtonID {
			b.handleVerifyButton(s, i)
		}
	}
}

// handlePanelCommand posts the verification embed with the verify button to
// the invoking channel.
func (b *Bot) handlePanelCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "🔐 Verification Required",
			Description: "Click the button below to verify using Google Authenticator.",
			Color:       colorBlurple,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "✅ Verify",
						Style:    discordgo.SuccessButton,
						CustomID: verifyButtonID,
					},
				},
			},
		},
	})
	if err != nil {
		b.log.Error("panel post failed", zap.String("channel", i.ChannelID), zap.Error(err))
		b.respondEphemeral(s, i, "❌ Could not send the verification panel here.")
		return
	}
	b.respondEphemeral(s, i, "✅ Verification panel sent.")
}

func (b *Bot) handleVerifyButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUserID(i)
	if userID == "" {
		return
	}
	outcome := b.machine.Initiate(userID)
	b.respondEphemeral(s, i, replyText(outcome))
}

// onMessage routes direct-message replies into the machine. Guild messages
// and bot messages are ignored.
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.GuildID != "" || m.Author == nil || m.Author.Bot {
		return
	}
	outcome := b.machine.Submit(m.Author.ID, m.Content)
	if _, err := s.ChannelMessageSend(m.ChannelID, replyText(outcome)); err != nil {
		b.log.Error("dm reply failed", zap.String("user", m.Author.ID), zap.Error(err))
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Error("interaction response failed", zap.Error(err))
	}
}

// interactionUserID works for both guild interactions (Member set) and DM
// interactions (User set).
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func replyText(o model.Outcome) string {
	switch o {
	case model.OutcomeAlreadyVerified:
		return "✅ You are already verified."
	case model.OutcomeEnrollmentStarted:
		return "📬 Check your DMs for the QR code!"
	case model.OutcomeDMForbidden:
		return "❌ I can't DM you. Please enable DMs and try again."
	case model.OutcomeNotEnrolled:
		return "❌ You haven't started verification. Click the ✅ Verify button first."
	case model.OutcomeEnrollmentExpired:
		return "❌ Your enrollment expired. Click the ✅ Verify button to start over."
	case model.OutcomeTooManyAttempts:
		return "❌ Too many invalid codes. Click the ✅ Verify button to start over."
	case model.OutcomeInvalidCode:
		return "❌ Invalid code. Try again."
	case model.OutcomeVerified:
		return "✅ Verification successful! You've been given the verified role."
	case model.OutcomeMemberNotFound:
		return "❌ Could not find you in the server."
	case model.OutcomeLedgerError:
		return "❌ Your verification could not be saved. Please send the code again."
	default:
		return "❌ Something went wrong. Please try again."
	}
}
