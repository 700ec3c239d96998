// Package verify holds the verification state machine: the decision logic
// between a user's events and the secret store, ledger, and chat platform.
// Per user the flow is Unenrolled → PendingEnrollment → Verified, with no
// way back from Verified.
package verify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verifygate/verifygate/ledger"
	"github.com/verifygate/verifygate/model"
	"github.com/verifygate/verifygate/provision"
	"github.com/verifygate/verifygate/store"
)

// Adapter is the slice of the chat platform the machine needs. The Discord
// implementation lives in the discord package; tests supply fakes.
type Adapter interface {
	// SendDM delivers a direct message with an attached QR PNG. Returns
	// ErrDMForbidden when the recipient blocks direct messages.
	SendDM(userID, content string, qr []byte) error
	// ResolveMember confirms the user is still a member of the gated guild.
	// Returns ErrMemberNotFound when they are not.
	ResolveMember(userID string) error
	// GrantRole assigns the configured role to the member.
	GrantRole(userID string) error
}

var (
	ErrDMForbidden    = errors.New("recipient does not accept direct messages")
	ErrMemberNotFound = errors.New("member not found in guild")
)

const enrollMessage = "📱 Scan this QR code with Google Authenticator (or any TOTP app), then reply with the 6-digit code.\nOr enter this key manually: **%s**"

// Machine drives verification. It owns no state of its own; all mutable
// state lives in the store and the ledger.
type Machine struct {
	log         *zap.Logger
	store       *store.SecretStore
	ledger      ledger.Ledger
	prov        *provision.Provisioner
	adapter     Adapter
	pendingTTL  time.Duration
	maxAttempts int
}

func New(log *zap.Logger, st *store.SecretStore, led ledger.Ledger, prov *provision.Provisioner, adapter Adapter, pendingTTL time.Duration, maxAttempts int) *Machine {
	return &Machine{
		log:         log,
		store:       st,
		ledger:      led,
		prov:        prov,
		adapter:     adapter,
		pendingTTL:  pendingTTL,
		maxAttempts: maxAttempts,
	}
}

// Initiate handles a verify-button press: mint a secret, remember it, and DM
// the QR code. Pressing the button again before finishing re-mints and
// invalidates the earlier secret. Already-verified users are a no-op.
func (m *Machine) Initiate(userID string) model.Outcome {
	verified, err := m.ledger.IsVerified(userID)
	if err != nil {
		m.log.Error("ledger lookup failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeLedgerError
	}
	if verified {
		return model.OutcomeAlreadyVerified
	}

	cred, err := m.prov.Provision(userID)
	if err != nil {
		m.log.Error("provisioning failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeInternalError
	}
	m.store.Begin(userID, cred.Secret)

	if err := m.adapter.SendDM(userID, fmt.Sprintf(enrollMessage, cred.Secret), cred.QR); err != nil {
		if errors.Is(err, ErrDMForbidden) {
			// Secret stays pending; the user can re-initiate after
			// opening their DMs.
			return model.OutcomeDMForbidden
		}
		m.log.Error("dm delivery failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeInternalError
	}

	m.log.Info("enrollment started", zap.String("user", userID))
	return model.OutcomeEnrollmentStarted
}

// Submit handles a code received over DM. A failed role grant or ledger
// write is never reported as success; the user stays pending and can retry.
func (m *Machine) Submit(userID, code string) model.Outcome {
	verified, err := m.ledger.IsVerified(userID)
	if err != nil {
		m.log.Error("ledger lookup failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeLedgerError
	}
	if verified {
		return model.OutcomeAlreadyVerified
	}

	pending, ok := m.store.Get(userID)
	if !ok {
		return model.OutcomeNotEnrolled
	}
	if time.Since(pending.IssuedAt) > m.pendingTTL {
		m.store.Remove(userID)
		return model.OutcomeEnrollmentExpired
	}
	if pending.Attempts >= m.maxAttempts {
		return model.OutcomeTooManyAttempts
	}

	if !m.prov.Verify(pending.Secret, strings.TrimSpace(code)) {
		attempts := m.store.Fail(userID)
		m.log.Info("invalid code", zap.String("user", userID), zap.Int("attempts", attempts))
		return model.OutcomeInvalidCode
	}

	if err := m.adapter.ResolveMember(userID); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return model.OutcomeMemberNotFound
		}
		m.log.Error("member lookup failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeInternalError
	}

	if err := m.adapter.GrantRole(userID); err != nil {
		m.log.Error("role grant failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeInternalError
	}

	if err := m.ledger.MarkVerified(userID); err != nil {
		m.log.Error("ledger write failed", zap.String("user", userID), zap.Error(err))
		return model.OutcomeLedgerError
	}

	m.store.Remove(userID)
	m.log.Info("user verified", zap.String("user", userID))
	return model.OutcomeVerified
}
