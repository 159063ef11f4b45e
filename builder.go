package authcore

import (
	"errors"
	"log/slog"

	"github.com/halcyonbank/authcore/internal/audit"
	"github.com/halcyonbank/authcore/internal/linktoken"
	"github.com/halcyonbank/authcore/jwt"
	"github.com/halcyonbank/authcore/password"
	"github.com/halcyonbank/authcore/session"
	"github.com/halcyonbank/authcore/store"
)

// Builder assembles an Engine. Storage, consent, and email are the
// host's to provide; everything else defaults. Build fails rather than
// producing a partially wired engine.
type Builder struct {
	config Config

	users    UserDirectory
	refresh  store.RefreshStore
	links    store.LinkStore
	consents ConsentLedger
	email    EmailDispatcher

	auditSink AuditSink
	logger    *slog.Logger

	emailValidator    EmailValidator
	passwordValidator PasswordValidator
}

// NewBuilder returns a Builder preloaded with DefaultConfig. The JWT
// secret still has to be set, either through WithConfig or directly.
func NewBuilder() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithUserDirectory sets the account store.
func (b *Builder) WithUserDirectory(users UserDirectory) *Builder {
	b.users = users
	return b
}

// WithRefreshStore sets the session credential store.
func (b *Builder) WithRefreshStore(refresh store.RefreshStore) *Builder {
	b.refresh = refresh
	return b
}

// WithLinkStore sets the single-use link token store.
func (b *Builder) WithLinkStore(links store.LinkStore) *Builder {
	b.links = links
	return b
}

// WithConsentLedger sets the consent record store.
func (b *Builder) WithConsentLedger(consents ConsentLedger) *Builder {
	b.consents = consents
	return b
}

// WithEmailDispatcher sets the outbound mail hook.
func (b *Builder) WithEmailDispatcher(email EmailDispatcher) *Builder {
	b.email = email
	return b
}

// WithAuditSink sets where audit events land. Defaults to NoOpAuditSink
// when auditing is enabled without a sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine's structured logger. Defaults to a
// discarding logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithEmailValidator overrides the signup email check.
func (b *Builder) WithEmailValidator(v EmailValidator) *Builder {
	b.emailValidator = v
	return b
}

// WithPasswordValidator overrides the password policy check.
func (b *Builder) WithPasswordValidator(v PasswordValidator) *Builder {
	b.passwordValidator = v
	return b
}

// Build validates the configuration and wiring and returns a ready
// Engine. Callers own the returned engine's Close.
func (b *Builder) Build() (*Engine, error) {
	if b.users == nil {
		return nil, errors.New("authcore: user directory is required")
	}
	if b.refresh == nil {
		return nil, errors.New("authcore: refresh store is required")
	}
	if b.links == nil {
		return nil, errors.New("authcore: link store is required")
	}
	if b.consents == nil {
		return nil, errors.New("authcore: consent ledger is required")
	}
	if b.email == nil {
		return nil, errors.New("authcore: email dispatcher is required")
	}
	if err := b.config.validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{Cost: b.config.Password.Cost})
	if err != nil {
		return nil, err
	}

	tokens, err := jwt.NewManager(jwt.Config{
		Secret:    b.config.JWT.Secret,
		AccessTTL: b.config.JWT.AccessTTL,
	})
	if err != nil {
		return nil, err
	}

	rotator, err := session.NewRotator(b.refresh, tokens, session.Config{
		RefreshTTL: b.config.Refresh.TTL,
	})
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	emailValidator := b.emailValidator
	if emailValidator == nil {
		emailValidator = DefaultEmailValidator
	}
	passwordValidator := b.passwordValidator
	if passwordValidator == nil {
		passwordValidator = DefaultPasswordValidator
	}

	dispatcher := audit.NewDispatcher(audit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	return &Engine{
		config:           b.config,
		users:            b.users,
		consents:         b.consents,
		email:            b.email,
		hasher:           hasher,
		tokens:           tokens,
		rotator:          rotator,
		links:            linktoken.NewIssuer(b.links),
		audit:            dispatcher,
		metrics:          NewMetrics(b.config.Metrics),
		logger:           logger,
		validateEmail:    emailValidator,
		validatePassword: passwordValidator,
	}, nil
}
