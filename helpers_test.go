package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/halcyonbank/authcore/store"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type sentEmail struct {
	email string
	token string
}

type recordingEmails struct {
	mu         sync.Mutex
	magicLinks []sentEmail
	resets     []sentEmail
	fail       bool
}

func (r *recordingEmails) SendMagicLink(_ context.Context, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp unavailable")
	}
	r.magicLinks = append(r.magicLinks, sentEmail{email: email, token: token})
	return nil
}

func (r *recordingEmails) SendPasswordReset(_ context.Context, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp unavailable")
	}
	r.resets = append(r.resets, sentEmail{email: email, token: token})
	return nil
}

func (r *recordingEmails) setFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = fail
}

func (r *recordingEmails) lastMagicLink(t *testing.T) sentEmail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.magicLinks) == 0 {
		t.Fatal("no magic link email was sent")
	}
	return r.magicLinks[len(r.magicLinks)-1]
}

func (r *recordingEmails) lastReset(t *testing.T) sentEmail {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.resets) == 0 {
		t.Fatal("no password reset email was sent")
	}
	return r.resets[len(r.resets)-1]
}

func (r *recordingEmails) magicLinkCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.magicLinks)
}

func (r *recordingEmails) resetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.resets)
}

type consentRecord struct {
	userID    string
	kind      string
	version   string
	ip        string
	userAgent string
}

type recordingConsents struct {
	mu      sync.Mutex
	records []consentRecord
	fail    bool
}

func (r *recordingConsents) CreateConsent(_ context.Context, userID, kind, version, ip, userAgent string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("consent store unavailable")
	}
	r.records = append(r.records, consentRecord{
		userID: userID, kind: kind, version: version, ip: ip, userAgent: userAgent,
	})
	return nil
}

func (r *recordingConsents) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

type testEnv struct {
	engine   *Engine
	users    *store.MemoryUserDirectory
	refresh  *store.MemoryRefreshStore
	links    *store.MemoryLinkStore
	emails   *recordingEmails
	consents *recordingConsents
	sink     *ChannelAuditSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.JWT.Secret = testSecret
	cfg.Password.Cost = 4
	cfg.Audit.DropIfFull = false

	env := &testEnv{
		users:    store.NewMemoryUserDirectory(),
		refresh:  store.NewMemoryRefreshStore(),
		links:    store.NewMemoryLinkStore(),
		emails:   &recordingEmails{},
		consents: &recordingConsents{},
		sink:     NewChannelAuditSink(128),
	}

	engine, err := NewBuilder().
		WithConfig(cfg).
		WithUserDirectory(env.users).
		WithRefreshStore(env.refresh).
		WithLinkStore(env.links).
		WithConsentLedger(env.consents).
		WithEmailDispatcher(env.emails).
		WithAuditSink(env.sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	env.engine = engine
	return env
}

func (e *testEnv) signup(t *testing.T, email, password string) *SignupResult {
	t.Helper()

	result, err := e.engine.Signup(context.Background(), SignupRequest{
		Email:                email,
		Password:             password,
		AcceptTerms:          true,
		AcceptPrivacy:        true,
		AcceptDataProcessing: true,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return result
}

// waitAudit drains the sink until an event of the given type arrives.
// Dispatch is asynchronous, so assertions on the trail go through here.
func (e *testEnv) waitAudit(t *testing.T, eventType string) AuditEvent {
	t.Helper()
	return waitAuditEvent(t, e.sink, eventType)
}

func waitAuditEvent(t *testing.T, sink *ChannelAuditSink, eventType string) AuditEvent {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for audit event %q", eventType)
		}
	}
}

func fingerprintCtx(fingerprint string) context.Context {
	return WithDeviceFingerprint(context.Background(), fingerprint)
}

// flakyUserDirectory injects lookup failures around a memory directory.
type flakyUserDirectory struct {
	*store.MemoryUserDirectory
	mu           sync.Mutex
	findEmailErr error
	findIDErr    error
}

func (d *flakyUserDirectory) setFindEmailErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findEmailErr = err
}

func (d *flakyUserDirectory) setFindIDErr(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findIDErr = err
}

func (d *flakyUserDirectory) FindByEmail(ctx context.Context, email string) (store.User, error) {
	d.mu.Lock()
	err := d.findEmailErr
	d.mu.Unlock()
	if err != nil {
		return store.User{}, err
	}
	return d.MemoryUserDirectory.FindByEmail(ctx, email)
}

func (d *flakyUserDirectory) FindByID(ctx context.Context, id string) (store.User, error) {
	d.mu.Lock()
	err := d.findIDErr
	d.mu.Unlock()
	if err != nil {
		return store.User{}, err
	}
	return d.MemoryUserDirectory.FindByID(ctx, id)
}

// flakyLinkStore injects creation failures around a memory link store.
type flakyLinkStore struct {
	*store.MemoryLinkStore
	mu        sync.Mutex
	createErr error
}

func (s *flakyLinkStore) setCreateErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createErr = err
}

func (s *flakyLinkStore) Create(ctx context.Context, token store.LinkToken) error {
	s.mu.Lock()
	err := s.createErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.MemoryLinkStore.Create(ctx, token)
}

// flakyEnv is a testEnv whose user directory and link store can be made
// to fail mid-test.
type flakyEnv struct {
	engine *Engine
	users  *flakyUserDirectory
	links  *flakyLinkStore
	emails *recordingEmails
	sink   *ChannelAuditSink
}

func newFlakyEnv(t *testing.T) *flakyEnv {
	t.Helper()

	cfg := DefaultConfig()
	cfg.JWT.Secret = testSecret
	cfg.Password.Cost = 4
	cfg.Audit.DropIfFull = false

	env := &flakyEnv{
		users:  &flakyUserDirectory{MemoryUserDirectory: store.NewMemoryUserDirectory()},
		links:  &flakyLinkStore{MemoryLinkStore: store.NewMemoryLinkStore()},
		emails: &recordingEmails{},
		sink:   NewChannelAuditSink(128),
	}

	engine, err := NewBuilder().
		WithConfig(cfg).
		WithUserDirectory(env.users).
		WithRefreshStore(store.NewMemoryRefreshStore()).
		WithLinkStore(env.links).
		WithConsentLedger(&recordingConsents{}).
		WithEmailDispatcher(env.emails).
		WithAuditSink(env.sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	env.engine = engine
	return env
}

func (e *flakyEnv) signup(t *testing.T, email, password string) *SignupResult {
	t.Helper()

	result, err := e.engine.Signup(context.Background(), SignupRequest{
		Email:                email,
		Password:             password,
		AcceptTerms:          true,
		AcceptPrivacy:        true,
		AcceptDataProcessing: true,
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return result
}

func (e *flakyEnv) waitAudit(t *testing.T, eventType string) AuditEvent {
	t.Helper()
	return waitAuditEvent(t, e.sink, eventType)
}
