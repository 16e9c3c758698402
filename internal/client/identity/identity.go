package identity

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/0xVantrex/hillersons-spaces-sub000/internal/client/storage"
)

type Kind string

const (
	Anonymous     Kind = "anonymous"
	Authenticated Kind = "authenticated"
)

// Credential is what the auth collaborator hands over on login.
type Credential struct {
	UserID    string    `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Identity is the resolved actor: an anonymous session or an
// authenticated account.
type Identity struct {
	Kind       Kind
	SessionID  string
	Credential *Credential
}

const (
	sessionKey    = "cart.session"
	credentialKey = "cart.credential"
)

// Resolver reads identity state from durable local storage.
type Resolver struct {
	kv  storage.KV
	log *slog.Logger
	now func() time.Time
}

func NewResolver(kv storage.KV, log *slog.Logger) *Resolver {
	return &Resolver{kv: kv, log: log, now: time.Now}
}

// Resolve returns the current identity. A stored, unexpired credential wins;
// otherwise the durable session id is read, created lazily on first need and
// never regenerated once set. Corrupted state degrades to a fresh anonymous
// session rather than failing.
func (r *Resolver) Resolve() Identity {
	if cred := r.credential(); cred != nil {
		return Identity{Kind: Authenticated, Credential: cred}
	}

	sessionID, err := r.ensureSession()
	if err != nil {
		// storage is broken; a transient id still lets this run proceed
		r.log.Warn("session storage unavailable, using transient session", "err", err)
		sessionID = uuid.NewString()
	}

	return Identity{Kind: Anonymous, SessionID: sessionID}
}

// SessionID returns the persisted session id without creating one.
func (r *Resolver) SessionID() string {
	v, ok, err := r.kv.Get(sessionKey)
	if err != nil || !ok {
		return ""
	}
	return v
}

func (r *Resolver) ensureSession() (string, error) {
	v, ok, err := r.kv.Get(sessionKey)
	if err != nil {
		return "", err
	}
	if ok && v != "" {
		return v, nil
	}

	sessionID := uuid.NewString()
	if err := r.kv.Set(sessionKey, sessionID); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (r *Resolver) credential() *Credential {
	v, ok, err := r.kv.Get(credentialKey)
	if err != nil {
		r.log.Warn("credential read failed", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	var cred Credential
	if err := json.Unmarshal([]byte(v), &cred); err != nil || cred.UserID == "" || cred.Token == "" {
		r.log.Warn("dropping corrupted credential state", "err", err)
		_ = r.kv.Delete(credentialKey)
		return nil
	}

	if cred.Expired(r.now()) {
		_ = r.kv.Delete(credentialKey)
		return nil
	}

	return &cred
}

// SetCredential persists a freshly issued credential.
func (r *Resolver) SetCredential(cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return r.kv.Set(credentialKey, string(data))
}

// ClearCredential drops the stored credential (logout).
func (r *Resolver) ClearCredential() error {
	return r.kv.Delete(credentialKey)
}

// DropSession forgets the session id. Done once after a login merge has
// consumed the guest cart; a new id is only minted on a later logout.
func (r *Resolver) DropSession() error {
	return r.kv.Delete(sessionKey)
}
