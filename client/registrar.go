package client

import (
	"context"
	"fmt"
	"log"
)

// SentTokenKey is the durable cache key holding the last token successfully
// written to the backend
const SentTokenKey = "sentFCMToken"

// RegistrarConfig wires a TokenRegistrar's collaborators
type RegistrarConfig struct {
	Permissions Permissions
	Tokens      TokenSource
	Registry    DeviceRegistry
	Store       TokenStore
	VAPIDKey    string
	DeviceType  string // web, android, ios
	Logger      *log.Logger
}

// TokenRegistrar ensures the backend holds the current device's push token
// for the logged-in user, without redundant writes. Safe to run on every
// mount or login-state change: a token the backend already has results in
// zero calls past the local compare.
//
// Two overlapping Register calls can both read the cache before either
// write lands; the backend upsert makes the duplicate write harmless, but
// this controller does not serialize them.
type TokenRegistrar struct {
	permissions Permissions
	tokens      TokenSource
	registry    DeviceRegistry
	store       TokenStore
	vapidKey    string
	deviceType  string
	log         *log.Logger
}

// NewTokenRegistrar creates a registrar from its collaborators
func NewTokenRegistrar(cfg RegistrarConfig) *TokenRegistrar {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	deviceType := cfg.DeviceType
	if deviceType == "" {
		deviceType = "web"
	}
	return &TokenRegistrar{
		permissions: cfg.Permissions,
		tokens:      cfg.Tokens,
		registry:    cfg.Registry,
		store:       cfg.Store,
		vapidKey:    cfg.VAPIDKey,
		deviceType:  deviceType,
		log:         logger,
	}
}

// Register runs one registration cycle for the session. It is a no-op when
// the session is not authenticated or when notification permission is not
// granted; a denied permission is not an error. Transient failures (token
// fetch, backend write) return an error and leave the cached token stale so
// the next natural trigger retries.
func (r *TokenRegistrar) Register(ctx context.Context, session Session) error {
	if !session.LoggedIn || session.UserID == "" {
		return nil
	}

	perm := r.permissions.Current()
	if perm == PermissionDefault {
		result, err := r.permissions.Request(ctx)
		if err != nil {
			return fmt.Errorf("requesting notification permission: %w", err)
		}
		perm = result
	}
	if perm != PermissionGranted {
		// Denied is terminal for this cycle; nothing to surface
		return nil
	}

	token, err := r.tokens.DeliveryToken(ctx, r.vapidKey)
	if err != nil {
		r.log.Printf("⚠️ Failed to fetch delivery token: %v", err)
		return fmt.Errorf("fetching delivery token: %w", err)
	}
	if token == "" {
		return nil
	}

	if r.store.Get(SentTokenKey) == token {
		// Backend already holds this token
		return nil
	}

	if err := r.registry.UpsertToken(ctx, session.UserID, token, r.deviceType); err != nil {
		// Cache stays stale so the next cycle retries the same token
		r.log.Printf("⚠️ Failed to register push token: %v", err)
		return fmt.Errorf("registering push token: %w", err)
	}

	if err := r.store.Set(SentTokenKey, token); err != nil {
		// The write succeeded; a failed cache update only costs one
		// redundant upsert on the next cycle
		r.log.Printf("⚠️ Failed to persist sent token: %v", err)
	}
	return nil
}
