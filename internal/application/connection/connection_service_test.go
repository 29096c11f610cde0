package connection

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/shared"
)

type stubCredRepo struct {
	creds   map[string]*channel.Credential
	deleted []string
}

func newStubCredRepo() *stubCredRepo {
	return &stubCredRepo{creds: make(map[string]*channel.Credential)}
}

func credKey(userID uuid.UUID, platform channel.PlatformCode) string {
	return userID.String() + "/" + string(platform)
}

func (r *stubCredRepo) FindByUserAndPlatform(_ context.Context, userID uuid.UUID, platform channel.PlatformCode) (*channel.Credential, error) {
	cred, ok := r.creds[credKey(userID, platform)]
	if !ok {
		return nil, channel.ErrCredentialNotFound
	}
	return cred, nil
}

func (r *stubCredRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*channel.Credential, error) {
	var out []*channel.Credential
	for _, cred := range r.creds {
		if cred.UserID == userID {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (r *stubCredRepo) FindAllByPlatform(_ context.Context, platform channel.PlatformCode) ([]*channel.Credential, error) {
	var out []*channel.Credential
	for _, cred := range r.creds {
		if cred.Platform == platform {
			out = append(out, cred)
		}
	}
	return out, nil
}

func (r *stubCredRepo) Save(_ context.Context, cred *channel.Credential) error {
	r.creds[credKey(cred.UserID, cred.Platform)] = cred
	return nil
}

func (r *stubCredRepo) Delete(_ context.Context, userID uuid.UUID, platform channel.PlatformCode) error {
	key := credKey(userID, platform)
	delete(r.creds, key)
	r.deleted = append(r.deleted, key)
	return nil
}

type stubAdapter struct {
	code     channel.PlatformCode
	testFunc func(cred *channel.Credential) (channel.ConnectionStatus, error)
}

func (a *stubAdapter) PlatformCode() channel.PlatformCode { return a.code }
func (a *stubAdapter) Family() channel.AdapterFamily      { return channel.FamilyDirectAPI }
func (a *stubAdapter) Capabilities() channel.CapabilitySet {
	return channel.NewCapabilitySet(channel.CapabilityTestConnection, channel.CapabilityPublish)
}
func (a *stubAdapter) ImageLimits() channel.PlatformImageLimits { return channel.PlatformImageLimits{} }
func (a *stubAdapter) ViewSpec() channel.ViewSpec               { return channel.ViewSpec{} }

func (a *stubAdapter) TestConnection(_ context.Context, cred *channel.Credential) (channel.ConnectionStatus, error) {
	if a.testFunc != nil {
		return a.testFunc(cred)
	}
	return channel.ConnectionAlive, nil
}

func (a *stubAdapter) Publish(_ context.Context, _ *channel.PlatformView, _ []channel.PreparedPhoto, _ *channel.Credential) (channel.PublishResult, error) {
	return channel.Published("remote-1"), nil
}

func (a *stubAdapter) Update(_ context.Context, _ string, _ *channel.PlatformView, _ *channel.Credential) (channel.PublishResult, error) {
	return channel.Published("remote-1"), nil
}

func (a *stubAdapter) Delist(_ context.Context, _ string, _ *channel.Credential) (channel.DelistResult, error) {
	return channel.DelistResult{Kind: channel.DelistOutcomeDelisted}, nil
}

func (a *stubAdapter) PullSales(_ context.Context, _ *channel.Credential, _ time.Time) ([]channel.RawSaleEvent, error) {
	return nil, channel.ErrCapabilityMissing
}

type stubRegistry struct {
	adapters map[channel.PlatformCode]channel.Adapter
}

func (r *stubRegistry) Get(code channel.PlatformCode) (channel.Adapter, error) {
	if a, ok := r.adapters[code]; ok {
		return a, nil
	}
	return nil, channel.ErrAdapterNotFound
}

func (r *stubRegistry) All() []channel.Adapter {
	out := make([]channel.Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		out = append(out, a)
	}
	return out
}

type connectionFixture struct {
	service *Service
	creds   *stubCredRepo
	adapter *stubAdapter
	userID  uuid.UUID
}

func newConnectionFixture(t *testing.T) *connectionFixture {
	t.Helper()

	creds := newStubCredRepo()
	adapter := &stubAdapter{code: channel.PlatformEbay}
	registry := &stubRegistry{adapters: map[channel.PlatformCode]channel.Adapter{
		channel.PlatformEbay: adapter,
	}}
	logger := zap.NewNop()
	credManager := publish.NewCredentialManager(creds, logger)

	return &connectionFixture{
		service: NewService(creds, registry, credManager, logger),
		creds:   creds,
		adapter: adapter,
		userID:  uuid.New(),
	}
}

func TestConnectionService_Connect_OAuth(t *testing.T) {
	f := newConnectionFixture(t)

	resp, err := f.service.Connect(context.Background(), f.userID, ConnectRequest{
		Platform:     "EBAY",
		Kind:         "oauth",
		AccessToken:  "token-1",
		RefreshToken: "refresh-1",
	})
	require.NoError(t, err)

	assert.Equal(t, channel.PlatformEbay, resp.Platform)
	assert.Equal(t, channel.CredentialKindOAuth, resp.Kind)
	assert.NotNil(t, resp.VerifiedAt)
	assert.True(t, resp.CanRefresh)
	assert.Contains(t, resp.Capabilities, "publish")

	stored, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Equal(t, "token-1", stored.AccessToken)
}

func TestConnectionService_Connect_RejectedCredentialNotStored(t *testing.T) {
	f := newConnectionFixture(t)
	f.adapter.testFunc = func(_ *channel.Credential) (channel.ConnectionStatus, error) {
		return channel.ConnectionUnauthorized, nil
	}

	_, err := f.service.Connect(context.Background(), f.userID, ConnectRequest{
		Platform:    "EBAY",
		Kind:        "oauth",
		AccessToken: "bad-token",
	})
	require.Error(t, err)

	_, err = f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	assert.ErrorIs(t, err, channel.ErrCredentialNotFound)
}

func TestConnectionService_Connect_UnknownPlatform(t *testing.T) {
	f := newConnectionFixture(t)

	_, err := f.service.Connect(context.Background(), f.userID, ConnectRequest{
		Platform: "SHOPIFY",
		Kind:     "static",
		Secret:   "s",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PLATFORM", domainErr.Code)
}

func TestConnectionService_Connect_MissingTokenMaterial(t *testing.T) {
	f := newConnectionFixture(t)

	_, err := f.service.Connect(context.Background(), f.userID, ConnectRequest{
		Platform: "EBAY",
		Kind:     "oauth",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestConnectionService_Disconnect(t *testing.T) {
	f := newConnectionFixture(t)
	cred := channel.NewStaticCredential(f.userID, channel.PlatformEbay, "secret")
	require.NoError(t, f.creds.Save(context.Background(), cred))

	require.NoError(t, f.service.Disconnect(context.Background(), f.userID, channel.PlatformEbay))

	_, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	assert.ErrorIs(t, err, channel.ErrCredentialNotFound)
}

func TestConnectionService_Disconnect_NotConnected(t *testing.T) {
	f := newConnectionFixture(t)

	err := f.service.Disconnect(context.Background(), f.userID, channel.PlatformEbay)
	assert.ErrorIs(t, err, shared.ErrNotConnected)
}

func TestConnectionService_List(t *testing.T) {
	f := newConnectionFixture(t)
	cred := channel.NewOAuthCredential(f.userID, channel.PlatformEbay, "t", "r", nil)
	require.NoError(t, f.creds.Save(context.Background(), cred))
	other := channel.NewStaticCredential(uuid.New(), channel.PlatformEbay, "s")
	require.NoError(t, f.creds.Save(context.Background(), other))

	resp, err := f.service.List(context.Background(), f.userID)
	require.NoError(t, err)
	require.Len(t, resp.Connections, 1)
	assert.Equal(t, channel.PlatformEbay, resp.Connections[0].Platform)
}

func TestConnectionService_Test_Alive(t *testing.T) {
	f := newConnectionFixture(t)
	cred := channel.NewOAuthCredential(f.userID, channel.PlatformEbay, "t", "r", nil)
	require.NoError(t, f.creds.Save(context.Background(), cred))

	resp, err := f.service.Test(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.True(t, resp.Alive)
}

func TestConnectionService_Test_Unreachable(t *testing.T) {
	f := newConnectionFixture(t)
	cred := channel.NewOAuthCredential(f.userID, channel.PlatformEbay, "t", "r", nil)
	require.NoError(t, f.creds.Save(context.Background(), cred))
	f.adapter.testFunc = func(_ *channel.Credential) (channel.ConnectionStatus, error) {
		return channel.ConnectionUnreachable, nil
	}

	resp, err := f.service.Test(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.False(t, resp.Alive)
}

func TestConnectionService_Test_NotConnected(t *testing.T) {
	f := newConnectionFixture(t)

	_, err := f.service.Test(context.Background(), f.userID, channel.PlatformEbay)
	assert.ErrorIs(t, err, shared.ErrNotConnected)
}
