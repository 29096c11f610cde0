package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
	"github.com/crosslist/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// Test doubles
// ---------------------------------------------------------------------------

// stubListingRepo is an in-memory listing.Repository
type stubListingRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*listing.Listing
	saveErr  error
}

func newStubListingRepo(listings ...*listing.Listing) *stubListingRepo {
	r := &stubListingRepo{listings: make(map[uuid.UUID]*listing.Listing)}
	for _, l := range listings {
		r.listings[l.ID] = l
	}
	return r
}

func (r *stubListingRepo) FindByID(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, listing.ErrListingNotFound
	}
	return l, nil
}

func (r *stubListingRepo) FindByUser(context.Context, uuid.UUID, listing.Filter) ([]listing.Listing, error) {
	return nil, nil
}

func (r *stubListingRepo) CountByUser(context.Context, uuid.UUID, listing.Filter) (int64, error) {
	return 0, nil
}

func (r *stubListingRepo) Save(_ context.Context, l *listing.Listing) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = l
	return nil
}

// stubRecordRepo resolves remote listing IDs to channel records
type stubRecordRepo struct {
	byRemoteID map[string]*channel.Record
}

func newStubRecordRepo(records ...*channel.Record) *stubRecordRepo {
	r := &stubRecordRepo{byRemoteID: make(map[string]*channel.Record)}
	for _, record := range records {
		r.byRemoteID[string(record.Platform)+"/"+record.RemoteID] = record
	}
	return r
}

func (r *stubRecordRepo) FindByListingAndPlatform(context.Context, uuid.UUID, channel.PlatformCode) (*channel.Record, error) {
	return nil, channel.ErrRecordNotFound
}

func (r *stubRecordRepo) FindByListing(context.Context, uuid.UUID) ([]*channel.Record, error) {
	return nil, nil
}

func (r *stubRecordRepo) FindPublishedByListing(context.Context, uuid.UUID) ([]*channel.Record, error) {
	return nil, nil
}

func (r *stubRecordRepo) FindByRemoteID(_ context.Context, platform channel.PlatformCode, remoteID string) (*channel.Record, error) {
	record, ok := r.byRemoteID[string(platform)+"/"+remoteID]
	if !ok {
		return nil, channel.ErrRecordNotFound
	}
	return record, nil
}

func (r *stubRecordRepo) Save(context.Context, *channel.Record) error { return nil }

// stubSaleRepo enforces the (platform, native sale id) uniqueness in memory
type stubSaleRepo struct {
	mu      sync.Mutex
	saved   []*channel.SaleRecord
	byKey   map[string]bool
	saveErr error
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{byKey: make(map[string]bool)}
}

func (r *stubSaleRepo) FindByNativeID(context.Context, channel.PlatformCode, string) (*channel.SaleRecord, error) {
	return nil, channel.ErrSaleNotFound
}

func (r *stubSaleRepo) FindByListing(_ context.Context, listingID uuid.UUID) ([]*channel.SaleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*channel.SaleRecord, 0)
	for _, sale := range r.saved {
		if sale.ListingID == listingID {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) FindByUser(_ context.Context, userID uuid.UUID, _, _ time.Time) ([]*channel.SaleRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*channel.SaleRecord, 0)
	for _, sale := range r.saved {
		if sale.UserID == userID {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) Save(_ context.Context, sale *channel.SaleRecord) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if sale.NativeSaleID != "" && r.byKey[sale.DedupKey()] {
		return channel.ErrSaleAlreadyRecorded
	}
	r.byKey[sale.DedupKey()] = true
	r.saved = append(r.saved, sale)
	return nil
}

// stubCredRepo holds one credential per (user, platform)
type stubCredRepo struct {
	mu    sync.Mutex
	creds map[string]*channel.Credential
	saves int
}

func newStubCredRepo(creds ...*channel.Credential) *stubCredRepo {
	r := &stubCredRepo{creds: make(map[string]*channel.Credential)}
	for _, cred := range creds {
		r.creds[cred.UserID.String()+"/"+string(cred.Platform)] = cred
	}
	return r
}

func (r *stubCredRepo) FindByUserAndPlatform(_ context.Context, userID uuid.UUID, platform channel.PlatformCode) (*channel.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.creds[userID.String()+"/"+string(platform)]
	if !ok {
		return nil, channel.ErrCredentialNotFound
	}
	return cred, nil
}

func (r *stubCredRepo) FindByUser(context.Context, uuid.UUID) ([]*channel.Credential, error) {
	return nil, nil
}

func (r *stubCredRepo) FindAllByPlatform(context.Context, channel.PlatformCode) ([]*channel.Credential, error) {
	return nil, nil
}

func (r *stubCredRepo) Save(context.Context, *channel.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return nil
}

func (r *stubCredRepo) Delete(context.Context, uuid.UUID, channel.PlatformCode) error { return nil }

// syncAdapter is a channel.Adapter that reports pulled sale events
type syncAdapter struct {
	code   channel.PlatformCode
	events []channel.RawSaleEvent
	status channel.ConnectionStatus

	pullCount int
	lastSince time.Time
}

func newSyncAdapter(code channel.PlatformCode, events ...channel.RawSaleEvent) *syncAdapter {
	return &syncAdapter{code: code, events: events, status: channel.ConnectionAlive}
}

func (a *syncAdapter) PlatformCode() channel.PlatformCode { return a.code }
func (a *syncAdapter) Family() channel.AdapterFamily      { return channel.FamilyDirectAPI }

func (a *syncAdapter) Capabilities() channel.CapabilitySet {
	return channel.NewCapabilitySet(
		channel.CapabilityTestConnection,
		channel.CapabilityPublish,
		channel.CapabilityUpdate,
		channel.CapabilityDelist,
		channel.CapabilityPullSales,
	)
}

func (a *syncAdapter) ImageLimits() channel.PlatformImageLimits { return channel.PlatformImageLimits{} }
func (a *syncAdapter) ViewSpec() channel.ViewSpec               { return channel.ViewSpec{} }

func (a *syncAdapter) TestConnection(context.Context, *channel.Credential) (channel.ConnectionStatus, error) {
	return a.status, nil
}

func (a *syncAdapter) Publish(context.Context, *channel.PlatformView, []channel.PreparedPhoto, *channel.Credential) (channel.PublishResult, error) {
	return channel.PublishResult{}, channel.ErrCapabilityMissing
}

func (a *syncAdapter) Update(context.Context, string, *channel.PlatformView, *channel.Credential) (channel.PublishResult, error) {
	return channel.PublishResult{}, channel.ErrCapabilityMissing
}

func (a *syncAdapter) Delist(context.Context, string, *channel.Credential) (channel.DelistResult, error) {
	return channel.DelistResult{}, channel.ErrCapabilityMissing
}

func (a *syncAdapter) PullSales(_ context.Context, _ *channel.Credential, since time.Time) ([]channel.RawSaleEvent, error) {
	a.pullCount++
	a.lastSince = since
	return a.events, nil
}

var _ channel.Adapter = (*syncAdapter)(nil)

// stubRegistry resolves one adapter
type stubRegistry struct {
	adapter channel.Adapter
}

func (r *stubRegistry) Get(code channel.PlatformCode) (channel.Adapter, error) {
	if r.adapter == nil || r.adapter.PlatformCode() != code {
		return nil, channel.ErrAdapterNotFound
	}
	return r.adapter, nil
}

func (r *stubRegistry) All() []channel.Adapter {
	if r.adapter == nil {
		return nil
	}
	return []channel.Adapter{r.adapter}
}

// fakeDelister records fan-out calls
type fakeDelister struct {
	mu     sync.Mutex
	calls  []channel.PlatformCode // soldOn platform per call
	result *publish.FanoutResult
}

func (d *fakeDelister) DelistForSale(_ context.Context, l *listing.Listing, soldOn channel.PlatformCode) *publish.FanoutResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, soldOn)
	if d.result != nil {
		return d.result
	}
	return &publish.FanoutResult{ListingID: l.ID}
}

func (d *fakeDelister) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

// memIdemStore is an in-memory shared.IdempotencyStore
type memIdemStore struct {
	mu   sync.Mutex
	keys map[string]bool
	err  error
}

func newMemIdemStore() *memIdemStore {
	return &memIdemStore{keys: make(map[string]bool)}
}

func (s *memIdemStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memIdemStore) IsProcessed(_ context.Context, key string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdemStore) Close() error { return nil }

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

type syncFixture struct {
	service  *Service
	listings *stubListingRepo
	sales    *stubSaleRepo
	creds    *stubCredRepo
	delister *fakeDelister
	idem     *memIdemStore
	adapter  *syncAdapter
	userID   uuid.UUID
	listing  *listing.Listing
}

func newSyncFixture(t *testing.T, events ...channel.RawSaleEvent) *syncFixture {
	t.Helper()

	userID := uuid.New()
	l, err := listing.NewListing(userID, "Vintage camera", decimal.NewFromInt(100), "USD")
	require.NoError(t, err)
	l.Photos = []string{"photos/cam.jpg"}
	require.NoError(t, l.Activate())

	record := channel.NewRecord(l.ID, userID, channel.PlatformEbay)
	require.NoError(t, record.MarkPublished("remote-1", "accepted"))

	cred := channel.NewOAuthCredential(userID, channel.PlatformEbay, "token", "refresh", nil)

	adapter := newSyncAdapter(channel.PlatformEbay, events...)
	listings := newStubListingRepo(l)
	sales := newStubSaleRepo()
	creds := newStubCredRepo(cred)
	delister := &fakeDelister{}
	idem := newMemIdemStore()

	logger := zap.NewNop()
	service := NewService(
		listings,
		newStubRecordRepo(record),
		sales,
		creds,
		&stubRegistry{adapter: adapter},
		publish.NewCredentialManager(creds, logger),
		delister,
		idem,
		shared.DefaultIdempotencyConfig(),
		72*time.Hour,
		logger,
	)

	return &syncFixture{
		service:  service,
		listings: listings,
		sales:    sales,
		creds:    creds,
		delister: delister,
		idem:     idem,
		adapter:  adapter,
		userID:   userID,
		listing:  l,
	}
}

func saleEvent(remoteID, nativeID string) channel.RawSaleEvent {
	return channel.RawSaleEvent{
		NativeSaleID:    nativeID,
		RemoteListingID: remoteID,
		Price:           decimal.NewFromInt(95),
		Currency:        "USD",
		BuyerRef:        "buyer-1",
		OccurredAt:      time.Now().Add(-time.Hour),
	}
}

// ---------------------------------------------------------------------------
// SyncPlatform
// ---------------------------------------------------------------------------

func TestSyncService_SyncPlatform_NewSale(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.PulledEvents)
	assert.Equal(t, 1, report.NewSales)
	assert.Equal(t, 0, report.DuplicateSales)

	assert.Equal(t, listing.StateSold, f.listing.State)
	require.Len(t, f.sales.saved, 1)
	assert.Equal(t, channel.SaleOriginSync, f.sales.saved[0].Origin)
	assert.Equal(t, "sale-1", f.sales.saved[0].NativeSaleID)

	// Fan-out spares the platform the item sold on
	require.Equal(t, 1, f.delister.callCount())
	assert.Equal(t, channel.PlatformEbay, f.delister.calls[0])
}

func TestSyncService_SyncPlatform_AdvancesWatermark(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	_, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	cred, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	require.NotNil(t, cred.LastPullAt)
	assert.WithinDuration(t, time.Now(), *cred.LastPullAt, time.Second)
}

func TestSyncService_SyncPlatform_DuplicateEvent(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	_, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	// The same event is pulled again on the next pass
	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	assert.Equal(t, 0, report.NewSales)
	assert.Equal(t, 1, report.DuplicateSales)
	assert.Len(t, f.sales.saved, 1)
	assert.Equal(t, 1, f.delister.callCount()) // fan-out ran once, not twice
}

func TestSyncService_SyncPlatform_UnmatchedEvent(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-unknown", "sale-9"))

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.UnmatchedEvents)
	assert.Equal(t, 0, report.NewSales)
	assert.Empty(t, f.sales.saved)
	assert.Equal(t, listing.StateActive, f.listing.State)
}

func TestSyncService_SyncPlatform_AlreadySoldListing(t *testing.T) {
	f := newSyncFixture(t,
		saleEvent("remote-1", "sale-1"),
		saleEvent("remote-1", "sale-2"), // second buyer on a platform race
	)

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 2, report.NewSales)
	assert.Len(t, f.sales.saved, 2)
	// Only the first sale triggers the fan-out
	assert.Equal(t, 1, f.delister.callCount())
}

func TestSyncService_SyncPlatform_FanoutReservedOnce(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	// The fan-out slot was already claimed, e.g. by a crashed pass that
	// delisted before the sale record write was observed
	fresh, err := f.idem.MarkProcessed(context.Background(), "fanout:EBAY:sale-1", time.Hour)
	require.NoError(t, err)
	require.True(t, fresh)

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.NewSales)
	assert.Equal(t, 0, f.delister.callCount())
}

func TestSyncService_SyncPlatform_FanoutProceedsWhenStoreDown(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))
	f.idem.err = errors.New("connection refused")

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.NewSales)
	assert.Equal(t, 1, f.delister.callCount())
}

func TestSyncService_SyncPlatform_CountsDelistOutcomes(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))
	f.delister.result = &publish.FanoutResult{
		ListingID: f.listing.ID,
		Results: []publish.PlatformResult{
			{Platform: channel.PlatformShopify, Outcome: publish.OutcomeDelisted},
			{Platform: channel.PlatformCraigslist, Outcome: publish.OutcomeUnsupported},
		},
	}

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 1, report.DelistsSent)
	assert.Equal(t, 1, report.DelistFailures)
}

func TestSyncService_SyncPlatform_FanoutRetriedAfterEnumerationFailure(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))
	f.delister.result = &publish.FanoutResult{
		ListingID: f.listing.ID,
		Error:     "enumerate published platforms: database down",
	}

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Equal(t, 1, report.NewSales)
	assert.Equal(t, 1, report.DelistFailures)

	// The event is re-pulled next round
	cred, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Nil(t, cred.LastPullAt)

	// The re-pulled duplicate finishes the interrupted fan-out
	f.delister.result = nil
	report, err = f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DuplicateSales)
	assert.Equal(t, 2, f.delister.callCount())

	// Once completed, further duplicates leave the fan-out alone
	_, err = f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Equal(t, 2, f.delister.callCount())
}

func TestSyncService_SyncPlatform_WatermarkHeldOnFailure(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))
	f.sales.saveErr = errors.New("database down")

	report, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)

	require.NoError(t, err)
	assert.Equal(t, 0, report.NewSales)

	cred, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	assert.Nil(t, cred.LastPullAt) // failed events are re-pulled next round
}

func TestSyncService_SyncPlatform_UsesWatermarkAsSince(t *testing.T) {
	f := newSyncFixture(t)
	watermark := time.Now().Add(-30 * time.Minute)
	cred, err := f.creds.FindByUserAndPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)
	cred.AdvancePullWatermark(watermark)

	_, err = f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	assert.WithinDuration(t, watermark, f.adapter.lastSince, time.Second)
}

func TestSyncService_SyncPlatform_CapabilityMissing(t *testing.T) {
	f := newSyncFixture(t)
	_, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformShopify)
	assert.Error(t, err)
}

func TestSyncService_SyncPlatform_NotConnected(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.service.SyncPlatform(context.Background(), uuid.New(), channel.PlatformEbay)

	assert.ErrorIs(t, err, shared.ErrNotConnected)
}

// ---------------------------------------------------------------------------
// Manual sales
// ---------------------------------------------------------------------------

func TestSalesService_RecordManualSale(t *testing.T) {
	f := newSyncFixture(t)

	resp, err := f.service.RecordManualSale(context.Background(), f.userID, f.listing.ID, ManualSaleRequest{
		Platform: "CRAIGSLIST",
		Price:    "80.00",
		Currency: "USD",
	})

	require.NoError(t, err)
	assert.Equal(t, channel.SaleOriginManual, resp.Sale.Origin)
	assert.True(t, resp.Sale.Price.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, listing.StateSold, f.listing.State)

	require.Equal(t, 1, f.delister.callCount())
	assert.Equal(t, channel.PlatformCraigslist, f.delister.calls[0])
}

func TestSalesService_RecordManualSale_OffPlatform(t *testing.T) {
	f := newSyncFixture(t)

	resp, err := f.service.RecordManualSale(context.Background(), f.userID, f.listing.ID, ManualSaleRequest{
		Price:    "45.50",
		Currency: "USD",
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Sale.Platform)
	// No platform is spared: the item left through an untracked door
	require.Equal(t, 1, f.delister.callCount())
	assert.Equal(t, channel.PlatformCode(""), f.delister.calls[0])
}

func TestSalesService_RecordManualSale_InvalidPrice(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.service.RecordManualSale(context.Background(), f.userID, f.listing.ID, ManualSaleRequest{
		Price:    "-5",
		Currency: "USD",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PRICE", domainErr.Code)
}

func TestSalesService_RecordManualSale_AlreadySold(t *testing.T) {
	f := newSyncFixture(t)
	require.NoError(t, f.listing.MarkSold())

	resp, err := f.service.RecordManualSale(context.Background(), f.userID, f.listing.ID, ManualSaleRequest{
		Price:    "80",
		Currency: "USD",
	})

	// A later sale of a sold item is still recorded; only the first one
	// drives the delist fan-out
	require.NoError(t, err)
	assert.Equal(t, channel.SaleOriginManual, resp.Sale.Origin)
	assert.Nil(t, resp.Fanout)
	require.Len(t, f.sales.saved, 1)
	assert.Equal(t, 0, f.delister.callCount())
}

func TestSalesService_RecordManualSale_ForeignListing(t *testing.T) {
	f := newSyncFixture(t)

	_, err := f.service.RecordManualSale(context.Background(), uuid.New(), f.listing.ID, ManualSaleRequest{
		Price:    "80",
		Currency: "USD",
	})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSalesService_ListSales(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	_, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	resp, err := f.service.ListSales(context.Background(), f.userID, ListSalesRequest{})
	require.NoError(t, err)

	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "sale-1", resp.Items[0].NativeSaleID)
}

func TestSalesService_ListListingSales(t *testing.T) {
	f := newSyncFixture(t, saleEvent("remote-1", "sale-1"))

	_, err := f.service.SyncPlatform(context.Background(), f.userID, channel.PlatformEbay)
	require.NoError(t, err)

	resp, err := f.service.ListListingSales(context.Background(), f.userID, f.listing.ID)
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)

	_, err = f.service.ListListingSales(context.Background(), uuid.New(), f.listing.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
