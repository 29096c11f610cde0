package marketplace

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
)

// shopifyCSVHeader is the product import row schema, a subset of Shopify's
// bulk product CSV columns
var shopifyCSVHeader = []string{
	"Handle", "Title", "Body (HTML)", "Vendor", "Type", "Tags",
	"Published", "Variant SKU", "Variant Inventory Qty", "Variant Price",
	"Image Src", "Status",
}

const (
	// shopifyExportPrefix is where export artifacts live in object storage
	shopifyExportPrefix = "exports/shopify/"
	// shopifyRemoteIDPrefix marks locally generated pseudo remote IDs
	shopifyRemoteIDPrefix = "csv-"
)

// ShopifyCSVAdapter implements the channel.Adapter port for the bulk-export
// family. "Publishing" materializes a product CSV row into an export
// artifact in object storage; there is no remote call, so a publish is
// terminal success unless the row fails schema validation.
type ShopifyCSVAdapter struct {
	storage publish.ObjectStorage
	// presignExpiry bounds the image links embedded in exported rows
	presignExpiry time.Duration
}

// NewShopifyCSVAdapter creates a new Shopify CSV adapter backed by the
// given object storage
func NewShopifyCSVAdapter(storage publish.ObjectStorage, presignExpiry time.Duration) *ShopifyCSVAdapter {
	if presignExpiry <= 0 {
		presignExpiry = 24 * time.Hour
	}
	return &ShopifyCSVAdapter{
		storage:       storage,
		presignExpiry: presignExpiry,
	}
}

// PlatformCode returns the platform code this adapter handles
func (a *ShopifyCSVAdapter) PlatformCode() channel.PlatformCode {
	return channel.PlatformShopify
}

// Family returns the adapter family
func (a *ShopifyCSVAdapter) Family() channel.AdapterFamily {
	return channel.FamilyBulkExport
}

// Capabilities returns the supported operations. Sales never flow back
// through a CSV import, so pull_sales is absent.
func (a *ShopifyCSVAdapter) Capabilities() channel.CapabilitySet {
	return channel.NewCapabilitySet(
		channel.CapabilityTestConnection,
		channel.CapabilityPublish,
		channel.CapabilityUpdate,
		channel.CapabilityDelist,
	)
}

// ImageLimits returns Shopify's photo constraints
func (a *ShopifyCSVAdapter) ImageLimits() channel.PlatformImageLimits {
	return channel.PlatformImageLimits{
		MaxBytes:       20 * 1024 * 1024,
		MaxDimensionPx: 4472,
		MaxCount:       250,
		AllowedFormats: []string{"image/jpeg", "image/png"},
		RequiresPhoto:  false,
	}
}

// ViewSpec returns the field mapping used to project listings onto the
// Shopify row schema
func (a *ShopifyCSVAdapter) ViewSpec() channel.ViewSpec {
	return channel.ViewSpec{
		MaxTitleLen: 255,
		ConditionLabels: map[listing.Condition]string{
			listing.ConditionNew:      "New",
			listing.ConditionLikeNew:  "Like new",
			listing.ConditionGood:     "Used - good",
			listing.ConditionFair:     "Used - fair",
			listing.ConditionForParts: "For parts",
		},
		RequiredFields: []string{"title", "price", "currency"},
	}
}

// TestConnection always reports alive: the export family needs no remote
// session, only reachable object storage
func (a *ShopifyCSVAdapter) TestConnection(_ context.Context, _ *channel.Credential) (channel.ConnectionStatus, error) {
	return channel.ConnectionAlive, nil
}

// Publish materializes the CSV artifact and returns a locally generated
// pseudo remote ID
func (a *ShopifyCSVAdapter) Publish(ctx context.Context, view *channel.PlatformView, _ []channel.PreparedPhoto, _ *channel.Credential) (channel.PublishResult, error) {
	if reason := validateShopifyRow(view); reason != "" {
		return channel.Rejected(reason), nil
	}

	remoteID := shopifyRemoteIDPrefix + uuid.New().String()
	if err := a.writeArtifact(ctx, remoteID, view); err != nil {
		return channel.TransientPublishFailure(err.Error()), nil
	}
	return channel.Published(remoteID), nil
}

// Update re-materializes the artifact under the same pseudo remote ID
func (a *ShopifyCSVAdapter) Update(ctx context.Context, remoteID string, view *channel.PlatformView, _ *channel.Credential) (channel.PublishResult, error) {
	if reason := validateShopifyRow(view); reason != "" {
		return channel.Rejected(reason), nil
	}
	if err := a.writeArtifact(ctx, remoteID, view); err != nil {
		return channel.TransientPublishFailure(err.Error()), nil
	}
	return channel.Published(remoteID), nil
}

// Delist removes the export artifact. A missing artifact means the row is
// already gone, which delisting treats as success.
func (a *ShopifyCSVAdapter) Delist(ctx context.Context, remoteID string, _ *channel.Credential) (channel.DelistResult, error) {
	key := artifactKey(remoteID)

	exists, err := a.storage.ObjectExists(ctx, key)
	if err != nil {
		return channel.DelistResult{Kind: channel.DelistOutcomeTransient, Reason: err.Error()}, nil
	}
	if !exists {
		return channel.DelistResult{Kind: channel.DelistOutcomeAlreadyGone}, nil
	}
	if err := a.storage.DeleteObject(ctx, key); err != nil {
		return channel.DelistResult{Kind: channel.DelistOutcomeTransient, Reason: err.Error()}, nil
	}
	return channel.DelistResult{Kind: channel.DelistOutcomeDelisted}, nil
}

// PullSales is not supported: a CSV import never reports sales back
func (a *ShopifyCSVAdapter) PullSales(_ context.Context, _ *channel.Credential, _ time.Time) ([]channel.RawSaleEvent, error) {
	return nil, channel.ErrCapabilityMissing
}

// ArtifactDownloadURL returns a presigned download link for the export
// artifact behind a pseudo remote ID
func (a *ShopifyCSVAdapter) ArtifactDownloadURL(ctx context.Context, remoteID string) (string, time.Time, error) {
	return a.storage.PresignDownload(ctx, artifactKey(remoteID), a.presignExpiry)
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// artifactKey derives the object-storage key for a pseudo remote ID
func artifactKey(remoteID string) string {
	return shopifyExportPrefix + remoteID + ".csv"
}

// validateShopifyRow checks the row schema. A violation is a terminal
// rejection; no amount of retrying fixes a malformed row.
func validateShopifyRow(view *channel.PlatformView) string {
	if strings.TrimSpace(view.Title) == "" {
		return "row schema: Title must not be empty"
	}
	price, err := decimal.NewFromString(view.Price)
	if err != nil {
		return fmt.Sprintf("row schema: Variant Price %q is not a number", view.Price)
	}
	if !price.IsPositive() {
		return "row schema: Variant Price must be positive"
	}
	if view.Quantity < 0 {
		return "row schema: Variant Inventory Qty must not be negative"
	}
	return ""
}

// writeArtifact renders the CSV rows and stores them in object storage
func (a *ShopifyCSVAdapter) writeArtifact(ctx context.Context, remoteID string, view *channel.PlatformView) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(shopifyCSVHeader); err != nil {
		return fmt.Errorf("shopify: failed to write csv header: %w", err)
	}
	for _, row := range a.buildRows(ctx, view) {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("shopify: failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("shopify: failed to flush csv: %w", err)
	}

	if err := a.storage.Upload(ctx, artifactKey(remoteID), buf.Bytes(), "text/csv"); err != nil {
		return fmt.Errorf("shopify: failed to store export artifact: %w", err)
	}
	return nil
}

// buildRows maps the view onto Shopify product rows. Additional photos
// become image-only continuation rows, matching Shopify's import format.
func (a *ShopifyCSVAdapter) buildRows(ctx context.Context, view *channel.PlatformView) [][]string {
	handle := shopifyHandle(view)
	tags := make([]string, 0, len(view.Attributes)+1)
	tags = append(tags, view.Condition)
	for _, attr := range view.Attributes {
		tags = append(tags, attr.Name+":"+attr.Value)
	}

	rows := make([][]string, 0, 1+len(view.PhotoRefs))
	rows = append(rows, []string{
		handle,
		view.Title,
		view.Description,
		"", // Vendor
		view.Category,
		strings.Join(tags, ", "),
		"TRUE",
		view.SKU,
		fmt.Sprintf("%d", view.Quantity),
		view.Price,
		a.imageSrc(ctx, view.PhotoRefs, 0),
		"active",
	})
	for i := 1; i < len(view.PhotoRefs); i++ {
		row := make([]string, len(shopifyCSVHeader))
		row[0] = handle
		row[10] = a.imageSrc(ctx, view.PhotoRefs, i)
		rows = append(rows, row)
	}
	return rows
}

// imageSrc resolves one photo reference to a downloadable link, falling
// back to the raw reference when presigning fails
func (a *ShopifyCSVAdapter) imageSrc(ctx context.Context, refs []string, i int) string {
	if i >= len(refs) {
		return ""
	}
	link, _, err := a.storage.PresignDownload(ctx, refs[i], a.presignExpiry)
	if err != nil {
		return refs[i]
	}
	return link
}

// shopifyHandle derives a stable URL handle from the listing identity
func shopifyHandle(view *channel.PlatformView) string {
	if view.SKU != "" {
		return strings.ToLower(strings.ReplaceAll(view.SKU, " ", "-"))
	}
	return view.ListingID
}

// Compile-time interface check
var _ channel.Adapter = (*ShopifyCSVAdapter)(nil)
