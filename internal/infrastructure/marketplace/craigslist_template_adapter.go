package marketplace

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/crosslist/backend/internal/application/publish"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/listing"
)

const (
	// craigslistExportPrefix is where rendered postings live in object storage
	craigslistExportPrefix = "exports/craigslist/"
	// craigslistRemoteIDPrefix marks locally generated pseudo remote IDs
	craigslistRemoteIDPrefix = "tpl-"
)

// craigslistPostingTemplate renders the prefilled posting a seller pastes
// into the Craigslist posting form
const craigslistPostingTemplate = `<section class="posting">
<h2>{{.Title}} - {{.Currency}} {{.Price}}</h2>
<p class="condition">Condition: {{.Condition}}</p>
<div class="body">{{.Description}}</div>
{{- if .Attributes}}
<ul class="attrs">
{{- range .Attributes}}
  <li>{{.Name}}: {{.Value}}</li>
{{- end}}
</ul>
{{- end}}
{{- if .PhotoRefs}}
<p class="photos">Photos to attach: {{len .PhotoRefs}}</p>
{{- end}}
</section>
`

// CraigslistTemplateAdapter implements the channel.Adapter port for the
// template family. "Publishing" renders a posting template the seller
// pastes manually; the platform is never called, so a publish is always
// terminal success.
type CraigslistTemplateAdapter struct {
	storage publish.ObjectStorage
	tmpl    *template.Template
}

// NewCraigslistTemplateAdapter creates a new Craigslist template adapter
// backed by the given object storage
func NewCraigslistTemplateAdapter(storage publish.ObjectStorage) (*CraigslistTemplateAdapter, error) {
	tmpl, err := template.New("posting").Parse(craigslistPostingTemplate)
	if err != nil {
		return nil, fmt.Errorf("craigslist: failed to parse posting template: %w", err)
	}
	return &CraigslistTemplateAdapter{
		storage: storage,
		tmpl:    tmpl,
	}, nil
}

// PlatformCode returns the platform code this adapter handles
func (a *CraigslistTemplateAdapter) PlatformCode() channel.PlatformCode {
	return channel.PlatformCraigslist
}

// Family returns the adapter family
func (a *CraigslistTemplateAdapter) Family() channel.AdapterFamily {
	return channel.FamilyTemplate
}

// Capabilities returns the supported operations. The platform is never
// called, so delist and pull_sales are absent.
func (a *CraigslistTemplateAdapter) Capabilities() channel.CapabilitySet {
	return channel.NewCapabilitySet(
		channel.CapabilityTestConnection,
		channel.CapabilityPublish,
		channel.CapabilityUpdate,
	)
}

// ImageLimits returns Craigslist's photo constraints
func (a *CraigslistTemplateAdapter) ImageLimits() channel.PlatformImageLimits {
	return channel.PlatformImageLimits{
		MaxBytes:       8 * 1024 * 1024,
		MaxDimensionPx: 1200,
		MaxCount:       24,
		AllowedFormats: []string{"image/jpeg"},
		RequiresPhoto:  false,
	}
}

// ViewSpec returns the field mapping used to project listings onto the
// posting template
func (a *CraigslistTemplateAdapter) ViewSpec() channel.ViewSpec {
	return channel.ViewSpec{
		MaxTitleLen: 70,
		ConditionLabels: map[listing.Condition]string{
			listing.ConditionNew:      "new",
			listing.ConditionLikeNew:  "like new",
			listing.ConditionGood:     "good",
			listing.ConditionFair:     "fair",
			listing.ConditionForParts: "salvage",
		},
		RequiredFields: []string{"title", "price"},
	}
}

// TestConnection always reports alive: rendering a template needs no
// remote session
func (a *CraigslistTemplateAdapter) TestConnection(_ context.Context, _ *channel.Credential) (channel.ConnectionStatus, error) {
	return channel.ConnectionAlive, nil
}

// Publish renders the posting template and stores it for the seller to
// download and paste
func (a *CraigslistTemplateAdapter) Publish(ctx context.Context, view *channel.PlatformView, _ []channel.PreparedPhoto, _ *channel.Credential) (channel.PublishResult, error) {
	remoteID := craigslistRemoteIDPrefix + uuid.New().String()
	if err := a.renderArtifact(ctx, remoteID, view); err != nil {
		return channel.TransientPublishFailure(err.Error()), nil
	}
	return channel.Published(remoteID), nil
}

// Update re-renders the posting under the same pseudo remote ID
func (a *CraigslistTemplateAdapter) Update(ctx context.Context, remoteID string, view *channel.PlatformView, _ *channel.Credential) (channel.PublishResult, error) {
	if err := a.renderArtifact(ctx, remoteID, view); err != nil {
		return channel.TransientPublishFailure(err.Error()), nil
	}
	return channel.Published(remoteID), nil
}

// Delist is not supported: a manually pasted posting can only be removed
// by the seller on the platform itself
func (a *CraigslistTemplateAdapter) Delist(_ context.Context, _ string, _ *channel.Credential) (channel.DelistResult, error) {
	return channel.DelistResult{}, channel.ErrCapabilityMissing
}

// PullSales is not supported: the platform reports nothing back
func (a *CraigslistTemplateAdapter) PullSales(_ context.Context, _ *channel.Credential, _ time.Time) ([]channel.RawSaleEvent, error) {
	return nil, channel.ErrCapabilityMissing
}

// RenderedPosting returns the stored posting markup for a pseudo remote ID
func (a *CraigslistTemplateAdapter) RenderedPosting(ctx context.Context, remoteID string) ([]byte, error) {
	data, _, err := a.storage.Fetch(ctx, postingKey(remoteID))
	if err != nil {
		return nil, fmt.Errorf("craigslist: failed to fetch rendered posting: %w", err)
	}
	return data, nil
}

// postingKey derives the object-storage key for a pseudo remote ID
func postingKey(remoteID string) string {
	return craigslistExportPrefix + remoteID + ".html"
}

// renderArtifact executes the posting template and stores the markup
func (a *CraigslistTemplateAdapter) renderArtifact(ctx context.Context, remoteID string, view *channel.PlatformView) error {
	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, view); err != nil {
		return fmt.Errorf("craigslist: failed to render posting: %w", err)
	}
	if err := a.storage.Upload(ctx, postingKey(remoteID), buf.Bytes(), "text/html; charset=utf-8"); err != nil {
		return fmt.Errorf("craigslist: failed to store rendered posting: %w", err)
	}
	return nil
}

// Compile-time interface check
var _ channel.Adapter = (*CraigslistTemplateAdapter)(nil)
