package events

import (
	"context"
	"time"

	"taxonomy-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/sirupsen/logrus"
)

const taxonomyStream = "TAXONOMY_EVENTS"

// Taxonomy event types
const (
	TaxonomyImported         = "taxonomy.imported"
	TaxonomySynced           = "taxonomy.synced"
	CategoryCreated          = "taxonomy.category.created"
	SubcategoryCreated       = "taxonomy.subcategory.created"
	CategoryStatusChanged    = "taxonomy.category.status_changed"
	SubcategoryStatusChanged = "taxonomy.subcategory.status_changed"
)

// Actor identifies who triggered a change
type Actor struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	ClientIP  string `json:"clientIp,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

// ImportEvent is published after an import or sync commits
type ImportEvent struct {
	events.BaseEvent
	Actor    Actor                       `json:"actor"`
	Mode     string                      `json:"mode"`
	Report   models.ReconciliationReport `json:"report"`
	Warnings int                         `json:"warnings"`
}

func (e *ImportEvent) GetSubject() string {
	return e.EventType
}

func (e *ImportEvent) GetStream() string {
	return taxonomyStream
}

// EntityEvent is published when an admin creates or toggles a single node
type EntityEvent struct {
	events.BaseEvent
	Actor    Actor  `json:"actor"`
	EntityID string `json:"entityId"`
	ParentID string `json:"parentId,omitempty"`
	Name     string `json:"name,omitempty"`
	Slug     string `json:"slug,omitempty"`
	IsActive bool   `json:"isActive"`
}

func (e *EntityEvent) GetSubject() string {
	return e.EventType
}

func (e *EntityEvent) GetStream() string {
	return taxonomyStream
}

// Publisher wraps the shared events publisher for taxonomy events
type Publisher struct {
	publisher *events.Publisher
	logger    *logrus.Entry
}

// NewPublisher creates a new taxonomy events publisher
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "taxonomy-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := publisher.EnsureStream(ctx, taxonomyStream, []string{"taxonomy.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure TAXONOMY_EVENTS stream")
	}

	return &Publisher{
		publisher: publisher,
		logger:    logger.WithField("component", "events.publisher"),
	}, nil
}

// PublishImport publishes taxonomy.synced for sync runs and taxonomy.imported otherwise
func (p *Publisher) PublishImport(ctx context.Context, mode string, report models.ReconciliationReport, warnings int, actor Actor) error {
	eventType := TaxonomyImported
	if mode == "sync" {
		eventType = TaxonomySynced
	}
	now := time.Now().UTC()
	event := &ImportEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			SourceID:  eventType + ":" + now.Format(time.RFC3339Nano),
			Timestamp: now,
		},
		Actor:    actor,
		Mode:     mode,
		Report:   report,
		Warnings: warnings,
	}

	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish import event")
		return err
	}
	return nil
}

// PublishEntity publishes a single-node event such as CategoryCreated
func (p *Publisher) PublishEntity(ctx context.Context, eventType, entityID, parentID, name, slug string, isActive bool, actor Actor) error {
	event := &EntityEvent{
		BaseEvent: events.BaseEvent{
			EventType: eventType,
			SourceID:  entityID, // Set sourceID to entity UUID for deduplication
			Timestamp: time.Now().UTC(),
		},
		Actor:    actor,
		EntityID: entityID,
		ParentID: parentID,
		Name:     name,
		Slug:     slug,
		IsActive: isActive,
	}

	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.WithError(err).WithField("event", eventType).Warn("Failed to publish taxonomy event")
		return err
	}
	return nil
}

// IsConnected returns true if connected to NATS
func (p *Publisher) IsConnected() bool {
	return p.publisher.IsConnected()
}

// Close closes the publisher connection
func (p *Publisher) Close() {
	p.publisher.Close()
}
