package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"admesh/contexts/protocol-core/campaign-ledger/domain/entities"
	domainerrors "admesh/contexts/protocol-core/campaign-ledger/domain/errors"
	"admesh/contexts/protocol-core/campaign-ledger/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	campaignCounterName = "campaign_id"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type campaignModel struct {
	CampaignID          uint64 `gorm:"column:campaign_id;primaryKey"`
	Advertiser          string `gorm:"column:advertiser;index"`
	Publisher           string `gorm:"column:publisher;index"`
	BudgetPlanck        uint64 `gorm:"column:budget_planck"`
	RemainingPlanck     uint64 `gorm:"column:remaining_planck"`
	DailyCapPlanck      uint64 `gorm:"column:daily_cap_planck"`
	MaxBidCpmPlanck     uint64 `gorm:"column:max_bid_cpm_planck"`
	DailySpentPlanck    uint64 `gorm:"column:daily_spent_planck"`
	LastSpendDay        uint64 `gorm:"column:last_spend_day"`
	PendingExpiryBlock  uint64 `gorm:"column:pending_expiry_block"`
	TerminationBlock    uint64 `gorm:"column:termination_block"`
	SnapshotTakeRateBps uint32 `gorm:"column:snapshot_take_rate_bps"`
	Status              string `gorm:"column:status;index"`
	SchemaVersion       uint32 `gorm:"column:schema_version"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (campaignModel) TableName() string { return "ledger_campaigns" }

type counterModel struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value uint64 `gorm:"column:value"`
}

func (counterModel) TableName() string { return "ledger_counters" }

type outboxModel struct {
	OutboxID     string `gorm:"column:outbox_id;primaryKey"`
	EventType    string `gorm:"column:event_type"`
	PartitionKey string `gorm:"column:partition_key"`
	Payload      []byte `gorm:"column:payload"`
	Status       string `gorm:"column:status;index"`
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

func (outboxModel) TableName() string { return "ledger_outbox" }

// Migrate creates the ledger tables. Call once at process start.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&campaignModel{}, &counterModel{}, &outboxModel{})
}

// NextCampaignID assigns sequential campaign ids from a locked counter row.
func (r *Repository) NextCampaignID(ctx context.Context) (uint64, error) {
	var assigned uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row counterModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("name = ?", campaignCounterName).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = counterModel{Name: campaignCounterName, Value: 1}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		assigned = row.Value
		row.Value++
		return tx.Model(&counterModel{}).
			Where("name = ?", campaignCounterName).
			Update("value", row.Value).Error
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

func (r *Repository) CreateCampaign(ctx context.Context, campaign entities.Campaign) error {
	row := campaignModelFromEntity(campaign)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidCampaignInput
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateCampaign(ctx context.Context, campaign entities.Campaign) error {
	result := r.db.WithContext(ctx).
		Model(&campaignModel{}).
		Where("campaign_id = ?", campaign.CampaignID).
		Updates(map[string]any{
			"remaining_planck":   campaign.RemainingPlanck,
			"daily_spent_planck": campaign.DailySpentPlanck,
			"last_spend_day":     campaign.LastSpendDay,
			"termination_block":  campaign.TerminationBlock,
			"status":             string(campaign.Status),
			"updated_at":         campaign.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCampaignNotFound
	}
	return nil
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID uint64) (entities.Campaign, error) {
	var row campaignModel
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCampaigns(ctx context.Context, filter ports.CampaignFilter) ([]entities.Campaign, error) {
	tx := r.db.WithContext(ctx).Model(&campaignModel{})
	if filter.Advertiser != "" {
		tx = tx.Where("advertiser = ?", filter.Advertiser)
	}
	if filter.Publisher != "" {
		tx = tx.Where("publisher = ?", filter.Publisher)
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var rows []campaignModel
	if err := tx.Order("campaign_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ListExpirablePending(ctx context.Context, block uint64, limit int) ([]entities.Campaign, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []campaignModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND pending_expiry_block <= ?", string(entities.CampaignStatusPending), block).
		Order("campaign_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]entities.Campaign, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	ts := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &ts,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCampaignNotFound
	}
	return nil
}

func campaignModelFromEntity(campaign entities.Campaign) campaignModel {
	return campaignModel{
		CampaignID:          campaign.CampaignID,
		Advertiser:          campaign.Advertiser,
		Publisher:           campaign.Publisher,
		BudgetPlanck:        campaign.BudgetPlanck,
		RemainingPlanck:     campaign.RemainingPlanck,
		DailyCapPlanck:      campaign.DailyCapPlanck,
		MaxBidCpmPlanck:     campaign.MaxBidCpmPlanck,
		DailySpentPlanck:    campaign.DailySpentPlanck,
		LastSpendDay:        campaign.LastSpendDay,
		PendingExpiryBlock:  campaign.PendingExpiryBlock,
		TerminationBlock:    campaign.TerminationBlock,
		SnapshotTakeRateBps: campaign.SnapshotTakeRateBps,
		Status:              string(campaign.Status),
		SchemaVersion:       campaign.SchemaVersion,
		CreatedAt:           campaign.CreatedAt.UTC(),
		UpdatedAt:           campaign.UpdatedAt.UTC(),
	}
}

func (m campaignModel) toEntity() entities.Campaign {
	return entities.Campaign{
		CampaignID:          m.CampaignID,
		Advertiser:          m.Advertiser,
		Publisher:           m.Publisher,
		BudgetPlanck:        m.BudgetPlanck,
		RemainingPlanck:     m.RemainingPlanck,
		DailyCapPlanck:      m.DailyCapPlanck,
		MaxBidCpmPlanck:     m.MaxBidCpmPlanck,
		DailySpentPlanck:    m.DailySpentPlanck,
		LastSpendDay:        m.LastSpendDay,
		PendingExpiryBlock:  m.PendingExpiryBlock,
		TerminationBlock:    m.TerminationBlock,
		SnapshotTakeRateBps: m.SnapshotTakeRateBps,
		Status:              entities.CampaignStatus(m.Status),
		SchemaVersion:       m.SchemaVersion,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
