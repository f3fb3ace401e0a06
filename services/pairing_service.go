package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PairingService links waiters and cashiers to a kitchen code. Links are
// stored in pairing_links so they survive across sessions.
type PairingService struct {
	DB       *gorm.DB
	Kitchens *KitchenRegistry
	Audit    *AuditRecorder
	Now      func() time.Time
}

func NewPairingService(db *gorm.DB, kitchens *KitchenRegistry, audit *AuditRecorder) *PairingService {
	return &PairingService{DB: db, Kitchens: kitchens, Audit: audit, Now: time.Now}
}

// Link points actor at the kitchen owning code, replacing any previous link.
func (p *PairingService) Link(ctx context.Context, actor Actor, code string) (*models.PairingLink, error) {
	if err := actor.require(models.RoleWaiter, models.RoleCashier); err != nil {
		return nil, err
	}

	kitchen, err := p.Kitchens.LookupByCode(ctx, code)
	if errors.Is(err, ErrKitchenNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	now := p.Now()
	link := models.PairingLink{
		StaffUserID: actor.UserID,
		KitchenCode: kitchen.Code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	db := p.DB.WithContext(ctx)
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "staff_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"kitchen_code", "updated_at"}),
	}).Create(&link).Error
	if err != nil {
		return nil, err
	}

	var stored models.PairingLink
	if err := db.Where("staff_user_id = ?", actor.UserID).First(&stored).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"staff": actor.String(),
		"code":  stored.KitchenCode,
	}).Info("staff linked to kitchen")
	p.Audit.Record(ctx, AuditEntry{
		Actor:      actor,
		Action:     "linked to kitchen",
		EntityType: EntityKitchen,
		EntityID:   kitchen.ID,
		Detail:     stored.KitchenCode,
	})

	return &stored, nil
}

// Unlink removes actor's link. It is a no-op when none exists.
func (p *PairingService) Unlink(ctx context.Context, actor Actor) error {
	if err := actor.require(models.RoleWaiter, models.RoleCashier); err != nil {
		return err
	}

	res := p.DB.WithContext(ctx).Where("staff_user_id = ?", actor.UserID).Delete(&models.PairingLink{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		p.Audit.Record(ctx, AuditEntry{Actor: actor, Action: "unlinked from kitchen", EntityType: EntityKitchen})
	}
	return nil
}

// Current returns the kitchen code staffUserID is linked to, if any.
func (p *PairingService) Current(ctx context.Context, staffUserID uint) (string, bool, error) {
	var link models.PairingLink
	err := p.DB.WithContext(ctx).Where("staff_user_id = ?", staffUserID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return link.KitchenCode, true, nil
}
