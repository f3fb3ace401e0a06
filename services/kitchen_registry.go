package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
	"gorm.io/gorm"
)

// DefaultCodeAttempts bounds code generation retries. With 36^6 codes a
// second attempt is already rare.
const DefaultCodeAttempts = 8

// KitchenRegistry owns the kitchen account to pairing code mapping.
type KitchenRegistry struct {
	DB          *gorm.DB
	Audit       *AuditRecorder
	Generate    func() (string, error)
	MaxAttempts int
	Now         func() time.Time
}

func NewKitchenRegistry(db *gorm.DB, audit *AuditRecorder) *KitchenRegistry {
	return &KitchenRegistry{
		DB:          db,
		Audit:       audit,
		Generate:    GenerateKitchenCode,
		MaxAttempts: DefaultCodeAttempts,
		Now:         time.Now,
	}
}

// GenerateKitchenCode draws a random code from models.KitchenCodeAlphabet.
func GenerateKitchenCode() (string, error) {
	alphabet := models.KitchenCodeAlphabet
	max := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(models.KitchenCodeLength)
	for i := 0; i < models.KitchenCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// EnsureCode returns the kitchen's code, creating the account on first use.
func (k *KitchenRegistry) EnsureCode(ctx context.Context, actor Actor) (string, error) {
	if err := actor.require(models.RoleKitchen); err != nil {
		return "", err
	}

	db := k.DB.WithContext(ctx)

	code, err := k.CodeFor(ctx, actor.UserID)
	if err == nil {
		return code, nil
	}
	if !errors.Is(err, ErrKitchenNotFound) {
		return "", err
	}

	attempts := k.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultCodeAttempts
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		candidate, err := k.Generate()
		if err != nil {
			return "", fmt.Errorf("generate kitchen code: %w", err)
		}
		candidate = utils.NormalizeKitchenCode(candidate)

		var taken int64
		if err := db.Model(&models.KitchenAccount{}).Where("code = ?", candidate).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken > 0 {
			utils.InfoLogger.WithField("attempt", attempt).Debug("kitchen code collision, retrying")
			continue
		}

		account := models.KitchenAccount{
			UserID:    actor.UserID,
			Code:      candidate,
			CreatedAt: k.Now(),
		}
		err = db.Create(&account).Error
		if err == nil {
			utils.InfoLogger.WithFields(logrus.Fields{
				"kitchen_user_id": actor.UserID,
				"code":            candidate,
			}).Info("kitchen code issued")
			k.Audit.Record(ctx, AuditEntry{
				Actor:      actor,
				Action:     "kitchen code issued",
				EntityType: EntityKitchen,
				EntityID:   account.ID,
				Detail:     candidate,
			})
			return candidate, nil
		}
		if !isUniqueViolation(err) {
			return "", err
		}

		// Either the code was taken between the check and the insert, or a
		// concurrent request created this kitchen's account first.
		if existing, lookupErr := k.CodeFor(ctx, actor.UserID); lookupErr == nil {
			return existing, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrCodeGeneration, attempts)
}

// CodeFor returns the code owned by kitchenUserID without creating one.
func (k *KitchenRegistry) CodeFor(ctx context.Context, kitchenUserID uint) (string, error) {
	var account models.KitchenAccount
	err := k.DB.WithContext(ctx).Where("user_id = ?", kitchenUserID).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrKitchenNotFound
	}
	if err != nil {
		return "", err
	}
	return account.Code, nil
}

// LookupByCode finds the kitchen account for code, ignoring case and surrounding space.
func (k *KitchenRegistry) LookupByCode(ctx context.Context, code string) (*models.KitchenAccount, error) {
	code = utils.NormalizeKitchenCode(code)
	if !utils.IsKitchenCode(code) {
		return nil, ErrKitchenNotFound
	}

	var account models.KitchenAccount
	err := k.DB.WithContext(ctx).Where("code = ?", code).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKitchenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}
