// Package domain 证券参考数据与价格快照的领域模型
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrSecurityNotFound = errors.New("security not found")
	ErrPriceNotFound    = errors.New("price snapshot not found")
)

// Security 证券参考数据
type Security struct {
	gorm.Model
	// 证券 ID（代码）
	SecurityID string `gorm:"column:security_id;type:varchar(10);uniqueIndex;not null" json:"security_id"`
	// 公司名称
	CompanyName string `gorm:"column:company_name;type:varchar(100);not null" json:"company_name"`
	// 所属行业
	Industry string `gorm:"column:industry;type:varchar(50);index" json:"industry"`
	// 是否可交易
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
}

func (Security) TableName() string { return "securities" }

// SecurityPrice 当前价格快照，每只证券一行
type SecurityPrice struct {
	gorm.Model
	// 证券 ID
	SecurityID string `gorm:"column:security_id;type:varchar(10);uniqueIndex;not null" json:"security_id"`
	// 当前价格
	CurrentPrice decimal.Decimal `gorm:"column:current_price;type:decimal(16,2);not null" json:"current_price"`
}

func (SecurityPrice) TableName() string { return "security_prices" }

// Quote 价格快照读模型，缓存在 Redis
type Quote struct {
	SecurityID   string          `json:"security_id"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SecurityRepository 证券仓储接口，未命中返回 (nil, nil)
type SecurityRepository interface {
	Get(ctx context.Context, securityID string) (*Security, error)
	Save(ctx context.Context, security *Security) error
	GetPrice(ctx context.Context, securityID string) (*SecurityPrice, error)
	SavePrice(ctx context.Context, price *SecurityPrice) error
}

// QuoteCache 价格快照缓存，未命中返回 (nil, nil)
type QuoteCache interface {
	Get(ctx context.Context, securityID string) (*Quote, error)
	Set(ctx context.Context, quote *Quote) error
}
