package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/bloom-backend/internal/domain/aggregates"
	"github.com/yungbote/bloom-backend/internal/platform/dbctx"
)

// TxRunner runs fn inside one transaction; a non-nil return rolls it back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return gormTxRunner{db: db}
}

func (r gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "no database configured", nil)
	}
	if fn == nil {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
