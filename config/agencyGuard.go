package config

import (
	"context"
	"strings"

	"bitbucket.org/swelyradist/agency_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgencyGuardPlugin enforces multi-tenant isolation by automatically scoping
// queries/updates/deletes to the request's agency_id when the model has an agency_id column.
//
// NOTE:
// - This does NOT apply to Raw SQL queries. Those must include agency_id manually.
// - Admin/internal bypass is explicit via context flags.
type AgencyGuardPlugin struct{}

func NewAgencyGuardPlugin() *AgencyGuardPlugin { return &AgencyGuardPlugin{} }

func (p *AgencyGuardPlugin) Name() string { return "agency_guard" }

func (p *AgencyGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("agency_guard:query", agencyGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("agency_guard:row", agencyGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register("agency_guard:update", agencyGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("agency_guard:delete", agencyGuardCallback); err != nil {
		return err
	}
	return nil
}

func agencyGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	if shouldBypassAgencyScope(ctx) {
		return
	}
	agencyID := agencyIdFromContext(ctx)
	if agencyID == "" {
		return
	}

	// Only apply if the current model/table includes an agency_id column.
	if db.Statement.Schema == nil {
		return
	}
	hasAgencyID := false
	for _, f := range db.Statement.Schema.Fields {
		if strings.EqualFold(f.DBName, "agency_id") {
			hasAgencyID = true
			break
		}
	}
	if !hasAgencyID {
		return
	}

	// Don't duplicate an explicit tenant filter.
	if whereHasAgencyID(db.Statement.Clauses["WHERE"]) {
		return
	}

	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "agency_id"},
				Value:  agencyID,
			},
		},
	})
}

func agencyIdFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(appctx.ContextKeyAgencyId).(string); ok && v != "" {
		return v
	}
	return ""
}

func shouldBypassAgencyScope(ctx context.Context) bool {
	if v, ok := ctx.Value(appctx.ContextKeyIsAdmin).(bool); ok && v {
		return true
	}
	return false
}

func whereHasAgencyID(c clause.Clause) bool {
	if c.Expression == nil {
		return false
	}
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasAgencyID(e) {
			return true
		}
	}
	return false
}

func exprHasAgencyID(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return colIsAgencyID(v.Column)
	case clause.Neq:
		return colIsAgencyID(v.Column)
	case clause.IN:
		return colIsAgencyID(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasAgencyID(x) {
				return true
			}
		}
		return false
	case clause.OrConditions:
		for _, x := range v.Exprs {
			if exprHasAgencyID(x) {
				return true
			}
		}
		return false
	case clause.Expr:
		// Best-effort for raw expressions.
		return strings.Contains(strings.ToLower(v.SQL), "agency_id")
	default:
		return false
	}
}

func colIsAgencyID(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "agency_id")
	case clause.Column:
		return strings.EqualFold(c.Name, "agency_id")
	default:
		return false
	}
}
