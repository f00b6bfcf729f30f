// pkg/core/bind.go
package core

import (
	"context"
	"fmt"

	"github.com/joeydtaylor/modview/pkg/form"
	manifest "github.com/joeydtaylor/modview/pkg/manifest"
	"github.com/joeydtaylor/modview/pkg/store/sqlstore"
)

// Bind registers the models and forms declared by the manifest. Models are
// SQLite tables of db, created when missing. A form may refer to a declared
// model or to one registered from code.
func (r *Registry) Bind(ctx context.Context, cfg manifest.Config, db *sqlstore.DB) error {
	if len(cfg.Models) > 0 && db == nil {
		return fmt.Errorf("manifest declares %d models but no database is configured", len(cfg.Models))
	}
	for _, m := range cfg.Models {
		t, err := db.Table(ctx, m.Name, m.Columns...)
		if err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
		if len(m.Defaults) > 0 {
			if t, err = t.WithDefaults(m.Defaults); err != nil {
				return fmt.Errorf("model %q: %w", m.Name, err)
			}
		}
		r.Model(m.Name, t)
	}
	for _, f := range cfg.Forms {
		model, ok := r.LookupModel(f.Model)
		if !ok {
			return fmt.Errorf("form %q: model %q not registered", f.Name, f.Model)
		}
		cls := form.Model{Model: model, Fields: f.Fields, Required: f.Required}
		if f.Set {
			r.Form(f.Name, form.ModelSet{Form: cls, Prefix: f.Prefix})
			continue
		}
		r.Form(f.Name, cls)
	}
	return nil
}
