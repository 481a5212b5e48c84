package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const metaCatalogVersion = "catalog_version"

var definitionColumns = []string{
	"id", "name_en", "name_zh", "description_en", "description_zh",
	"category", "kind", "pos_x", "pos_y",
	"connections", "requirements", "keywords", "display_order", "active",
}

// nodeDefinitionRepo implements NodeDefinitionRepo on node_definitions,
// keeping the catalog version in app_meta.
type nodeDefinitionRepo struct {
	db *sql.DB
}

func (r *nodeDefinitionRepo) List(ctx context.Context, activeOnly bool) ([]NodeDefinitionRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(definitionColumns...).From(b.Table(tableNodeDefinitions))
	if activeOnly {
		sel.Where(entsql.EQ("active", true))
	}
	query, args := sel.OrderBy("display_order", "id").Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list node definitions: %w", err)
	}
	defer rows.Close()

	var out []NodeDefinitionRecord
	for rows.Next() {
		var (
			def                           NodeDefinitionRecord
			connections, requirements, kw []byte
		)
		if err := rows.Scan(&def.ID, &def.NameEN, &def.NameZH, &def.DescriptionEN, &def.DescriptionZH,
			&def.Category, &def.Kind, &def.PosX, &def.PosY,
			&connections, &requirements, &kw, &def.DisplayOrder, &def.Active); err != nil {
			return nil, fmt.Errorf("scan node definition: %w", err)
		}
		for _, f := range []struct {
			raw []byte
			dst *[]string
		}{
			{connections, &def.Connections},
			{requirements, &def.Requirements},
			{kw, &def.Keywords},
		} {
			if len(f.raw) == 0 {
				continue
			}
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return nil, fmt.Errorf("decode node definition %s: %w", def.ID, err)
			}
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func (r *nodeDefinitionRepo) Replace(ctx context.Context, version string, defs []NodeDefinitionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog replace: %w", err)
	}
	defer tx.Rollback()

	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Delete(tableNodeDefinitions).Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear node definitions: %w", err)
	}

	if len(defs) > 0 {
		ins := b.Insert(tableNodeDefinitions).Columns(definitionColumns...)
		for _, def := range defs {
			connections, err := marshalList(def.Connections)
			if err != nil {
				return err
			}
			requirements, err := marshalList(def.Requirements)
			if err != nil {
				return err
			}
			keywords, err := marshalList(def.Keywords)
			if err != nil {
				return err
			}
			ins.Values(def.ID, def.NameEN, def.NameZH, def.DescriptionEN, def.DescriptionZH,
				def.Category, def.Kind, def.PosX, def.PosY,
				connections, requirements, keywords, def.DisplayOrder, def.Active)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert node definitions: %w", err)
		}
	}

	query, args = b.Insert(tableAppMeta).
		Columns("name", "value").
		Values(metaCatalogVersion, version).
		OnConflict(entsql.ConflictColumns("name"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record catalog version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog replace: %w", err)
	}
	return nil
}

func (r *nodeDefinitionRepo) Version(ctx context.Context) (string, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("value").
		From(b.Table(tableAppMeta)).
		Where(entsql.EQ("name", metaCatalogVersion)).
		Query()

	var v string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&v)
	if isNoRows(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read catalog version: %w", err)
	}
	return v, nil
}

func marshalList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}
