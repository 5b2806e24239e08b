// Package sqlstore implements store.Driver over database/sql. The SQL is
// portable between SQLite and PostgreSQL; a Dialect supplies the
// placeholder syntax and the schema check.
package sqlstore

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/Keksclan/rawrmenu/store"
)

// Dialect holds what differs between backends.
type Dialect struct {
	Name string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// InitializedQuery returns a single boolean row telling whether the
	// menus table exists.
	InitializedQuery string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS menus (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		created_ts  BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS submenus (
		id          TEXT PRIMARY KEY,
		menu_id     TEXT NOT NULL REFERENCES menus (id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		created_ts  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submenus_menu_id ON submenus (menu_id)`,
	`CREATE TABLE IF NOT EXISTS dishes (
		id          TEXT PRIMARY KEY,
		submenu_id  TEXT NOT NULL REFERENCES submenus (id) ON DELETE CASCADE,
		title       TEXT NOT NULL,
		description TEXT NOT NULL,
		price       TEXT NOT NULL,
		created_ts  BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dishes_submenu_id ON dishes (submenu_id)`,
}

// DB is a store.Driver backed by a *sql.DB.
type DB struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps db. The caller keeps configuring the pool; Close closes db.
func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{db: db, dialect: dialect}
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// Migrate creates the schema. It is safe to run more than once.
func (d *DB) Migrate(ctx context.Context) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to apply %s schema", d.dialect.Name)
		}
	}
	return errors.Wrap(tx.Commit(), "failed to commit migration")
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var exists bool
	if err := d.db.QueryRowContext(ctx, d.dialect.InitializedQuery).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check if database is initialized")
	}
	return exists, nil
}

func (d *DB) ph(n int) string {
	return d.dialect.Placeholder(n)
}

func (d *DB) placeholders(n int) string {
	list := make([]string, n)
	for i := range list {
		list[i] = d.ph(i + 1)
	}
	return strings.Join(list, ", ")
}

var lastTs atomic.Int64

// now returns a strictly increasing timestamp so rows created back to back
// keep their creation order.
func now() int64 {
	for {
		last := lastTs.Load()
		ts := max(time.Now().UnixNano(), last+1)
		if lastTs.CompareAndSwap(last, ts) {
			return ts
		}
	}
}

func (d *DB) insert(ctx context.Context, table string, fields []string, args []any) error {
	stmt := `INSERT INTO ` + table + ` (` + strings.Join(fields, ", ") + `) VALUES (` + d.placeholders(len(args)) + `)`
	_, err := d.db.ExecContext(ctx, stmt, args...)
	return err
}

// update applies the non-nil columns. It is a no-op when none is set.
func (d *DB) update(ctx context.Context, table, id string, cols []string, vals []*string) error {
	set, args := []string{}, []any{}
	for i, v := range vals {
		if v == nil {
			continue
		}
		set, args = append(set, cols[i]+" = "+d.ph(len(args)+1)), append(args, *v)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	stmt := `UPDATE ` + table + ` SET ` + strings.Join(set, ", ") + ` WHERE id = ` + d.ph(len(args))
	_, err := d.db.ExecContext(ctx, stmt, args...)
	return err
}

func (d *DB) delete(ctx context.Context, table, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = `+d.ph(1), id)
	return err
}

func (d *DB) CreateMenu(ctx context.Context, create *store.Menu) (*store.Menu, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"id", "title", "description", "created_ts"}
	args := []any{create.ID, create.Title, create.Description, create.CreatedTs}
	if err := d.insert(ctx, "menus", fields, args); err != nil {
		return nil, errors.Wrap(err, "failed to create menu")
	}
	return create, nil
}

func (d *DB) ListMenus(ctx context.Context, find *store.FindMenu) ([]*store.Menu, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "m.id = "+d.ph(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			m.id, m.title, m.description, m.created_ts,
			COUNT(DISTINCT s.id), COUNT(DISTINCT dh.id)
		FROM menus m
		LEFT JOIN submenus s ON s.menu_id = m.id
		LEFT JOIN dishes dh ON dh.submenu_id = s.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY m.id, m.title, m.description, m.created_ts
		ORDER BY m.created_ts ASC, m.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query menus")
	}
	defer rows.Close()

	list := make([]*store.Menu, 0)
	for rows.Next() {
		var m store.Menu
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.CreatedTs, &m.SubmenusCount, &m.DishesCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan menu")
		}
		list = append(list, &m)
	}
	return list, errors.Wrap(rows.Err(), "failed to iterate menus")
}

func (d *DB) UpdateMenu(ctx context.Context, update *store.UpdateMenu) error {
	err := d.update(ctx, "menus", update.ID, []string{"title", "description"}, []*string{update.Title, update.Description})
	return errors.Wrapf(err, "failed to update menu %s", update.ID)
}

func (d *DB) DeleteMenu(ctx context.Context, delete *store.DeleteMenu) error {
	return errors.Wrapf(d.delete(ctx, "menus", delete.ID), "failed to delete menu %s", delete.ID)
}

func (d *DB) CreateSubmenu(ctx context.Context, create *store.Submenu) (*store.Submenu, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"id", "menu_id", "title", "description", "created_ts"}
	args := []any{create.ID, create.MenuID, create.Title, create.Description, create.CreatedTs}
	if err := d.insert(ctx, "submenus", fields, args); err != nil {
		return nil, errors.Wrap(err, "failed to create submenu")
	}
	return create, nil
}

func (d *DB) ListSubmenus(ctx context.Context, find *store.FindSubmenu) ([]*store.Submenu, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "s.id = "+d.ph(len(args)+1)), append(args, *v)
	}
	if v := find.MenuID; v != nil {
		where, args = append(where, "s.menu_id = "+d.ph(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			s.id, s.menu_id, s.title, s.description, s.created_ts,
			COUNT(DISTINCT dh.id)
		FROM submenus s
		LEFT JOIN dishes dh ON dh.submenu_id = s.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY s.id, s.menu_id, s.title, s.description, s.created_ts
		ORDER BY s.created_ts ASC, s.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query submenus")
	}
	defer rows.Close()

	list := make([]*store.Submenu, 0)
	for rows.Next() {
		var s store.Submenu
		if err := rows.Scan(&s.ID, &s.MenuID, &s.Title, &s.Description, &s.CreatedTs, &s.DishesCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan submenu")
		}
		list = append(list, &s)
	}
	return list, errors.Wrap(rows.Err(), "failed to iterate submenus")
}

func (d *DB) UpdateSubmenu(ctx context.Context, update *store.UpdateSubmenu) error {
	err := d.update(ctx, "submenus", update.ID, []string{"title", "description"}, []*string{update.Title, update.Description})
	return errors.Wrapf(err, "failed to update submenu %s", update.ID)
}

func (d *DB) DeleteSubmenu(ctx context.Context, delete *store.DeleteSubmenu) error {
	return errors.Wrapf(d.delete(ctx, "submenus", delete.ID), "failed to delete submenu %s", delete.ID)
}

func (d *DB) CreateDish(ctx context.Context, create *store.Dish) (*store.Dish, error) {
	if create.CreatedTs == 0 {
		create.CreatedTs = now()
	}
	fields := []string{"id", "submenu_id", "title", "description", "price", "created_ts"}
	args := []any{create.ID, create.SubmenuID, create.Title, create.Description, create.Price, create.CreatedTs}
	if err := d.insert(ctx, "dishes", fields, args); err != nil {
		return nil, errors.Wrap(err, "failed to create dish")
	}
	return create, nil
}

func (d *DB) ListDishes(ctx context.Context, find *store.FindDish) ([]*store.Dish, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ID; v != nil {
		where, args = append(where, "dh.id = "+d.ph(len(args)+1)), append(args, *v)
	}
	if v := find.SubmenuID; v != nil {
		where, args = append(where, "dh.submenu_id = "+d.ph(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			dh.id, dh.submenu_id, s.menu_id, dh.title, dh.description, dh.price, dh.created_ts
		FROM dishes dh
		JOIN submenus s ON s.id = dh.submenu_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY dh.created_ts ASC, dh.id ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query dishes")
	}
	defer rows.Close()

	list := make([]*store.Dish, 0)
	for rows.Next() {
		var dish store.Dish
		if err := rows.Scan(&dish.ID, &dish.SubmenuID, &dish.MenuID, &dish.Title, &dish.Description, &dish.Price, &dish.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan dish")
		}
		list = append(list, &dish)
	}
	return list, errors.Wrap(rows.Err(), "failed to iterate dishes")
}

func (d *DB) UpdateDish(ctx context.Context, update *store.UpdateDish) error {
	err := d.update(ctx, "dishes", update.ID,
		[]string{"title", "description", "price"},
		[]*string{update.Title, update.Description, update.Price})
	return errors.Wrapf(err, "failed to update dish %s", update.ID)
}

func (d *DB) DeleteDish(ctx context.Context, delete *store.DeleteDish) error {
	return errors.Wrapf(d.delete(ctx, "dishes", delete.ID), "failed to delete dish %s", delete.ID)
}
