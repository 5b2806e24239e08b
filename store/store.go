// Package store is the relational model of the menu tree and the driver
// contract the database backends implement.
package store

import (
	"context"
)

// Menu is a top-level collection. SubmenusCount and DishesCount are
// computed on read.
type Menu struct {
	ID          string
	Title       string
	Description string
	CreatedTs   int64

	SubmenusCount int
	DishesCount   int
}

// Submenu belongs to exactly one menu.
type Submenu struct {
	ID          string
	MenuID      string
	Title       string
	Description string
	CreatedTs   int64

	DishesCount int
}

// Dish belongs to exactly one submenu. MenuID is filled on read from the
// owning submenu.
type Dish struct {
	ID          string
	SubmenuID   string
	MenuID      string
	Title       string
	Description string
	Price       string
	CreatedTs   int64
}

type FindMenu struct {
	ID *string
}

type FindSubmenu struct {
	ID     *string
	MenuID *string
}

type FindDish struct {
	ID        *string
	SubmenuID *string
}

type UpdateMenu struct {
	ID          string
	Title       *string
	Description *string
}

type UpdateSubmenu struct {
	ID          string
	Title       *string
	Description *string
}

type UpdateDish struct {
	ID          string
	Title       *string
	Description *string
	Price       *string
}

type DeleteMenu struct{ ID string }

type DeleteSubmenu struct{ ID string }

type DeleteDish struct{ ID string }

// Driver is implemented by every database backend. Deleting a parent
// removes its children.
type Driver interface {
	Close() error

	Migrate(ctx context.Context) error
	IsInitialized(ctx context.Context) (bool, error)

	CreateMenu(ctx context.Context, create *Menu) (*Menu, error)
	ListMenus(ctx context.Context, find *FindMenu) ([]*Menu, error)
	UpdateMenu(ctx context.Context, update *UpdateMenu) error
	DeleteMenu(ctx context.Context, delete *DeleteMenu) error

	CreateSubmenu(ctx context.Context, create *Submenu) (*Submenu, error)
	ListSubmenus(ctx context.Context, find *FindSubmenu) ([]*Submenu, error)
	UpdateSubmenu(ctx context.Context, update *UpdateSubmenu) error
	DeleteSubmenu(ctx context.Context, delete *DeleteSubmenu) error

	CreateDish(ctx context.Context, create *Dish) (*Dish, error)
	ListDishes(ctx context.Context, find *FindDish) ([]*Dish, error)
	UpdateDish(ctx context.Context, update *UpdateDish) error
	DeleteDish(ctx context.Context, delete *DeleteDish) error
}

// Store provides access to the menu tree through a Driver.
type Store struct {
	driver Driver
}

// New creates a Store over driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) CreateMenu(ctx context.Context, create *Menu) (*Menu, error) {
	return s.driver.CreateMenu(ctx, create)
}

func (s *Store) ListMenus(ctx context.Context, find *FindMenu) ([]*Menu, error) {
	return s.driver.ListMenus(ctx, find)
}

// GetMenu returns nil without an error when no menu matches.
func (s *Store) GetMenu(ctx context.Context, id string) (*Menu, error) {
	list, err := s.driver.ListMenus(ctx, &FindMenu{ID: &id})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *Store) UpdateMenu(ctx context.Context, update *UpdateMenu) error {
	return s.driver.UpdateMenu(ctx, update)
}

func (s *Store) DeleteMenu(ctx context.Context, delete *DeleteMenu) error {
	return s.driver.DeleteMenu(ctx, delete)
}

func (s *Store) CreateSubmenu(ctx context.Context, create *Submenu) (*Submenu, error) {
	return s.driver.CreateSubmenu(ctx, create)
}

func (s *Store) ListSubmenus(ctx context.Context, find *FindSubmenu) ([]*Submenu, error) {
	return s.driver.ListSubmenus(ctx, find)
}

// GetSubmenu returns nil without an error when no submenu matches.
func (s *Store) GetSubmenu(ctx context.Context, id string) (*Submenu, error) {
	list, err := s.driver.ListSubmenus(ctx, &FindSubmenu{ID: &id})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *Store) UpdateSubmenu(ctx context.Context, update *UpdateSubmenu) error {
	return s.driver.UpdateSubmenu(ctx, update)
}

func (s *Store) DeleteSubmenu(ctx context.Context, delete *DeleteSubmenu) error {
	return s.driver.DeleteSubmenu(ctx, delete)
}

func (s *Store) CreateDish(ctx context.Context, create *Dish) (*Dish, error) {
	return s.driver.CreateDish(ctx, create)
}

func (s *Store) ListDishes(ctx context.Context, find *FindDish) ([]*Dish, error) {
	return s.driver.ListDishes(ctx, find)
}

// GetDish returns nil without an error when no dish matches.
func (s *Store) GetDish(ctx context.Context, id string) (*Dish, error) {
	list, err := s.driver.ListDishes(ctx, &FindDish{ID: &id})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *Store) UpdateDish(ctx context.Context, update *UpdateDish) error {
	return s.driver.UpdateDish(ctx, update)
}

func (s *Store) DeleteDish(ctx context.Context, delete *DeleteDish) error {
	return s.driver.DeleteDish(ctx, delete)
}
