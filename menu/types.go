// Package menu is the restaurant menu service: menus hold submenus and
// submenus hold dishes. Every read is served through the response cache and
// every write evicts the reads it makes stale before it runs.
//
// The service is exposed over gRPC with [ServiceDesc]. Messages are plain
// Go structs carried by a JSON codec, so no protobuf code generation is
// involved.
package menu

import (
	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/store"
)

// Item kinds known to the response cache.
const (
	KindMenu    cache.Kind = "menu"
	KindSubmenu cache.Kind = "submenu"
	KindDish    cache.Kind = "dish"
)

// Menu is the public view of a menu.
type Menu struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	SubmenusCount int    `json:"submenus_count"`
	DishesCount   int    `json:"dishes_count"`
}

func (*Menu) ItemKind() cache.Kind { return KindMenu }

type Submenu struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DishesCount int    `json:"dishes_count"`
}

func (*Submenu) ItemKind() cache.Kind { return KindSubmenu }

// Dish prices are decimal strings with two fraction digits.
type Dish struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (*Dish) ItemKind() cache.Kind { return KindDish }

type Menus []*Menu

func (Menus) ItemKind() cache.Kind { return KindMenu }

func (l Menus) Items() []cache.Item {
	items := make([]cache.Item, len(l))
	for i, m := range l {
		items[i] = m
	}
	return items
}

type Submenus []*Submenu

func (Submenus) ItemKind() cache.Kind { return KindSubmenu }

func (l Submenus) Items() []cache.Item {
	items := make([]cache.Item, len(l))
	for i, s := range l {
		items[i] = s
	}
	return items
}

type Dishes []*Dish

func (Dishes) ItemKind() cache.Kind { return KindDish }

func (l Dishes) Items() []cache.Item {
	items := make([]cache.Item, len(l))
	for i, d := range l {
		items[i] = d
	}
	return items
}

// Status is the body of a successful delete.
type Status struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

func deleted(what string) *Status {
	return &Status{Status: true, Message: "The " + what + " has been deleted"}
}

// Kinds is the closed table the response envelope resolves cached items
// through.
var Kinds = cache.Kinds{
	KindMenu: {
		New: func() cache.Item { return new(Menu) },
		List: func(items []cache.Item) cache.List {
			l := make(Menus, len(items))
			for i, it := range items {
				l[i] = it.(*Menu)
			}
			return l
		},
	},
	KindSubmenu: {
		New: func() cache.Item { return new(Submenu) },
		List: func(items []cache.Item) cache.List {
			l := make(Submenus, len(items))
			for i, it := range items {
				l[i] = it.(*Submenu)
			}
			return l
		},
	},
	KindDish: {
		New: func() cache.Item { return new(Dish) },
		List: func(items []cache.Item) cache.List {
			l := make(Dishes, len(items))
			for i, it := range items {
				l[i] = it.(*Dish)
			}
			return l
		},
	},
}

// NewEnvelope returns an envelope that accepts the menu kinds.
func NewEnvelope() *cache.Envelope {
	return cache.NewEnvelope(Kinds)
}

func menuView(m *store.Menu) *Menu {
	return &Menu{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		SubmenusCount: m.SubmenusCount,
		DishesCount:   m.DishesCount,
	}
}

func submenuView(s *store.Submenu) *Submenu {
	return &Submenu{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		DishesCount: s.DishesCount,
	}
}

func dishView(d *store.Dish) *Dish {
	return &Dish{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
	}
}
