package menu

import "github.com/Keksclan/rawrmenu/cache"

// Operation names. Read operations double as cache resources.
const (
	OpGetMenus   = "GetMenus"
	OpGetMenu    = "GetMenu"
	OpCreateMenu = "CreateMenu"
	OpUpdateMenu = "UpdateMenu"
	OpDeleteMenu = "DeleteMenu"

	OpGetSubmenus   = "GetSubmenus"
	OpGetSubmenu    = "GetSubmenu"
	OpCreateSubmenu = "CreateSubmenu"
	OpUpdateSubmenu = "UpdateSubmenu"
	OpDeleteSubmenu = "DeleteSubmenu"

	OpGetDishes  = "GetDishes"
	OpGetDish    = "GetDish"
	OpCreateDish = "CreateDish"
	OpUpdateDish = "UpdateDish"
	OpDeleteDish = "DeleteDish"
)

// ReadOps are served through the read-through guard.
var ReadOps = []string{OpGetMenus, OpGetMenu, OpGetSubmenus, OpGetSubmenu, OpGetDishes, OpGetDish}

// WriteOps evict before they run.
var WriteOps = []string{
	OpCreateMenu, OpUpdateMenu, OpDeleteMenu,
	OpCreateSubmenu, OpUpdateSubmenu, OpDeleteSubmenu,
	OpCreateDish, OpUpdateDish, OpDeleteDish,
}

var (
	menuFields    = []string{FieldMenuID}
	submenuFields = []string{FieldMenuID, FieldSubmenuID}
	dishFields    = []string{FieldMenuID, FieldSubmenuID, FieldDishID}
)

// Declared lists the identifiers each operation's request carries, in key
// order.
var Declared = map[string][]string{
	OpGetMenus:   nil,
	OpGetMenu:    menuFields,
	OpCreateMenu: nil,
	OpUpdateMenu: menuFields,
	OpDeleteMenu: menuFields,

	OpGetSubmenus:   menuFields,
	OpGetSubmenu:    submenuFields,
	OpCreateSubmenu: menuFields,
	OpUpdateSubmenu: submenuFields,
	OpDeleteSubmenu: submenuFields,

	OpGetDishes:  submenuFields,
	OpGetDish:    dishFields,
	OpCreateDish: submenuFields,
	OpUpdateDish: dishFields,
	OpDeleteDish: dishFields,
}

// Counts shown on a menu and a submenu change whenever a child is created
// or deleted, so those writes reach up the whole tree.
var (
	submenuCreated = []cache.Rule{
		cache.All(OpGetMenus),
		cache.ExactOn(OpGetMenu, FieldMenuID),
		cache.ExactOn(OpGetSubmenus, FieldMenuID),
	}
	submenuChanged = append(clone(submenuCreated),
		cache.ExactOn(OpGetSubmenu, FieldMenuID, FieldSubmenuID),
	)
	dishCreated = append(clone(submenuChanged),
		cache.ExactOn(OpGetDishes, FieldMenuID, FieldSubmenuID),
	)
)

// InvalidationTable maps every write to the cached reads it makes stale.
var InvalidationTable = cache.Table{
	OpCreateMenu: {
		cache.All(OpGetMenus),
	},
	OpUpdateMenu: {
		cache.All(OpGetMenus),
		cache.ExactOn(OpGetMenu, FieldMenuID),
	},
	OpDeleteMenu: {
		cache.All(OpGetMenus),
		cache.ExactOn(OpGetMenu, FieldMenuID),
		cache.ExactOn(OpGetSubmenus, FieldMenuID),
		cache.PrefixOn(OpGetSubmenu, FieldMenuID),
		cache.PrefixOn(OpGetDishes, FieldMenuID),
		cache.PrefixOn(OpGetDish, FieldMenuID),
	},

	OpCreateSubmenu: submenuCreated,
	OpUpdateSubmenu: submenuChanged,
	OpDeleteSubmenu: append(clone(submenuChanged),
		cache.PrefixOn(OpGetDishes, FieldMenuID, FieldSubmenuID),
		cache.PrefixOn(OpGetDish, FieldMenuID, FieldSubmenuID),
	),

	OpCreateDish: dishCreated,
	OpUpdateDish: {
		cache.ExactOn(OpGetSubmenus, FieldMenuID),
		cache.ExactOn(OpGetSubmenu, FieldMenuID, FieldSubmenuID),
		cache.ExactOn(OpGetDishes, FieldMenuID, FieldSubmenuID),
		cache.ExactOn(OpGetDish, FieldMenuID, FieldSubmenuID, FieldDishID),
	},
	OpDeleteDish: append(clone(dishCreated),
		cache.ExactOn(OpGetDish, FieldMenuID, FieldSubmenuID, FieldDishID),
	),
}

func clone(rules []cache.Rule) []cache.Rule {
	return append([]cache.Rule(nil), rules...)
}
