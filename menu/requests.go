package menu

import "github.com/Keksclan/rawrmenu/cache"

// Request messages. Those that address an entity report its identifiers,
// outermost first, through CacheKey.

type GetMenusRequest struct{}

type GetMenuRequest struct {
	MenuID string `json:"menu_id"`
}

type CreateMenuRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateMenuRequest struct {
	MenuID      string `json:"menu_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DeleteMenuRequest struct {
	MenuID string `json:"menu_id"`
}

type GetSubmenusRequest struct {
	MenuID string `json:"menu_id"`
}

type GetSubmenuRequest struct {
	MenuID    string `json:"menu_id"`
	SubmenuID string `json:"submenu_id"`
}

type CreateSubmenuRequest struct {
	MenuID      string `json:"menu_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateSubmenuRequest struct {
	MenuID      string `json:"menu_id"`
	SubmenuID   string `json:"submenu_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DeleteSubmenuRequest struct {
	MenuID    string `json:"menu_id"`
	SubmenuID string `json:"submenu_id"`
}

type GetDishesRequest struct {
	MenuID    string `json:"menu_id"`
	SubmenuID string `json:"submenu_id"`
}

type GetDishRequest struct {
	MenuID    string `json:"menu_id"`
	SubmenuID string `json:"submenu_id"`
	DishID    string `json:"dish_id"`
}

type CreateDishRequest struct {
	MenuID      string `json:"menu_id"`
	SubmenuID   string `json:"submenu_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type UpdateDishRequest struct {
	MenuID      string `json:"menu_id"`
	SubmenuID   string `json:"submenu_id"`
	DishID      string `json:"dish_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

type DeleteDishRequest struct {
	MenuID    string `json:"menu_id"`
	SubmenuID string `json:"submenu_id"`
	DishID    string `json:"dish_id"`
}

// Identifier field names, in the order keys carry them.
const (
	FieldMenuID    = "menu_id"
	FieldSubmenuID = "submenu_id"
	FieldDishID    = "dish_id"
)

func menuKey(menuID string) cache.Key {
	return cache.Key{{Name: FieldMenuID, Value: menuID}}
}

func submenuKey(menuID, submenuID string) cache.Key {
	return append(menuKey(menuID), cache.Field{Name: FieldSubmenuID, Value: submenuID})
}

func dishKey(menuID, submenuID, dishID string) cache.Key {
	return append(submenuKey(menuID, submenuID), cache.Field{Name: FieldDishID, Value: dishID})
}

func (*GetMenusRequest) CacheKey() cache.Key        { return nil }
func (r *GetMenuRequest) CacheKey() cache.Key       { return menuKey(r.MenuID) }
func (*CreateMenuRequest) CacheKey() cache.Key      { return nil }
func (r *UpdateMenuRequest) CacheKey() cache.Key    { return menuKey(r.MenuID) }
func (r *DeleteMenuRequest) CacheKey() cache.Key    { return menuKey(r.MenuID) }
func (r *GetSubmenusRequest) CacheKey() cache.Key   { return menuKey(r.MenuID) }
func (r *GetSubmenuRequest) CacheKey() cache.Key    { return submenuKey(r.MenuID, r.SubmenuID) }
func (r *CreateSubmenuRequest) CacheKey() cache.Key { return menuKey(r.MenuID) }
func (r *UpdateSubmenuRequest) CacheKey() cache.Key { return submenuKey(r.MenuID, r.SubmenuID) }
func (r *DeleteSubmenuRequest) CacheKey() cache.Key { return submenuKey(r.MenuID, r.SubmenuID) }
func (r *GetDishesRequest) CacheKey() cache.Key     { return submenuKey(r.MenuID, r.SubmenuID) }
func (r *GetDishRequest) CacheKey() cache.Key       { return dishKey(r.MenuID, r.SubmenuID, r.DishID) }
func (r *CreateDishRequest) CacheKey() cache.Key    { return submenuKey(r.MenuID, r.SubmenuID) }
func (r *UpdateDishRequest) CacheKey() cache.Key    { return dishKey(r.MenuID, r.SubmenuID, r.DishID) }
func (r *DeleteDishRequest) CacheKey() cache.Key    { return dishKey(r.MenuID, r.SubmenuID, r.DishID) }
