package menu

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/store"
)

// Not found and ownership failures. They are cached like successful reads.
var (
	errMenuNotFound    = cache.NewErrorPayload(http.StatusNotFound, "menu not found")
	errSubmenuNotFound = cache.NewErrorPayload(http.StatusNotFound, "submenu not found")
	errDishNotFound    = cache.NewErrorPayload(http.StatusNotFound, "dish not found")
	errMenuMismatch    = cache.NewErrorPayload(http.StatusBadRequest, "menu id incorrect")
	errParentMismatch  = cache.NewErrorPayload(http.StatusBadRequest, "menu or submenu id incorrect")
)

// Server is the interface a MenuService implementation satisfies.
type Server interface {
	GetMenus(ctx context.Context, req *GetMenusRequest) (Menus, error)
	GetMenu(ctx context.Context, req *GetMenuRequest) (*Menu, error)
	CreateMenu(ctx context.Context, req *CreateMenuRequest) (*Menu, error)
	UpdateMenu(ctx context.Context, req *UpdateMenuRequest) (*Menu, error)
	DeleteMenu(ctx context.Context, req *DeleteMenuRequest) (*Status, error)

	GetSubmenus(ctx context.Context, req *GetSubmenusRequest) (Submenus, error)
	GetSubmenu(ctx context.Context, req *GetSubmenuRequest) (*Submenu, error)
	CreateSubmenu(ctx context.Context, req *CreateSubmenuRequest) (*Submenu, error)
	UpdateSubmenu(ctx context.Context, req *UpdateSubmenuRequest) (*Submenu, error)
	DeleteSubmenu(ctx context.Context, req *DeleteSubmenuRequest) (*Status, error)

	GetDishes(ctx context.Context, req *GetDishesRequest) (Dishes, error)
	GetDish(ctx context.Context, req *GetDishRequest) (*Dish, error)
	CreateDish(ctx context.Context, req *CreateDishRequest) (*Dish, error)
	UpdateDish(ctx context.Context, req *UpdateDishRequest) (*Dish, error)
	DeleteDish(ctx context.Context, req *DeleteDishRequest) (*Status, error)
}

// Service implements Server over the relational store. It knows nothing
// about caching; the cache wraps it from the outside.
type Service struct {
	store *store.Store
	newID func() string
}

var _ Server = (*Service)(nil)

// NewService returns a Service backed by s.
func NewService(s *store.Store) *Service {
	return &Service{store: s, newID: uuid.NewString}
}

func (s *Service) GetMenus(ctx context.Context, _ *GetMenusRequest) (Menus, error) {
	list, err := s.store.ListMenus(ctx, &store.FindMenu{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list menus")
	}
	out := make(Menus, 0, len(list))
	for _, m := range list {
		out = append(out, menuView(m))
	}
	return out, nil
}

func (s *Service) GetMenu(ctx context.Context, req *GetMenuRequest) (*Menu, error) {
	m, err := s.menu(ctx, req.MenuID)
	if err != nil {
		return nil, err
	}
	return menuView(m), nil
}

func (s *Service) CreateMenu(ctx context.Context, req *CreateMenuRequest) (*Menu, error) {
	m, err := s.store.CreateMenu(ctx, &store.Menu{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create menu")
	}
	return menuView(m), nil
}

func (s *Service) UpdateMenu(ctx context.Context, req *UpdateMenuRequest) (*Menu, error) {
	if _, err := s.menu(ctx, req.MenuID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMenu(ctx, &store.UpdateMenu{
		ID:          req.MenuID,
		Title:       &req.Title,
		Description: &req.Description,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to update menu")
	}
	return s.GetMenu(ctx, &GetMenuRequest{MenuID: req.MenuID})
}

func (s *Service) DeleteMenu(ctx context.Context, req *DeleteMenuRequest) (*Status, error) {
	if _, err := s.menu(ctx, req.MenuID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteMenu(ctx, &store.DeleteMenu{ID: req.MenuID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete menu")
	}
	return deleted("menu"), nil
}

func (s *Service) GetSubmenus(ctx context.Context, req *GetSubmenusRequest) (Submenus, error) {
	if _, err := s.menu(ctx, req.MenuID); err != nil {
		return nil, err
	}
	list, err := s.store.ListSubmenus(ctx, &store.FindSubmenu{MenuID: &req.MenuID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list submenus")
	}
	out := make(Submenus, 0, len(list))
	for _, sm := range list {
		out = append(out, submenuView(sm))
	}
	return out, nil
}

func (s *Service) GetSubmenu(ctx context.Context, req *GetSubmenuRequest) (*Submenu, error) {
	sm, err := s.submenu(ctx, req.MenuID, req.SubmenuID)
	if err != nil {
		return nil, err
	}
	return submenuView(sm), nil
}

func (s *Service) CreateSubmenu(ctx context.Context, req *CreateSubmenuRequest) (*Submenu, error) {
	if _, err := s.menu(ctx, req.MenuID); err != nil {
		return nil, err
	}
	sm, err := s.store.CreateSubmenu(ctx, &store.Submenu{
		ID:          s.newID(),
		MenuID:      req.MenuID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create submenu")
	}
	return submenuView(sm), nil
}

func (s *Service) UpdateSubmenu(ctx context.Context, req *UpdateSubmenuRequest) (*Submenu, error) {
	if _, err := s.submenu(ctx, req.MenuID, req.SubmenuID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSubmenu(ctx, &store.UpdateSubmenu{
		ID:          req.SubmenuID,
		Title:       &req.Title,
		Description: &req.Description,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to update submenu")
	}
	return s.GetSubmenu(ctx, &GetSubmenuRequest{MenuID: req.MenuID, SubmenuID: req.SubmenuID})
}

func (s *Service) DeleteSubmenu(ctx context.Context, req *DeleteSubmenuRequest) (*Status, error) {
	if _, err := s.submenu(ctx, req.MenuID, req.SubmenuID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteSubmenu(ctx, &store.DeleteSubmenu{ID: req.SubmenuID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete submenu")
	}
	return deleted("submenu"), nil
}

// GetDishes answers an empty list for a submenu that does not exist.
func (s *Service) GetDishes(ctx context.Context, req *GetDishesRequest) (Dishes, error) {
	sm, err := s.store.GetSubmenu(ctx, req.SubmenuID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get submenu")
	}
	if sm == nil {
		return Dishes{}, nil
	}
	if sm.MenuID != req.MenuID {
		return nil, errMenuMismatch
	}
	list, err := s.store.ListDishes(ctx, &store.FindDish{SubmenuID: &req.SubmenuID})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list dishes")
	}
	out := make(Dishes, 0, len(list))
	for _, d := range list {
		out = append(out, dishView(d))
	}
	return out, nil
}

func (s *Service) GetDish(ctx context.Context, req *GetDishRequest) (*Dish, error) {
	d, err := s.dish(ctx, req.MenuID, req.SubmenuID, req.DishID)
	if err != nil {
		return nil, err
	}
	return dishView(d), nil
}

func (s *Service) CreateDish(ctx context.Context, req *CreateDishRequest) (*Dish, error) {
	if _, err := s.submenu(ctx, req.MenuID, req.SubmenuID); err != nil {
		return nil, err
	}
	d, err := s.store.CreateDish(ctx, &store.Dish{
		ID:          s.newID(),
		SubmenuID:   req.SubmenuID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dish")
	}
	return dishView(d), nil
}

func (s *Service) UpdateDish(ctx context.Context, req *UpdateDishRequest) (*Dish, error) {
	if _, err := s.dish(ctx, req.MenuID, req.SubmenuID, req.DishID); err != nil {
		return nil, err
	}
	if err := s.store.UpdateDish(ctx, &store.UpdateDish{
		ID:          req.DishID,
		Title:       &req.Title,
		Description: &req.Description,
		Price:       &req.Price,
	}); err != nil {
		return nil, errors.Wrap(err, "failed to update dish")
	}
	return s.GetDish(ctx, &GetDishRequest{MenuID: req.MenuID, SubmenuID: req.SubmenuID, DishID: req.DishID})
}

func (s *Service) DeleteDish(ctx context.Context, req *DeleteDishRequest) (*Status, error) {
	if _, err := s.dish(ctx, req.MenuID, req.SubmenuID, req.DishID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteDish(ctx, &store.DeleteDish{ID: req.DishID}); err != nil {
		return nil, errors.Wrap(err, "failed to delete dish")
	}
	return deleted("dish"), nil
}

func (s *Service) menu(ctx context.Context, id string) (*store.Menu, error) {
	m, err := s.store.GetMenu(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get menu")
	}
	if m == nil {
		return nil, errMenuNotFound
	}
	return m, nil
}

// submenu loads a submenu and checks that it belongs to menuID.
func (s *Service) submenu(ctx context.Context, menuID, id string) (*store.Submenu, error) {
	sm, err := s.store.GetSubmenu(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get submenu")
	}
	if sm == nil {
		return nil, errSubmenuNotFound
	}
	if sm.MenuID != menuID {
		return nil, errMenuMismatch
	}
	return sm, nil
}

// dish loads a dish and checks both of its parents.
func (s *Service) dish(ctx context.Context, menuID, submenuID, id string) (*store.Dish, error) {
	d, err := s.store.GetDish(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get dish")
	}
	if d == nil {
		return nil, errDishNotFound
	}
	if d.MenuID != menuID || d.SubmenuID != submenuID {
		return nil, errParentMismatch
	}
	return d, nil
}
