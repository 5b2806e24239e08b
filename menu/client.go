package menu

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Client is a typed MenuService client.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient returns a Client that calls through cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, op string, req any, opts []grpc.CallOption) (Resp, error) {
	var resp Resp
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(op), req, &resp, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return resp, nil
}

func (c *Client) GetMenus(ctx context.Context, opts ...grpc.CallOption) (Menus, error) {
	return invoke[Menus](ctx, c.cc, OpGetMenus, &GetMenusRequest{}, opts)
}

func (c *Client) GetMenu(ctx context.Context, req *GetMenuRequest, opts ...grpc.CallOption) (*Menu, error) {
	return invoke[*Menu](ctx, c.cc, OpGetMenu, req, opts)
}

func (c *Client) CreateMenu(ctx context.Context, req *CreateMenuRequest, opts ...grpc.CallOption) (*Menu, error) {
	return invoke[*Menu](ctx, c.cc, OpCreateMenu, req, opts)
}

func (c *Client) UpdateMenu(ctx context.Context, req *UpdateMenuRequest, opts ...grpc.CallOption) (*Menu, error) {
	return invoke[*Menu](ctx, c.cc, OpUpdateMenu, req, opts)
}

func (c *Client) DeleteMenu(ctx context.Context, req *DeleteMenuRequest, opts ...grpc.CallOption) (*Status, error) {
	return invoke[*Status](ctx, c.cc, OpDeleteMenu, req, opts)
}

func (c *Client) GetSubmenus(ctx context.Context, req *GetSubmenusRequest, opts ...grpc.CallOption) (Submenus, error) {
	return invoke[Submenus](ctx, c.cc, OpGetSubmenus, req, opts)
}

func (c *Client) GetSubmenu(ctx context.Context, req *GetSubmenuRequest, opts ...grpc.CallOption) (*Submenu, error) {
	return invoke[*Submenu](ctx, c.cc, OpGetSubmenu, req, opts)
}

func (c *Client) CreateSubmenu(ctx context.Context, req *CreateSubmenuRequest, opts ...grpc.CallOption) (*Submenu, error) {
	return invoke[*Submenu](ctx, c.cc, OpCreateSubmenu, req, opts)
}

func (c *Client) UpdateSubmenu(ctx context.Context, req *UpdateSubmenuRequest, opts ...grpc.CallOption) (*Submenu, error) {
	return invoke[*Submenu](ctx, c.cc, OpUpdateSubmenu, req, opts)
}

func (c *Client) DeleteSubmenu(ctx context.Context, req *DeleteSubmenuRequest, opts ...grpc.CallOption) (*Status, error) {
	return invoke[*Status](ctx, c.cc, OpDeleteSubmenu, req, opts)
}

func (c *Client) GetDishes(ctx context.Context, req *GetDishesRequest, opts ...grpc.CallOption) (Dishes, error) {
	return invoke[Dishes](ctx, c.cc, OpGetDishes, req, opts)
}

func (c *Client) GetDish(ctx context.Context, req *GetDishRequest, opts ...grpc.CallOption) (*Dish, error) {
	return invoke[*Dish](ctx, c.cc, OpGetDish, req, opts)
}

func (c *Client) CreateDish(ctx context.Context, req *CreateDishRequest, opts ...grpc.CallOption) (*Dish, error) {
	return invoke[*Dish](ctx, c.cc, OpCreateDish, req, opts)
}

func (c *Client) UpdateDish(ctx context.Context, req *UpdateDishRequest, opts ...grpc.CallOption) (*Dish, error) {
	return invoke[*Dish](ctx, c.cc, OpUpdateDish, req, opts)
}

func (c *Client) DeleteDish(ctx context.Context, req *DeleteDishRequest, opts ...grpc.CallOption) (*Status, error) {
	return invoke[*Status](ctx, c.cc, OpDeleteDish, req, opts)
}

// Detail extracts the "detail" string of an error payload returned by the
// server. It is empty for other errors and for validation failures, whose
// detail is a list.
func Detail(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	var c struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal([]byte(st.Message()), &c) != nil {
		return ""
	}
	return c.Detail
}
