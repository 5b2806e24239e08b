package menu

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "menu.v1.MenuService"

// FullMethod returns the gRPC method path of op, e.g.
// /menu.v1.MenuService/GetMenus.
func FullMethod(op string) string {
	return "/" + ServiceName + "/" + op
}

// ServiceDesc is the grpc.ServiceDesc for menu.v1.MenuService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		unary(OpGetMenus, Server.GetMenus),
		unary(OpGetMenu, Server.GetMenu),
		unary(OpCreateMenu, Server.CreateMenu),
		unary(OpUpdateMenu, Server.UpdateMenu),
		unary(OpDeleteMenu, Server.DeleteMenu),

		unary(OpGetSubmenus, Server.GetSubmenus),
		unary(OpGetSubmenu, Server.GetSubmenu),
		unary(OpCreateSubmenu, Server.CreateSubmenu),
		unary(OpUpdateSubmenu, Server.UpdateSubmenu),
		unary(OpDeleteSubmenu, Server.DeleteSubmenu),

		unary(OpGetDishes, Server.GetDishes),
		unary(OpGetDish, Server.GetDish),
		unary(OpCreateDish, Server.CreateDish),
		unary(OpUpdateDish, Server.UpdateDish),
		unary(OpDeleteDish, Server.DeleteDish),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "menu/v1/menu.proto",
}

// Register registers a MenuService implementation on s.
func Register(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](op string, call func(Server, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: op,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, r any) (any, error) {
				resp, err := call(srv.(Server), ctx, r.(*Req))
				if err != nil {
					return nil, toStatus(err)
				}
				return resp, nil
			}
			if interceptor == nil {
				return handler(ctx, req)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(op),
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// toStatus leaves errors that already carry a gRPC status alone, including
// the cacheable error payloads, and turns everything else into Internal.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
