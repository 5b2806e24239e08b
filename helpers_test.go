package rawrmenu

import (
	"context"
	"net"
	"sync"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/internal/profile"
	"github.com/Keksclan/rawrmenu/menu"
	"github.com/Keksclan/rawrmenu/store"
	"github.com/Keksclan/rawrmenu/store/db"
)

const bufSize = 1024 * 1024

// countingServer counts how often each read reaches the service.
type countingServer struct {
	menu.Server

	mu    sync.Mutex
	calls map[string]int
}

func (c *countingServer) hit(op string) {
	c.mu.Lock()
	c.calls[op]++
	c.mu.Unlock()
}

func (c *countingServer) n(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

func (c *countingServer) GetMenus(ctx context.Context, req *menu.GetMenusRequest) (menu.Menus, error) {
	c.hit(menu.OpGetMenus)
	return c.Server.GetMenus(ctx, req)
}

func (c *countingServer) GetMenu(ctx context.Context, req *menu.GetMenuRequest) (*menu.Menu, error) {
	c.hit(menu.OpGetMenu)
	return c.Server.GetMenu(ctx, req)
}

func (c *countingServer) GetSubmenu(ctx context.Context, req *menu.GetSubmenuRequest) (*menu.Submenu, error) {
	c.hit(menu.OpGetSubmenu)
	return c.Server.GetSubmenu(ctx, req)
}

func (c *countingServer) GetDishes(ctx context.Context, req *menu.GetDishesRequest) (menu.Dishes, error) {
	c.hit(menu.OpGetDishes)
	return c.Server.GetDishes(ctx, req)
}

func (c *countingServer) GetDish(ctx context.Context, req *menu.GetDishRequest) (*menu.Dish, error) {
	c.hit(menu.OpGetDish)
	return c.Server.GetDish(ctx, req)
}

// spyStore counts every cache store call.
type spyStore struct {
	cache.Store

	mu    sync.Mutex
	calls int
}

func (s *spyStore) count() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *spyStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *spyStore) Get(ctx context.Context, resource string, key cache.Key) (cache.Entry, bool, error) {
	s.count()
	return s.Store.Get(ctx, resource, key)
}

func (s *spyStore) Set(ctx context.Context, resource string, key cache.Key, e cache.Entry) error {
	s.count()
	return s.Store.Set(ctx, resource, key, e)
}

func (s *spyStore) Exists(ctx context.Context, resource string, key cache.Key) (bool, error) {
	s.count()
	return s.Store.Exists(ctx, resource, key)
}

func (s *spyStore) DeleteOne(ctx context.Context, resource string, key cache.Key) error {
	s.count()
	return s.Store.DeleteOne(ctx, resource, key)
}

func (s *spyStore) DeleteAll(ctx context.Context, resource string) error {
	s.count()
	return s.Store.DeleteAll(ctx, resource)
}

func (s *spyStore) DeleteByPrefix(ctx context.Context, resource string, prefix cache.Key) (int, error) {
	s.count()
	return s.Store.DeleteByPrefix(ctx, resource, prefix)
}

type harness struct {
	srv    *Server
	svc    *countingServer
	client *menu.Client
	conn   *grpc.ClientConn
}

func newMenuStore(t *testing.T) *store.Store {
	t.Helper()
	driver, err := db.NewDBDriver(&profile.Profile{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("NewDBDriver: %v", err)
	}
	st := store.New(driver)
	t.Cleanup(func() { _ = st.Close() })
	if err := st.Migrate(t.Context()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return st
}

// start serves a counted menu service behind a server built from opts.
func start(t *testing.T, opts ...Option) *harness {
	t.Helper()
	srv, err := NewServer(opts...)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	svc := &countingServer{Server: menu.NewService(newMenuStore(t)), calls: make(map[string]int)}
	srv.RegisterMenu(svc)
	return serve(t, srv, svc)
}

func serve(t *testing.T, srv *Server, svc *countingServer) *harness {
	t.Helper()
	lis := bufconn.Listen(bufSize)
	t.Cleanup(srv.Stop)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &harness{srv: srv, svc: svc, client: menu.NewClient(conn), conn: conn}
}

// tree creates a menu with one submenu holding the given dishes.
func (h *harness) tree(t *testing.T, dishes ...string) (*menu.Menu, *menu.Submenu, []*menu.Dish) {
	t.Helper()
	ctx := t.Context()
	m, err := h.client.CreateMenu(ctx, &menu.CreateMenuRequest{Title: "Menu", Description: "Menu"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	sm, err := h.client.CreateSubmenu(ctx, &menu.CreateSubmenuRequest{MenuID: m.ID, Title: "Sub", Description: "Sub"})
	if err != nil {
		t.Fatalf("CreateSubmenu: %v", err)
	}
	var out []*menu.Dish
	for _, title := range dishes {
		d, err := h.client.CreateDish(ctx, &menu.CreateDishRequest{MenuID: m.ID, SubmenuID: sm.ID, Title: title, Description: title, Price: "1.00"})
		if err != nil {
			t.Fatalf("CreateDish: %v", err)
		}
		out = append(out, d)
	}
	return m, sm, out
}
