package rawrmenu

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/menu"
)

func TestNewServer(t *testing.T) {
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s.GRPC() == nil {
		t.Fatal("GRPC() returned nil")
	}
	if s.MetricsHandler() == nil {
		t.Fatal("MetricsHandler() returned nil")
	}
}

func TestNewServer_RejectsBadTable(t *testing.T) {
	bad := cache.Table{
		menu.OpCreateMenu: {cache.ExactOn(menu.OpGetMenu, menu.FieldDishID)},
	}
	_, err := NewServer(WithResponseCache(cache.Config{Store: cache.NewMemoryStore(), Table: bad}))
	if !errors.Is(err, cache.ErrUndeclaredField) {
		t.Fatalf("NewServer() err = %v, want ErrUndeclaredField", err)
	}
}

func TestServer_FlushWithoutCache(t *testing.T) {
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := s.Flush(t.Context()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestServer_Flush(t *testing.T) {
	mem := cache.NewMemoryStore()
	h := start(t, WithResponseCache(cache.Config{Store: mem}))
	if _, err := h.client.GetMenus(t.Context()); err != nil {
		t.Fatalf("GetMenus: %v", err)
	}
	if mem.Len(menu.OpGetMenus) != 1 {
		t.Fatalf("GetMenus entries = %d, want 1", mem.Len(menu.OpGetMenus))
	}
	if err := h.srv.Flush(t.Context()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if mem.Len(menu.OpGetMenus) != 0 {
		t.Fatalf("GetMenus entries after flush = %d, want 0", mem.Len(menu.OpGetMenus))
	}
}

func TestServer_MetricsHandlerServes(t *testing.T) {
	s, err := NewServer(WithResponseCache(cache.Config{Store: cache.NewMemoryStore()}))
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	rec := httptest.NewRecorder()
	s.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
