package rawrmenu

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Keksclan/rawrmenu/cache"
	"github.com/Keksclan/rawrmenu/contextx"
	"github.com/Keksclan/rawrmenu/menu"
	"github.com/Keksclan/rawrmenu/policy"
)

func TestScenario_RepeatedReadComputesOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := start(t, WithMetrics(reg), WithResponseCache(cache.Config{Store: cache.NewMemoryStore()}))
	ctx := t.Context()

	m, err := h.client.CreateMenu(ctx, &menu.CreateMenuRequest{Title: "Menu", Description: "Menu"})
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	first, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	second, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("cached response differs (-first +second):\n%s", diff)
	}
	if n := h.svc.n(menu.OpGetMenu); n != 1 {
		t.Fatalf("GetMenu computed %d times, want 1", n)
	}

	want := `
# HELP rawrmenu_cache_lookups_total Cache lookups by resource and result (hit, miss, error, bypass).
# TYPE rawrmenu_cache_lookups_total counter
rawrmenu_cache_lookups_total{resource="GetMenu",result="hit"} 1
rawrmenu_cache_lookups_total{resource="GetMenu",result="miss"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(want), "rawrmenu_cache_lookups_total"); err != nil {
		t.Fatal(err)
	}
}

func TestScenario_ChildWriteRefreshesParentCounts(t *testing.T) {
	h := start(t, WithResponseCache(cache.Config{Store: cache.NewMemoryStore()}))
	ctx := t.Context()
	m, sm, _ := h.tree(t)

	before, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if before.DishesCount != 0 {
		t.Fatalf("dishes_count = %d, want 0", before.DishesCount)
	}
	if _, err := h.client.GetSubmenu(ctx, &menu.GetSubmenuRequest{MenuID: m.ID, SubmenuID: sm.ID}); err != nil {
		t.Fatalf("GetSubmenu: %v", err)
	}

	d, err := h.client.CreateDish(ctx, &menu.CreateDishRequest{MenuID: m.ID, SubmenuID: sm.ID, Title: "D", Description: "D", Price: "3.20"})
	if err != nil {
		t.Fatalf("CreateDish: %v", err)
	}

	after, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if after.DishesCount != 1 || after.SubmenusCount != 1 {
		t.Fatalf("GetMenu after CreateDish = %+v", after)
	}
	sub, err := h.client.GetSubmenu(ctx, &menu.GetSubmenuRequest{MenuID: m.ID, SubmenuID: sm.ID})
	if err != nil {
		t.Fatalf("GetSubmenu: %v", err)
	}
	if sub.DishesCount != 1 {
		t.Fatalf("submenu dishes_count = %d, want 1", sub.DishesCount)
	}
	if n := h.svc.n(menu.OpGetMenu); n != 2 {
		t.Fatalf("GetMenu computed %d times, want 2", n)
	}

	if _, err := h.client.DeleteDish(ctx, &menu.DeleteDishRequest{MenuID: m.ID, SubmenuID: sm.ID, DishID: d.ID}); err != nil {
		t.Fatalf("DeleteDish: %v", err)
	}
	after, err = h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	sub, err = h.client.GetSubmenu(ctx, &menu.GetSubmenuRequest{MenuID: m.ID, SubmenuID: sm.ID})
	if err != nil {
		t.Fatalf("GetSubmenu: %v", err)
	}
	if after.DishesCount != 0 || sub.DishesCount != 0 {
		t.Fatalf("counts after DeleteDish: menu %d, submenu %d, want 0 and 0", after.DishesCount, sub.DishesCount)
	}
}

func TestScenario_DeleteSubmenuEvictsItsDishes(t *testing.T) {
	mem := cache.NewMemoryStore()
	h := start(t, WithResponseCache(cache.Config{Store: mem}))
	ctx := t.Context()

	m, sm, dishes := h.tree(t, "A", "B")
	other, err := h.client.CreateSubmenu(ctx, &menu.CreateSubmenuRequest{MenuID: m.ID, Title: "Other", Description: "Other"})
	if err != nil {
		t.Fatalf("CreateSubmenu: %v", err)
	}
	kept, err := h.client.CreateDish(ctx, &menu.CreateDishRequest{MenuID: m.ID, SubmenuID: other.ID, Title: "C", Description: "C", Price: "2.00"})
	if err != nil {
		t.Fatalf("CreateDish: %v", err)
	}

	for _, d := range dishes {
		if _, err := h.client.GetDish(ctx, &menu.GetDishRequest{MenuID: m.ID, SubmenuID: sm.ID, DishID: d.ID}); err != nil {
			t.Fatalf("GetDish: %v", err)
		}
	}
	if _, err := h.client.GetDish(ctx, &menu.GetDishRequest{MenuID: m.ID, SubmenuID: other.ID, DishID: kept.ID}); err != nil {
		t.Fatalf("GetDish: %v", err)
	}
	if _, err := h.client.GetDishes(ctx, &menu.GetDishesRequest{MenuID: m.ID, SubmenuID: sm.ID}); err != nil {
		t.Fatalf("GetDishes: %v", err)
	}
	if n := mem.Len(menu.OpGetDish); n != 3 {
		t.Fatalf("GetDish entries = %d, want 3", n)
	}

	if _, err := h.client.DeleteSubmenu(ctx, &menu.DeleteSubmenuRequest{MenuID: m.ID, SubmenuID: sm.ID}); err != nil {
		t.Fatalf("DeleteSubmenu: %v", err)
	}
	if n := mem.Len(menu.OpGetDish); n != 1 {
		t.Fatalf("GetDish entries after delete = %d, want 1", n)
	}
	if n := mem.Len(menu.OpGetDishes); n != 0 {
		t.Fatalf("GetDishes entries after delete = %d, want 0", n)
	}

	_, err = h.client.GetDish(ctx, &menu.GetDishRequest{MenuID: m.ID, SubmenuID: sm.ID, DishID: dishes[0].ID})
	if status.Code(err) != codes.NotFound || menu.Detail(err) != "dish not found" {
		t.Fatalf("GetDish after delete = %v", err)
	}
}

func TestScenario_DisabledCache(t *testing.T) {
	spy := &spyStore{Store: cache.NewMemoryStore()}
	h := start(t, WithResponseCache(cache.Config{Store: spy, Disabled: true}))
	ctx := t.Context()

	for range 2 {
		if _, err := h.client.GetMenus(ctx); err != nil {
			t.Fatalf("GetMenus: %v", err)
		}
	}
	if n := h.svc.n(menu.OpGetMenus); n != 2 {
		t.Fatalf("GetMenus computed %d times, want 2", n)
	}
	if _, err := h.client.CreateMenu(ctx, &menu.CreateMenuRequest{Title: "M", Description: "M"}); err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	if n := spy.total(); n != 0 {
		t.Fatalf("store calls = %d, want 0", n)
	}
}

func TestScenario_NotFoundIsCached(t *testing.T) {
	h := start(t, WithResponseCache(cache.Config{Store: cache.NewMemoryStore()}))
	req := &menu.GetMenuRequest{MenuID: uuid.NewString()}

	for range 2 {
		_, err := h.client.GetMenu(t.Context(), req)
		if status.Code(err) != codes.NotFound || menu.Detail(err) != "menu not found" {
			t.Fatalf("GetMenu = %v", err)
		}
	}
	if n := h.svc.n(menu.OpGetMenu); n != 1 {
		t.Fatalf("GetMenu computed %d times, want 1", n)
	}
}

func TestScenario_InvalidRequestIsNotCached(t *testing.T) {
	spy := &spyStore{Store: cache.NewMemoryStore()}
	h := start(t, WithResponseCache(cache.Config{Store: spy}))

	for range 2 {
		_, err := h.client.GetMenu(t.Context(), &menu.GetMenuRequest{MenuID: "not-a-uuid"})
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("code = %v, want InvalidArgument", status.Code(err))
		}
		if msg := status.Convert(err).Message(); !strings.Contains(msg, `"menu_id"`) {
			t.Fatalf("message %s does not name menu_id", msg)
		}
	}
	if n := spy.total(); n != 0 {
		t.Fatalf("store calls = %d, want 0", n)
	}
	if n := h.svc.n(menu.OpGetMenu); n != 0 {
		t.Fatalf("GetMenu computed %d times, want 0", n)
	}
}

func TestScenario_RequestIDEchoed(t *testing.T) {
	h := start(t)
	ctx := metadata.AppendToOutgoingContext(t.Context(), contextx.RequestIDHeader, "req-42")

	var header metadata.MD
	if _, err := h.client.GetMenus(ctx, grpc.Header(&header)); err != nil {
		t.Fatalf("GetMenus: %v", err)
	}
	if got := header.Get(contextx.RequestIDHeader); len(got) != 1 || got[0] != "req-42" {
		t.Fatalf("x-request-id = %v, want [req-42]", got)
	}
}

func TestScenario_WriteGroupHasItsOwnLimit(t *testing.T) {
	h := start(t, WithPolicies(MenuPolicies(
		policy.Policy{},
		policy.Policy{RateLimit: &policy.RateLimitRule{Rate: 1, Window: time.Hour}},
	)...))
	ctx := t.Context()

	if _, err := h.client.CreateMenu(ctx, &menu.CreateMenuRequest{Title: "A", Description: "A"}); err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	_, err := h.client.CreateMenu(ctx, &menu.CreateMenuRequest{Title: "B", Description: "B"})
	if status.Code(err) != codes.ResourceExhausted {
		t.Fatalf("second CreateMenu code = %v, want ResourceExhausted", status.Code(err))
	}
	for range 5 {
		if _, err := h.client.GetMenus(ctx); err != nil {
			t.Fatalf("GetMenus: %v", err)
		}
	}
}

func TestScenario_IDSpellingsShareOneEntry(t *testing.T) {
	mem := cache.NewMemoryStore()
	h := start(t, WithResponseCache(cache.Config{Store: mem}))
	ctx := t.Context()
	m, sm, _ := h.tree(t)
	upper := strings.ToUpper(m.ID)

	got, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: upper})
	if err != nil {
		t.Fatalf("GetMenu(%s): %v", upper, err)
	}
	if got.ID != m.ID {
		t.Fatalf("GetMenu id = %q, want %q", got.ID, m.ID)
	}
	if _, err := h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: m.ID}); err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if n := h.svc.n(menu.OpGetMenu); n != 1 {
		t.Fatalf("GetMenu computed %d times, want 1", n)
	}
	if n := mem.Len(menu.OpGetMenu); n != 1 {
		t.Fatalf("GetMenu entries = %d, want 1", n)
	}

	if _, err := h.client.GetSubmenu(ctx, &menu.GetSubmenuRequest{MenuID: upper, SubmenuID: strings.ReplaceAll(sm.ID, "-", "")}); err != nil {
		t.Fatalf("GetSubmenu with respelled ids: %v", err)
	}

	if _, err := h.client.UpdateMenu(ctx, &menu.UpdateMenuRequest{MenuID: m.ID, Title: "Renamed", Description: "Menu"}); err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	got, err = h.client.GetMenu(ctx, &menu.GetMenuRequest{MenuID: upper})
	if err != nil {
		t.Fatalf("GetMenu: %v", err)
	}
	if got.Title != "Renamed" {
		t.Fatalf("title = %q after update, want Renamed", got.Title)
	}
}
