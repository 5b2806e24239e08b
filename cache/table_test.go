package cache

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var declared = map[string][]string{
	"GetThings":   nil,
	"GetThing":    {"menu_id"},
	"GetParts":    {"menu_id", "submenu_id"},
	"DeleteThing": {"menu_id"},
	"UpdatePart":  {"menu_id", "submenu_id"},
}

func TestTable_ValidateAccepts(t *testing.T) {
	tbl := Table{
		"DeleteThing": {All("GetThings"), ExactOn("GetThing", "menu_id"), PrefixOn("GetParts", "menu_id")},
		"UpdatePart":  {ExactOn("GetParts", "menu_id", "submenu_id"), ExactOn("GetThing", "menu_id")},
	}
	if err := tbl.Validate(declared); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestTable_ValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		src  string
		want string
	}{
		{"undeclared field", ExactOn("GetParts", "menu_id", "submenu_id"), "DeleteThing", "undeclared"},
		{"exact not full key", ExactOn("GetParts", "menu_id"), "UpdatePart", "must name"},
		{"prefix out of order", PrefixOn("GetParts", "submenu_id"), "UpdatePart", "leading part"},
		{"unknown target", All("GetNothing"), "DeleteThing", "not a declared operation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Table{tt.src: {tt.rule}}.Validate(declared)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	err := Table{"DeleteThing": {ExactOn("GetParts", "menu_id", "submenu_id")}}.Validate(declared)
	if !errors.Is(err, ErrUndeclaredField) {
		t.Fatalf("error = %v, want ErrUndeclaredField", err)
	}
}

func TestTable_Resources(t *testing.T) {
	tbl := Table{
		"A": {All("GetThings"), ExactOn("GetThing", "menu_id")},
		"B": {ExactOn("GetThing", "menu_id")},
	}
	if diff := cmp.Diff([]string{"GetThing", "GetThings"}, tbl.Resources()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}
