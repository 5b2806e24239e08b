package menu

import (
	"encoding/json"
	"net/http"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Keksclan/rawrmenu/cache"
)

const maxTextLen = 250

var priceRe = regexp.MustCompile(`^\d+\.\d{2}$`)

// Issue is one rejected field of a request.
type Issue struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

type validator struct {
	issues []Issue
}

func (v *validator) add(loc, field, msg string) {
	v.issues = append(v.issues, Issue{Loc: []string{loc, field}, Msg: msg})
}

// id checks *value and rewrites it to the canonical lowercase hyphenated
// form, so every spelling of one id hits the same row and cache entry.
func (v *validator) id(field string, value *string) {
	u, err := uuid.Parse(*value)
	if err != nil {
		v.add("path", field, "value is not a valid uuid")
		return
	}
	*value = u.String()
}

func (v *validator) text(field, value string) {
	switch {
	case value == "":
		v.add("body", field, "field required")
	case utf8.RuneCountInString(value) > maxTextLen:
		v.add("body", field, "ensure this value has at most 250 characters")
	}
}

func (v *validator) price(value string) {
	v.text("price", value)
	if value != "" && !priceRe.MatchString(value) {
		v.add("body", "price", "string does not match regex \"^\\d+\\.\\d{2}$\"")
	}
}

// err returns a 422 payload listing every issue, or nil.
func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	content, _ := json.Marshal(map[string][]Issue{"detail": v.issues})
	return &cache.ErrorPayload{StatusCode: http.StatusUnprocessableEntity, Content: content}
}

func (r *GetMenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	return v.err()
}

func (r *CreateMenuRequest) Validate() error {
	var v validator
	v.text("title", r.Title)
	v.text("description", r.Description)
	return v.err()
}

func (r *UpdateMenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.text("title", r.Title)
	v.text("description", r.Description)
	return v.err()
}

func (r *DeleteMenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	return v.err()
}

func (r *GetSubmenusRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	return v.err()
}

func (r *GetSubmenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	return v.err()
}

func (r *CreateSubmenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.text("title", r.Title)
	v.text("description", r.Description)
	return v.err()
}

func (r *UpdateSubmenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	v.text("title", r.Title)
	v.text("description", r.Description)
	return v.err()
}

func (r *DeleteSubmenuRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	return v.err()
}

func (r *GetDishesRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	return v.err()
}

func (r *GetDishRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	v.id(FieldDishID, &r.DishID)
	return v.err()
}

func (r *CreateDishRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	v.text("title", r.Title)
	v.text("description", r.Description)
	v.price(r.Price)
	return v.err()
}

func (r *UpdateDishRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	v.id(FieldDishID, &r.DishID)
	v.text("title", r.Title)
	v.text("description", r.Description)
	v.price(r.Price)
	return v.err()
}

func (r *DeleteDishRequest) Validate() error {
	var v validator
	v.id(FieldMenuID, &r.MenuID)
	v.id(FieldSubmenuID, &r.SubmenuID)
	v.id(FieldDishID, &r.DishID)
	return v.err()
}
