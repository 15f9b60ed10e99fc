package console

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	goConsole "github.com/MrEthical07/goConsole"
	"github.com/MrEthical07/goConsole/api"
	"github.com/go-chi/chi/v5"
	"github.com/tidwall/gjson"
)

// screen is one resource list page.
type screen struct {
	path    string
	title   string
	prefix  string
	columns []string
	rows    func(ctx context.Context, query url.Values) ([]row, error)
	get     func(ctx context.Context, id api.ID) (any, error)
	create  func(ctx context.Context, body any) error
	update  func(ctx context.Context, id api.ID, body any) error
	delete  func(ctx context.Context, id api.ID) error
}

type row struct {
	ID    api.ID
	Cells []string
}

func getter[T any](fn func(context.Context, api.ID) (T, error)) func(context.Context, api.ID) (any, error) {
	return func(ctx context.Context, id api.ID) (any, error) { return fn(ctx, id) }
}

func creator[T any](fn func(context.Context, any) (T, error)) func(context.Context, any) error {
	return func(ctx context.Context, body any) error {
		_, err := fn(ctx, body)
		return err
	}
}

func updater[T any](fn func(context.Context, api.ID, any) (T, error)) func(context.Context, api.ID, any) error {
	return func(ctx context.Context, id api.ID, body any) error {
		_, err := fn(ctx, id, body)
		return err
	}
}

type listData struct {
	Path      string
	Columns   []string
	Rows      []row
	CanAdd    bool
	CanEdit   bool
	CanDelete bool
}

func screens(engine *goConsole.Engine) []screen {
	return []screen{
		{
			path: "/user", title: "Users", prefix: "USER",
			columns: []string{"Username", "Nickname", "Email", "Roles"},
			rows: func(ctx context.Context, q url.Values) ([]row, error) {
				users, err := engine.Users().List(ctx, q)
				if err != nil {
					return nil, err
				}
				out := make([]row, 0, len(users))
				for _, u := range users {
					out = append(out, row{ID: u.ID, Cells: []string{u.Username, u.Nickname, u.Email, strings.Join(u.RoleCodes(), ", ")}})
				}
				return out, nil
			},
			get:    getter(engine.Users().Get),
			create: creator(engine.Users().Create),
			update: updater(engine.Users().Update),
			delete: engine.Users().Delete,
		},
		{
			path: "/role", title: "Roles", prefix: "ROLE",
			columns: []string{"Code", "Name", "Permissions"},
			rows: func(ctx context.Context, q url.Values) ([]row, error) {
				roles, err := engine.Roles().List(ctx, q)
				if err != nil {
					return nil, err
				}
				out := make([]row, 0, len(roles))
				for _, r := range roles {
					out = append(out, row{ID: r.ID, Cells: []string{r.Code, r.Name, strconv.Itoa(len(r.PermissionCodes()))}})
				}
				return out, nil
			},
			get:    getter(engine.Roles().Get),
			create: creator(engine.Roles().Create),
			update: updater(engine.Roles().Update),
			delete: engine.Roles().Delete,
		},
		{
			path: "/permission", title: "Permissions", prefix: "PERMISSION",
			columns: []string{"Code", "Name", "Description"},
			rows: func(ctx context.Context, q url.Values) ([]row, error) {
				perms, err := engine.PermissionsAPI().List(ctx, q)
				if err != nil {
					return nil, err
				}
				out := make([]row, 0, len(perms))
				for _, p := range perms {
					out = append(out, row{ID: p.ID, Cells: []string{p.Code, p.Name, p.Description}})
				}
				return out, nil
			},
			get:    getter(engine.PermissionsAPI().Get),
			create: creator(engine.PermissionsAPI().Create),
			update: updater(engine.PermissionsAPI().Update),
			delete: engine.PermissionsAPI().Delete,
		},
		{
			path: "/menu", title: "Menus", prefix: "MENU",
			columns: []string{"Name", "Path", "Permission"},
			rows: func(ctx context.Context, q url.Values) ([]row, error) {
				menus, err := engine.Menus().List(ctx, q)
				if err != nil {
					return nil, err
				}
				out := make([]row, 0, len(menus))
				for _, m := range menus {
					out = append(out, row{ID: m.ID, Cells: []string{m.Name, m.Path, m.Permission}})
				}
				return out, nil
			},
			get:    getter(engine.Menus().Get),
			create: creator(engine.Menus().Create),
			update: updater(engine.Menus().Update),
			delete: engine.Menus().Delete,
		},
	}
}

func (s *Server) list(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := sc.rows(r.Context(), r.URL.Query())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		p := s.newPage(r, sc.title)
		p.Data = listData{
			Path:      sc.path,
			Columns:   sc.columns,
			Rows:      rows,
			CanAdd:    s.engine.HasPermission(sc.prefix + "_ADD"),
			CanEdit:   s.engine.HasPermission(sc.prefix + "_EDIT"),
			CanDelete: s.engine.HasPermission(sc.prefix + "_DELETE"),
		}
		s.render(w, r, http.StatusOK, "list", p)
	}
}

func (s *Server) remove(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := sc.delete(r.Context(), api.ID(chi.URLParam(r, "id"))); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, sc.path, http.StatusSeeOther)
	}
}

type editData struct {
	Path string
	ID   api.ID
	Body string
}

// formBody returns the JSON object submitted in the body field.
func formBody(r *http.Request) (json.RawMessage, bool) {
	body := strings.TrimSpace(r.PostFormValue("body"))
	if !gjson.Valid(body) || !gjson.Parse(body).IsObject() {
		return nil, false
	}
	return json.RawMessage(body), true
}

func (s *Server) add(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := formBody(r)
		if !ok {
			s.invalidBody(w, r, sc.title)
			return
		}
		if err := sc.create(r.Context(), body); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, sc.path, http.StatusSeeOther)
	}
}

func (s *Server) edit(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := api.ID(chi.URLParam(r, "id"))
		item, err := sc.get(r.Context(), id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		raw, err := json.MarshalIndent(item, "", "  ")
		if err != nil {
			s.fail(w, r, err)
			return
		}
		p := s.newPage(r, "Edit "+sc.title)
		p.Data = editData{Path: sc.path, ID: id, Body: string(raw)}
		s.render(w, r, http.StatusOK, "edit", p)
	}
}

func (s *Server) save(sc screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := formBody(r)
		if !ok {
			s.invalidBody(w, r, sc.title)
			return
		}
		if err := sc.update(r.Context(), api.ID(chi.URLParam(r, "id")), body); err != nil {
			s.fail(w, r, err)
			return
		}
		http.Redirect(w, r, sc.path, http.StatusSeeOther)
	}
}

func (s *Server) invalidBody(w http.ResponseWriter, r *http.Request, title string) {
	p := s.newPage(r, title)
	p.Error = "The submitted body is not a JSON object."
	s.render(w, r, http.StatusBadRequest, "error", p)
}
