package console

import (
	"net/http"
	"strings"

	goConsole "github.com/MrEthical07/goConsole"
)

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	nav := s.engine.Navigate(r.Context(), r.URL.RequestURI())
	if nav.Outcome == goConsole.NavigateHome {
		http.Redirect(w, r, s.engine.ReturnPath(r.URL.Query().Get(s.engine.Config().Routes.ReturnToParam)), http.StatusFound)
		return
	}

	routes := s.engine.Config().Routes
	p := s.newPage(r, "Sign in")
	p.Redirect = r.URL.Query().Get(routes.ReturnToParam)
	if routes.NoticeParam != "" {
		p.Error = goConsole.DescribeReason(r.URL.Query().Get(routes.NoticeParam))
	}
	s.render(w, r, http.StatusOK, "login", p)
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	redirect := r.PostForm.Get("redirect")
	creds := goConsole.Credentials{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}

	if _, err := s.engine.Login(r.Context(), creds); err != nil {
		p := s.newPage(r, "Sign in")
		p.Error = goConsole.Describe(err)
		p.Redirect = redirect
		s.render(w, r, http.StatusUnauthorized, "login", p)
		return
	}

	http.Redirect(w, r, s.engine.ReturnPath(redirect), http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Logout(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "logout", "error", err)
	}
	http.Redirect(w, r, s.engine.Config().Routes.Login, http.StatusSeeOther)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Forbidden")
	p.Error = goConsole.Describe(goConsole.ErrForbidden)
	s.render(w, r, http.StatusForbidden, "forbidden", p)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Not Found")
	p.Error = goConsole.Describe(goConsole.ErrRouteNotFound)
	s.render(w, r, http.StatusNotFound, "error", p)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(r, "Dashboard")
	p.Data = s.engine.Status()
	s.render(w, r, http.StatusOK, "dashboard", p)
}

type profileData struct {
	User        goConsole.UserInfo
	Roles       []string
	Permissions []string
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	u, _ := s.engine.UserInfo()
	p := s.newPage(r, "Profile")
	p.Data = profileData{User: u, Roles: u.RoleCodes(), Permissions: s.engine.Permissions()}
	s.render(w, r, http.StatusOK, "profile", p)
}
