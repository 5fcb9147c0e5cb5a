package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mjuric/labtrack/core"
	"github.com/mjuric/labtrack/core/course"
	"github.com/mjuric/labtrack/core/lab"
	"github.com/mjuric/labtrack/core/user"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    user.ServiceInterface
		CourseSvc  *course.Service
		LabSvc     *lab.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		addr     string
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}

	// route binds a handler to its method, path and required roles. The
	// allow-lists for every protected route live in this one table; an empty
	// role set on an authenticated route means any principal may call it.
	route struct {
		method  string
		path    string
		handler echo.HandlerFunc
		authed  bool
		roles   []string
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps ServerDeps) Server {
	s := &server{
		addr:     addr,
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	authed := authRequired(s.deps.UserSvc, conf)
	for _, r := range s.routes() {
		if r.authed {
			v1.Add(r.method, r.path, r.handler, authed, roleRequired(r.roles...))
		} else {
			v1.Add(r.method, r.path, r.handler)
		}
	}
}

func (s *server) routes() []route {
	userAPI := userApi{svc: s.deps.UserSvc, conf: s.deps.Conf, validate: s.deps.Validate}
	courseAPI := courseApi{svc: s.deps.CourseSvc, validate: s.deps.Validate}
	labAPI := labApi{svc: s.deps.LabSvc, validate: s.deps.Validate}

	staff := user.StaffRoles

	return []route{
		{http.MethodPost, "/login", userAPI.login, false, nil},
		{http.MethodGet, "/users", userAPI.listStudents, true, staff},
		{http.MethodGet, "/users/:id", userAPI.retrieve, true, staff},
		{http.MethodPost, "/change-password", userAPI.changePassword, true, nil},

		{http.MethodGet, "/courses", courseAPI.list, false, nil},
		{http.MethodGet, "/courses/:id", courseAPI.retrieve, false, nil},
		{http.MethodPost, "/courses", courseAPI.create, true, []string{user.RoleProfessor}},
		{http.MethodPost, "/courses/:id/enroll", courseAPI.enroll, true, staff},
		{http.MethodGet, "/courses/:id/students", courseAPI.listStudents, true, staff},
		{http.MethodPost, "/courses/:id/professors", courseAPI.assignProfessor, true, []string{user.RoleProfessor}},

		{http.MethodGet, "/courses/:id/exercises", labAPI.listExercises, false, nil},
		{http.MethodPost, "/courses/:id/exercises", labAPI.createExercise, true, staff},
		// QR generation is deliberately left open while redemption is
		// staff-gated: any holder of the reference can mint it, only staff
		// can redeem.
		{http.MethodGet, "/generate_qr/:exercise_id/:student_id", labAPI.generateQR, false, nil},
		{http.MethodGet, "/grade/:exercise_id/:student_id", labAPI.redeem, true, staff},
		{http.MethodPut, "/grade/:exercise_id/:student_id", labAPI.setPoints, true, staff},
		{http.MethodGet, "/exercises/:id/points", labAPI.listPoints, true, staff},
	}
}

func (s *server) Start() {
	if err := s.app.Start(s.addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Labtrack API!")
}
