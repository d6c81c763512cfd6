package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/forms-app/app"
	"github.com/mbolis/forms-app/httpx"
	"github.com/mbolis/forms-app/log"
	"github.com/mbolis/forms-app/repository"
	"github.com/pkg/errors"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

var validate = validator.New()

type registration struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func Register(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := registration{}
		err := render.DecodeJSON(r.Body, &reg)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if err = validate.Struct(reg); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				httpx.LogInternalError(w, "register.validate", err)
				return
			}
			msgs := map[string]string{}
			for _, fe := range fieldErrs {
				msgs[strings.ToLower(fe.Field())] = fe.Tag()
			}
			httpx.LogValidation(w, r, "register.validate", msgs)
			return
		}

		u, err := app.Users.Create(r.Context(), reg.Username, reg.Email, reg.Password)
		if errors.Is(err, repository.ErrConflict) {
			httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "register.username_taken", "username %s is taken", reg.Username)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "register.create_user", err)
			return
		}

		log.Infof("register: new user %s", u.Username)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, u)
	}
}

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, r)
		if resp.Status() != http.StatusOK {
			log.Debugf("login.failed: %s (%d)", user, resp.Status())
		}
		if err := resp.Flush(w); err != nil {
			log.Errorf("login.write_response: %s", err)
		}
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogInternalError(w, "refresh.new_request", err)
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		if err = resp.Flush(w); err != nil {
			log.Errorf("refresh.write_response: %s", err)
		}
	}
}
