package main

// this file contains implementation of HTTP handlers - REST API

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

type apiHandler struct {
	service          Service
	radio            *Radio
	scheduler        *Scheduler
	auth             AuthConfig
	defaultStreamURL string
}

// NewHTTPRouter wires the REST API. When an auth secret is configured the
// alarm and radio groups require a JWT obtained from POST /api/login; with
// no secret the API is open (single user on a private network).
func NewHTTPRouter(service Service, radio *Radio, scheduler *Scheduler, cfg *Config) *echo.Echo {
	h := &apiHandler{
		service:          service,
		radio:            radio,
		scheduler:        scheduler,
		auth:             cfg.Auth,
		defaultStreamURL: cfg.Player.DefaultStreamURL,
	}

	r := echo.New()
	r.HideBanner = true
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
	}))
	r.Use(middleware.CORS())

	router := r.Group("/api")
	router.GET("/health", h.healthCheck)

	var guards []echo.MiddlewareFunc
	if h.auth.Secret != "" {
		router.POST("/login", h.login)
		guards = append(guards, middleware.JWT([]byte(h.auth.Secret)))
	}

	alarmGroup := router.Group("/alarms", guards...)
	{
		alarmGroup.GET("", h.listAlarms)
		alarmGroup.POST("", h.createAlarm)
		alarmGroup.GET("/:id", h.getAlarm)
		alarmGroup.PUT("/:id", h.updateAlarm)
		alarmGroup.DELETE("/:id", h.deleteAlarm)
	}

	radioGroup := router.Group("/radio", guards...)
	{
		radioGroup.GET("", h.radioStatus)
		radioGroup.GET("/status", h.radioStatus)
		radioGroup.POST("", h.radioSwitch)
	}

	return r
}

func (h *apiHandler) healthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "I am up and running!")
}

func (h *apiHandler) login(c echo.Context) error {
	form := struct {
		Password string `json:"password" form:"password"`
	}{}
	if err := c.Bind(&form); err != nil {
		return h.fail(c, Errorf(ErrInvalid, "missing credentials"))
	}
	if form.Password != h.auth.Password {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"message": "wrong password",
		})
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["exp"] = time.Now().Add(time.Hour * 72).Unix()
	t, err := token.SignedString([]byte(h.auth.Secret))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token": t,
	})
}

func (h *apiHandler) listAlarms(c echo.Context) error {
	alarms, err := h.service.ListAlarms()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, alarms)
}

type alarmForm struct {
	Name      string         `json:"name"`
	Hour      *int           `json:"hour"`
	Minute    *int           `json:"min"`
	StreamURL string         `json:"stream_url"`
	Days      []time.Weekday `json:"days"`
}

func (h *apiHandler) createAlarm(c echo.Context) error {
	form := alarmForm{}
	if err := c.Bind(&form); err != nil {
		return h.fail(c, Errorf(ErrInvalid, "malformed alarm payload"))
	}
	if form.Hour == nil || form.Minute == nil {
		return h.fail(c, Errorf(ErrInvalid, "hour and min are required"))
	}

	alarm, err := h.service.AddAlarm(form.Name, *form.Hour, *form.Minute, form.StreamURL, form.Days)
	if err != nil {
		return h.fail(c, err)
	}
	h.scheduler.Refresh()
	return c.JSON(http.StatusCreated, alarm)
}

func (h *apiHandler) getAlarm(c echo.Context) error {
	id, err := alarmID(c)
	if err != nil {
		return h.fail(c, err)
	}
	alarm, err := h.service.GetAlarm(id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, alarm)
}

func (h *apiHandler) updateAlarm(c echo.Context) error {
	id, err := alarmID(c)
	if err != nil {
		return h.fail(c, err)
	}
	update := AlarmUpdate{}
	if err := c.Bind(&update); err != nil {
		return h.fail(c, Errorf(ErrInvalid, "malformed alarm payload"))
	}
	alarm, err := h.service.UpdateAlarm(id, update)
	if err != nil {
		return h.fail(c, err)
	}
	h.scheduler.Refresh()
	return c.JSON(http.StatusAccepted, alarm)
}

func (h *apiHandler) deleteAlarm(c echo.Context) error {
	id, err := alarmID(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.service.RemoveAlarm(id); err != nil {
		return h.fail(c, err)
	}
	h.scheduler.Refresh()
	return c.JSON(http.StatusAccepted, echo.Map{
		"message": "Done",
	})
}

func (h *apiHandler) radioStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.statusPayload())
}

// radioSwitch keeps the switch semantics of the device API:
// {"switch": "on"|"off", "url": optional}. Switching on without a url
// plays the configured default stream.
func (h *apiHandler) radioSwitch(c echo.Context) error {
	form := struct {
		Switch string `json:"switch"`
		URL    string `json:"url"`
	}{}
	if err := c.Bind(&form); err != nil {
		return h.fail(c, Errorf(ErrInvalid, "malformed radio payload"))
	}

	switch form.Switch {
	case "on":
		url := form.URL
		if url == "" {
			url = h.defaultStreamURL
		}
		if err := h.radio.Start(url); err != nil {
			return h.fail(c, err)
		}
	case "off":
		if err := h.radio.Stop(); err != nil {
			return h.fail(c, err)
		}
	default:
		return h.fail(c, Errorf(ErrInvalid, "switch must be \"on\" or \"off\""))
	}
	return c.JSON(http.StatusOK, h.statusPayload())
}

func (h *apiHandler) statusPayload() echo.Map {
	state := h.radio.Status()
	return echo.Map{
		"isPlaying": state.Status == StatusPlaying,
		"state":     state,
	}
}

func alarmID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, Errorf(ErrInvalid, "alarm id %q is not a number", c.Param("id"))
	}
	return id, nil
}

// fail maps the application error taxonomy onto HTTP statuses.
func (h *apiHandler) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch ErrorCode(err) {
	case ErrInvalid:
		status = http.StatusBadRequest
	case ErrNotFound:
		status = http.StatusNotFound
	case ErrBusy:
		status = http.StatusConflict
	case ErrPlayback:
		status = http.StatusBadGateway
	}
	return c.JSON(status, echo.Map{
		"message": ErrorDescription(err),
	})
}
