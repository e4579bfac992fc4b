package app

import (
	"net/http"

	"github.com/vancomm/minefield/internal/handlers"
	"github.com/vancomm/minefield/internal/middleware"
)

// Handler builds the router and wraps it in the middleware chain.
func (a *App) Handler() http.Handler {
	router := http.NewServeMux()
	a.loadRoutes(router)

	log := a.log.WithField("component", "http")
	mws := []middleware.Middleware{
		middleware.Cors(a.cfg.Origins...),
		middleware.Logging(log),
	}
	if a.cookies != nil {
		mws = append([]middleware.Middleware{middleware.Auth(log, a.cookies)}, mws...)
	}
	return middleware.Wrap(router, mws...)
}

func (a *App) loadRoutes(router *http.ServeMux) {
	handle := func(pattern, path string, h http.HandlerFunc) {
		router.HandleFunc(pattern+" "+a.cfg.BasePath+path, h)
	}
	log := a.log.WithField("component", "handlers")

	game := handlers.NewGameHandler(log, a.store, a.records, a.ws, a.game)

	handle("POST", "/game", game.NewGame)
	handle("GET", "/game/{id}", game.Fetch)
	handle("POST", "/game/{id}/move", game.Move())
	handle("POST", "/game/{id}/flag", game.Flag())
	handle("POST", "/game/{id}/chord", game.Chord())
	handle("POST", "/game/{id}/reset", game.Reset)
	handle("GET", "/game/{id}/connect", game.ConnectWS)

	if a.records != nil {
		list := handlers.NewRecordsHandler(log, a.records)
		handle("GET", "/records", list.List)
	}

	if a.players != nil && a.cookies != nil {
		auth := handlers.NewAuthHandler(log, a.players, a.cookies)
		handle("GET", "/status", auth.Status)
		handle("POST", "/register", auth.Register)
		handle("POST", "/login", auth.Login)
		handle("POST", "/logout", auth.Logout)
	}
}
