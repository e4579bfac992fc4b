package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/repository"
)

// PlayerStore is the player half of *repository.Queries.
type PlayerStore interface {
	CreatePlayer(ctx context.Context, params repository.CreatePlayerParams) (*repository.Player, error)
	FetchPlayer(ctx context.Context, username string) (*repository.Player, error)
}

type AuthHandler struct {
	log     *logrus.Entry
	players PlayerStore
	cookies *config.Cookies
}

func NewAuthHandler(log *logrus.Entry, players PlayerStore, cookies *config.Cookies) *AuthHandler {
	return &AuthHandler{
		log:     log.WithField("component", "auth"),
		players: players,
		cookies: cookies,
	}
}

type PlayerInfo struct {
	PlayerId int64  `json:"player_id"`
	Username string `json:"username"`
}

type Status struct {
	LoggedIn bool        `json:"logged_in"`
	Player   *PlayerInfo `json:"player,omitempty"`
}

var (
	ErrBadAuthBody        = errors.New("request body must contain url-encoded username and password")
	ErrBadPasswordTooLong = errors.New("password too long")
	ErrUsernameTaken      = errors.New("username taken")
	ErrBadCredentials     = errors.New("invalid username or password")
)

// bcrypt ignores everything past 72 bytes
const maxPasswordBytes = 72

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.PlayerClaims(r.Context())
	if !ok {
		h.cookies.Clear(w)
		sendJSONOrLog(w, h.log, Status{LoggedIn: false})
		return
	}

	if err := h.cookies.Refresh(w, config.NewPlayerClaims(claims.PlayerId, claims.Username)); err != nil {
		internalError(w, h.log, "unable to refresh cookies", err)
		return
	}
	sendJSONOrLog(w, h.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{claims.PlayerId, claims.Username},
	})
}

func (h *AuthHandler) credentials(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseForm(); err != nil {
		sendError(w, h.log, http.StatusBadRequest, ErrBadAuthBody)
		return "", nil, false
	}
	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		sendError(w, h.log, http.StatusBadRequest, ErrBadAuthBody)
		return "", nil, false
	}
	if len(password) > maxPasswordBytes {
		sendError(w, h.log, http.StatusBadRequest, ErrBadPasswordTooLong)
		return "", nil, false
	}
	return username, []byte(password), true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.credentials(w, r)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		internalError(w, h.log, "unable to hash password", err)
		return
	}

	player, err := h.players.CreatePlayer(r.Context(), repository.CreatePlayerParams{
		Username:     username,
		PasswordHash: hash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		sendError(w, h.log, http.StatusConflict, ErrUsernameTaken)
		return
	}
	if err != nil {
		internalError(w, h.log, "unable to insert player", err)
		return
	}

	h.log.WithField("username", player.Username).Info("player registered")
	h.login(w, player)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := h.credentials(w, r)
	if !ok {
		return
	}

	player, err := h.players.FetchPlayer(r.Context(), username)
	if errors.Is(err, pgx.ErrNoRows) {
		sendError(w, h.log, http.StatusUnauthorized, ErrBadCredentials)
		return
	}
	if err != nil {
		internalError(w, h.log, "unable to fetch player", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword(player.PasswordHash, password); err != nil {
		sendError(w, h.log, http.StatusUnauthorized, ErrBadCredentials)
		return
	}

	h.login(w, player)
}

func (h *AuthHandler) login(w http.ResponseWriter, player *repository.Player) {
	claims := config.NewPlayerClaims(player.PlayerId, player.Username)
	if err := h.cookies.Refresh(w, claims); err != nil {
		internalError(w, h.log, "unable to set auth cookies", err)
		return
	}
	sendJSONOrLog(w, h.log, Status{
		LoggedIn: true,
		Player:   &PlayerInfo{player.PlayerId, player.Username},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	sendJSONOrLog(w, h.log, Status{LoggedIn: false})
}
