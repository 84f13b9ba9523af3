package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgevyn/zenzero/internal/rest"
	log "github.com/sirupsen/logrus"
)

// SessionTokenHeader carries the session token on every authenticated request.
const SessionTokenHeader = "X-Session-Token"

const (
	maxLoginBytes = 16 << 10
	// maxProfileBytes leaves room for the name and JSON framing around the image.
	maxProfileBytes = MaxImageLength + 1024
)

type UserDTO struct {
	Uid   string `json:"uid"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
	Theme Theme  `json:"theme"`
}

type LoginDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type ProfileDTO struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// Login godoc
// @Summary Sign in
// @Description Sign in with a name and email, creating the user on first login
// @Tags Session
// @Accept json
// @Produce json
// @Param login body LoginDTO true "Identity"
// @Success 201 {object} SessionDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/session [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing in")

	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBytes)
	var login LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&login); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}

	user, token, err := h.userService.Login(r.Context(), login.Name, login.Email)
	if err != nil {
		if errors.Is(err, ErrUserDataInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, SessionDTO{Token: token, User: userToDTO(user)})
}

// Logout godoc
// @Summary Sign out
// @Tags Session
// @Success 204 "No Content"
// @Router /api/session [delete]
// @Security XSessionToken
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log.Debug("Signing out")
	if err := h.userService.Logout(r.Context(), CurrentSessionToken(r.Context())); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser godoc
// @Summary Get current user
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/user/current [get]
// @Security XSessionToken
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting current user")
	currentUser, err := h.userService.GetCurrentUser(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(currentUser))
}

// UpdateProfile godoc
// @Summary Update current user profile
// @Description Change the display name and profile image (data URL up to 3MB)
// @Tags User
// @Accept json
// @Produce json
// @Param profile body ProfileDTO true "Profile"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/user/current [put]
// @Security XSessionToken
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log.Trace("Updating user profile")

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileBytes)
	var profile ProfileDTO
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format",
			"Maximum image size is 3MB. Please try again with a smaller image.")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), profile.Name, profile.Image)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

// ToggleTheme godoc
// @Summary Toggle light and dark theme
// @Tags User
// @Produce json
// @Success 200 {object} UserDTO
// @Router /api/user/current/theme [put]
// @Security XSessionToken
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	log.Trace("Toggling theme")
	updated, err := h.userService.ToggleTheme(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(updated))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoUser):
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
	case errors.Is(err, ErrUserNotFound):
		rest.WriteError(w, http.StatusNotFound, "User not found", "")
	case errors.Is(err, ErrUserDataInvalid):
		rest.WriteError(w, http.StatusBadRequest, "Invalid user data", err.Error())
	default:
		log.Errorf("user request failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Uid:   user.Uid,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Theme: user.Theme,
	}
}
