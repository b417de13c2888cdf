package stub

import (
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/kbrands/storefront-go/internal/model"
)

func (s *Server) registerUser(profile model.Profile, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.store.createUser(profile, hash)
	return err
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("email and password are required"))
		return
	}
	if req.PasswordConfirm != "" && req.PasswordConfirm != req.Password {
		writeJSON(w, http.StatusBadRequest, errorResponse("passwords do not match"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	profile := model.Profile{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	userID, err := s.store.createUser(profile, hash)
	if err != nil {
		if errors.Is(err, errDuplicateEmail) {
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	s.respondWithToken(w, http.StatusCreated, userID, profile)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID, hash, err := s.store.credentials(req.Email)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, detailResponse("invalid email or password"))
		return
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeJSON(w, http.StatusUnauthorized, detailResponse("invalid email or password"))
		return
	}

	profile, err := s.store.profileFor(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	s.respondWithToken(w, http.StatusOK, userID, profile)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, userID int64, profile model.Profile) {
	access, err := mintToken(userID, s.secret, s.expiry)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}
	writeJSON(w, status, model.AuthResponse{Access: access, User: &profile})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	resetToken, err := s.store.issueResetToken(req.Email)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse("user not found"))
		return
	}

	// No mail here; the token goes to the log, which is where you look
	// anyway when driving the stub.
	slog.Info("password reset token issued", "email", req.Email, "token", resetToken)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reset email sent"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if req.Token == "" || req.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("token and new_password are required"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	if err := s.store.resetPassword(req.Token, hash); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	profile, err := s.store.profileFor(userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var update model.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := s.store.updateProfile(userID, update)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleGetStoreSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	name, err := s.store.storeName(userID)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, model.StoreSettings{StoreName: name})
}

func (s *Server) handleUpdateStoreSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	var settings model.StoreSettings
	if !decodeBody(w, r, &settings) {
		return
	}
	if settings.StoreName == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse("store_name is required"))
		return
	}

	if err := s.store.setStoreName(userID, settings.StoreName); err != nil {
		if errors.Is(err, errNotVendor) {
			writeJSON(w, http.StatusForbidden, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
