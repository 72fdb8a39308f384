package api

import (
	"net/http"

	"shareit/internal/models"
)

type userRequest struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userPatchRequest struct {
	Name  *string `json:"name" validate:"omitempty,notblank"`
	Email *string `json:"email" validate:"omitempty,email"`
}

func (s *HTTPServer) createUser(w http.ResponseWriter, r *http.Request) error {
	var body userRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	user, err := s.svc.Users.Create(r.Context(), body.Name, body.Email)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := s.svc.Users.GetAll(r.Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
	return nil
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	user, err := s.svc.Users.GetByID(r.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body userPatchRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	user, err := s.svc.Users.Update(r.Context(), id, models.UserPatch{Name: body.Name, Email: body.Email})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, user)
	return nil
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := s.svc.Users.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}
