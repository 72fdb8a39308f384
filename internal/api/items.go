package api

import (
	"net/http"

	"shareit/internal/models"
)

type itemRequest struct {
	Name        string `json:"name" validate:"required,notblank"`
	Description string `json:"description" validate:"required,notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type itemPatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Description *string `json:"description" validate:"omitempty,notblank"`
	Available   *bool   `json:"available"`
}

type commentRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

func (s *HTTPServer) createItem(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	var body itemRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	item, err := s.svc.Items.Create(r.Context(), userID, models.ItemCreate{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (s *HTTPServer) updateItem(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body itemPatchRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	item, err := s.svc.Items.Update(r.Context(), itemID, userID, models.ItemPatch{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (s *HTTPServer) getItem(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	item, err := s.svc.Items.GetByID(r.Context(), itemID, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, item)
	return nil
}

func (s *HTTPServer) listOwnerItems(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	from, size, err := pageParams(r)
	if err != nil {
		return err
	}
	items, err := s.svc.Items.GetAllByOwner(r.Context(), userID, from, size)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (s *HTTPServer) searchItems(w http.ResponseWriter, r *http.Request) error {
	from, size, err := pageParams(r)
	if err != nil {
		return err
	}
	items, err := s.svc.Items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, items)
	return nil
}

func (s *HTTPServer) addComment(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var body commentRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	comment, err := s.svc.Comments.Add(r.Context(), itemID, userID, body.Text)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, comment)
	return nil
}
