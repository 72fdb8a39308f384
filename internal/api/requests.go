package api

import (
	"net/http"
)

type itemRequestBody struct {
	Description string `json:"description" validate:"required,notblank"`
}

func (s *HTTPServer) createRequest(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	var body itemRequestBody
	if err := decodeBody(r, &body); err != nil {
		return err
	}
	req, err := s.svc.Requests.Create(r.Context(), userID, body.Description)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, req)
	return nil
}

func (s *HTTPServer) listOwnRequests(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	reqs, err := s.svc.Requests.GetAllByUser(r.Context(), userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, reqs)
	return nil
}

func (s *HTTPServer) listOtherRequests(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	from, size, err := pageParams(r)
	if err != nil {
		return err
	}
	reqs, err := s.svc.Requests.GetAll(r.Context(), from, size, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, reqs)
	return nil
}

func (s *HTTPServer) getRequest(w http.ResponseWriter, r *http.Request) error {
	userID, err := callerID(r)
	if err != nil {
		return err
	}
	requestID, err := pathID(r, "id")
	if err != nil {
		return err
	}
	req, err := s.svc.Requests.GetByID(r.Context(), requestID, userID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, req)
	return nil
}
