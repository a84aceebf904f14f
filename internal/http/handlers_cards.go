package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

type createCardRequest struct {
	Name     string `json:"name"`
	LastFour string `json:"last_four"`
	Network  string `json:"network"`
}

type cardJSON struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastFour string `json:"last_four"`
	Network  string `json:"network,omitempty"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	c := core.Card{
		UserID:   userIDFrom(r.Context()),
		Name:     req.Name,
		LastFour: req.LastFour,
		Network:  req.Network,
	}
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.cards.CreateCard(r.Context(), c)
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.cards.ListCards(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		respondServerError(r.Context(), w, err)
		return
	}

	out := make([]cardJSON, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardJSON{ID: c.ID, Name: c.Name, LastFour: c.LastFour, Network: c.Network})
	}
	respondData(w, http.StatusOK, out)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := s.cards.DeleteCard(r.Context(), userIDFrom(r.Context()), id); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]int64{"id": id})
}
