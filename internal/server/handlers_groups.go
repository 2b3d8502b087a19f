package server

import "net/http"

func (s *Server) handleTickerGroups(w http.ResponseWriter, r *http.Request) {
	sectors := make(map[string][]string)
	for ticker, sector := range s.groups.Sectors {
		sectors[sector] = append(sectors[sector], ticker)
	}

	writeJSON(w, http.StatusOK, struct {
		Groups map[string][]string `json:"groups"`
	}{Groups: sectors})
}
