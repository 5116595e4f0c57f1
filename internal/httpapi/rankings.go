package httpapi

import (
	"net/http"
	"strings"

	"github.com/poku-e/tubtakes/internal/ranking"
	"github.com/poku-e/tubtakes/internal/share"
	"github.com/poku-e/tubtakes/internal/tier"
)

type submitReq struct {
	User string `json:"user"`
	Code string `json:"code"`
}

type commandReq struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type submitResp struct {
	Submission ranking.Submission `json:"submission"`
	Import     share.Imported     `json:"import"`
}

type rankingsResp struct {
	Submissions int             `json:"submissions"`
	Scores      []ranking.Score `json:"scores"`
	Tiers       tier.Assignment `json:"tiers"`
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) {
	scores := s.board.Scores()
	writeJSON(w, http.StatusOK, rankingsResp{
		Submissions: s.board.Len(),
		Scores:      scores,
		Tiers:       ranking.Assignment(scores),
	})
}

func (s *Server) submitRanking(w http.ResponseWriter, r *http.Request) {
	var req submitReq
	if !decodeBody(w, r, &req) {
		return
	}
	s.submit(w, r, req.User, req.Code)
}

// submitCommand takes the chat bot form: "/update code:<code>".
func (s *Server) submitCommand(w http.ResponseWriter, r *http.Request) {
	var req commandReq
	if !decodeBody(w, r, &req) {
		return
	}
	if !strings.HasPrefix(strings.TrimSpace(req.Text), "/") {
		writeError(w, r, http.StatusBadRequest, "invalid_command", "text must be a chat command")
		return
	}
	s.submit(w, r, req.User, req.Text)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, user, input string) {
	if strings.TrimSpace(input) == "" {
		writeError(w, r, http.StatusBadRequest, "missing_parameter", "code required")
		return
	}
	imp, err := s.share.Import(r.Context(), input, s.slotFor(w, r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	sub, err := s.board.Submit(user, imp.Tiers)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResp{Submission: sub, Import: imp})
}

func (s *Server) exportRankings(w http.ResponseWriter, r *http.Request) {
	scores := s.board.Scores()
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="rankings.csv"`)
		if err := ranking.WriteCSV(w, scores); err != nil {
			writeFailure(w, r, err)
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="rankings.xlsx"`)
		if err := ranking.WriteXLSX(w, scores); err != nil {
			writeFailure(w, r, err)
		}
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_format", "format must be csv or xlsx")
	}
}
