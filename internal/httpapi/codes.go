package httpapi

import (
	"net/http"
	"strings"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tier"
)

// ---------- Flavors ----------

func (s *Server) listFlavors(w http.ResponseWriter, r *http.Request) {
	flavors := s.share.Catalog().Active()
	if flavors == nil {
		flavors = []catalog.Flavor{}
	}
	writeJSON(w, http.StatusOK, flavors)
}

func (s *Server) searchFlavors(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	found := s.share.Catalog().Search(q)
	if found == nil {
		found = []catalog.Flavor{}
	}
	writeJSON(w, http.StatusOK, found)
}

// ---------- Codes ----------

type encodeReq struct {
	Tiers tier.Assignment `json:"tiers"`
}

type compressReq struct {
	Code string `json:"code"`
}

type compressResp struct {
	Short   string `json:"short"`
	Command string `json:"command"`
}

func (s *Server) encode(w http.ResponseWriter, r *http.Request) {
	var req encodeReq
	if !decodeBody(w, r, &req) {
		return
	}
	sh, err := s.share.Export(r.Context(), s.share.Resolve(req.Tiers), s.slotFor(w, r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

// decode accepts a tier code, a short code or a chat command in ?c=.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	c := r.URL.Query().Get("c")
	if strings.TrimSpace(c) == "" {
		writeError(w, r, http.StatusBadRequest, "missing_parameter", "missing 'c' query param")
		return
	}
	imp, err := s.share.Import(r.Context(), c, s.slotFor(w, r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imp)
}

func (s *Server) compress(w http.ResponseWriter, r *http.Request) {
	var req compressReq
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, r, http.StatusBadRequest, "missing_parameter", "code required")
		return
	}
	short, err := s.share.Compress(r.Context(), req.Code, s.slotFor(w, r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, compressResp{Short: short, Command: shortcode.ChatCommand(short)})
}

func (s *Server) decompress(w http.ResponseWriter, r *http.Request) {
	short := r.URL.Query().Get("s")
	if strings.TrimSpace(short) == "" {
		writeError(w, r, http.StatusBadRequest, "missing_parameter", "missing 's' query param")
		return
	}
	exp, err := s.share.Decompress(r.Context(), short, s.slotFor(w, r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

func (s *Server) forgetRemap(w http.ResponseWriter, r *http.Request) {
	if err := s.share.Forget(r.Context(), s.slotFor(w, r)); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
