package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	streamsvc "github.com/rzbill/flume/internal/services/streams"
	"github.com/rzbill/flume/internal/stream"
	logpkg "github.com/rzbill/flume/pkg/log"
	"github.com/rzbill/flume/pkg/streamid"
)

type addReq struct {
	Namespace  string   `json:"namespace"`
	Stream     string   `json:"stream"`
	ID         string   `json:"id"`
	Fields     []string `json:"fields"`
	NoMkStream bool     `json:"noMkStream"`
}

type entryView struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

func viewEntries(entries []stream.Entry) []entryView {
	out := make([]entryView, 0, len(entries))
	for _, e := range entries {
		fields := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, string(f))
		}
		out = append(out, entryView{ID: e.ID.String(), Fields: fields})
	}
	return out
}

// errStatus maps service/domain errors onto HTTP status codes.
func errStatus(err error) int {
	switch {
	case errors.Is(err, streamid.ErrInvalidEntryID),
		errors.Is(err, stream.ErrEntryIDTooSmall):
		return http.StatusBadRequest
	case errors.Is(err, streamsvc.ErrStreamNotFound),
		errors.Is(err, stream.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, streamid.ErrLastEntryIDReached):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req addReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stream == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields := make([][]byte, 0, len(req.Fields))
	for _, f := range req.Fields {
		fields = append(fields, []byte(f))
	}
	id, err := s.streams.Add(r.Context(), streamsvc.AddRequest{
		Namespace:  req.Namespace,
		Stream:     req.Stream,
		ID:         req.ID,
		Fields:     fields,
		NoMkStream: req.NoMkStream,
	})
	if err != nil {
		s.logger.Warn("add failed", logpkg.Str("stream", req.Stream), logpkg.Err(err))
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"id": id.String()})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := streamsvc.RangeRequest{
		Namespace: q.Get("ns"),
		Stream:    q.Get("stream"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
		Filter:    q.Get("filter"),
		Reverse:   q.Get("reverse") == "true",
	}
	if req.Stream == "" {
		writeError(w, http.StatusBadRequest, "stream is required")
		return
	}
	if req.Start == "" {
		req.Start = "-"
	}
	if req.End == "" {
		req.End = "+"
	}
	if v := q.Get("count"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid count")
			return
		}
		req.Count = n
	}
	entries, err := s.streams.Range(r.Context(), req)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]any{"entries": viewEntries(entries)})
}

func (s *Server) handleLen(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("stream")
	if name == "" {
		writeError(w, http.StatusBadRequest, "stream is required")
		return
	}
	n, err := s.streams.Len(r.Context(), r.URL.Query().Get("ns"), name)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]uint64{"length": n})
}

type trimReq struct {
	Namespace string `json:"namespace"`
	Stream    string `json:"stream"`
	Strategy  string `json:"strategy"`
	MaxLen    uint64 `json:"maxLen"`
	MinID     string `json:"minId"`
}

func (s *Server) handleTrim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req trimReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stream == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var strategy stream.TrimStrategy
	switch req.Strategy {
	case "maxlen":
		strategy = stream.TrimMaxLen
	case "minid":
		strategy = stream.TrimMinID
	default:
		writeError(w, http.StatusBadRequest, "strategy must be maxlen or minid")
		return
	}
	removed, err := s.streams.Trim(r.Context(), streamsvc.TrimRequest{
		Namespace: req.Namespace,
		Stream:    req.Stream,
		Strategy:  strategy,
		MaxLen:    req.MaxLen,
		MinID:     req.MinID,
	})
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]uint64{"removed": removed})
}

type deleteReq struct {
	Namespace string   `json:"namespace"`
	Stream    string   `json:"stream"`
	IDs       []string `json:"ids"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req deleteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stream == "" || len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	removed, err := s.streams.Delete(r.Context(), req.Namespace, req.Stream, req.IDs)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]uint64{"removed": removed})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("stream")
	if name == "" {
		writeError(w, http.StatusBadRequest, "stream is required")
		return
	}
	info, err := s.streams.Info(r.Context(), r.URL.Query().Get("ns"), name)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, info)
}

type setIDReq struct {
	Namespace string `json:"namespace"`
	Stream    string `json:"stream"`
	ID        string `json:"id"`
}

func (s *Server) handleSetID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req setIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Stream == "" || req.ID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.streams.SetID(r.Context(), req.Namespace, req.Stream, req.ID); err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
