package remote

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/YosefMac/Xapiand/engine"
)

// Pather is implemented by shards that know their location.
type Pather interface {
	Path() string
}

// NewHandler exposes db over HTTP. Write routes answer with a read-only
// error unless db is an engine.WritableDatabase.
func NewHandler(db engine.Database, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	svr := &server{db: db, logger: logger}
	svr.wdb, _ = db.(engine.WritableDatabase)

	router := mux.NewRouter()
	router.HandleFunc("/ping", svr.getPing).Methods("GET").Name("GetPing")
	router.HandleFunc("/reopen", svr.postReopen).Methods("POST").Name("PostReopen")
	router.HandleFunc("/doccount", svr.getDocCount).Methods("GET").Name("GetDocCount")
	router.HandleFunc("/termdocs", svr.postTermDocs).Methods("POST").Name("PostTermDocs")
	router.HandleFunc("/documents/{id:[0-9]+}", svr.getDocument).Methods("GET").Name("GetDocument")
	router.HandleFunc("/replace", svr.postReplace).Methods("POST").Name("PostReplace")
	router.HandleFunc("/delete", svr.postDelete).Methods("POST").Name("PostDelete")
	router.HandleFunc("/spelling", svr.postSpelling).Methods("POST").Name("PostSpelling")
	router.HandleFunc("/spelling/{word}", svr.getSpelling).Methods("GET").Name("GetSpelling")
	router.HandleFunc("/commit", svr.postCommit).Methods("POST").Name("PostCommit")

	return router
}

type server struct {
	db     engine.Database
	wdb    engine.WritableDatabase
	logger *slog.Logger
}

// GET /ping
func (s *server) getPing(w http.ResponseWriter, r *http.Request) {
	resp := PingResponse{Writable: s.wdb != nil}
	if p, ok := s.db.(Pather); ok {
		resp.Path = p.Path()
	}
	s.reply(w, &resp)
}

// POST /reopen
func (s *server) postReopen(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Reopen(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /doccount
func (s *server) getDocCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.DocCount(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, &DocCountResponse{Count: n})
}

// POST /termdocs
func (s *server) postTermDocs(w http.ResponseWriter, r *http.Request) {
	var req TermDocsRequest
	if !s.decode(w, r, &req) {
		return
	}
	ids, err := s.db.TermDocs(r.Context(), req.Term)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, &TermDocsResponse{IDs: ids})
}

// GET /documents/{id}
func (s *server) getDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		s.fail(w, r, engine.ErrInvalidArgument)
		return
	}
	doc, err := s.db.Document(r.Context(), engine.DocID(id))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, doc)
}

// POST /replace
func (s *server) postReplace(w http.ResponseWriter, r *http.Request) {
	var req ReplaceRequest
	if !s.writable(w, r) || !s.decode(w, r, &req) {
		return
	}
	if req.Doc == nil {
		req.Doc = engine.NewDocument()
	}
	id, err := s.wdb.ReplaceDocument(r.Context(), req.Ref, req.Doc)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, &ReplaceResponse{ID: id})
}

// POST /delete
func (s *server) postDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if !s.writable(w, r) || !s.decode(w, r, &req) {
		return
	}
	if err := s.wdb.DeleteDocument(r.Context(), req.Ref); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /spelling
func (s *server) postSpelling(w http.ResponseWriter, r *http.Request) {
	var req SpellingRequest
	if !s.writable(w, r) || !s.decode(w, r, &req) {
		return
	}
	if err := s.wdb.AddSpelling(r.Context(), req.Word, req.FreqInc); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /spelling/{word}
func (s *server) getSpelling(w http.ResponseWriter, r *http.Request) {
	sr, ok := s.db.(engine.SpellingReader)
	if !ok {
		s.reply(w, &SpellingResponse{})
		return
	}
	freq, err := sr.SpellingFrequency(r.Context(), mux.Vars(r)["word"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.reply(w, &SpellingResponse{Frequency: freq})
}

// POST /commit
func (s *server) postCommit(w http.ResponseWriter, r *http.Request) {
	if !s.writable(w, r) {
		return
	}
	if err := s.wdb.Commit(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) writable(w http.ResponseWriter, r *http.Request) bool {
	if s.wdb == nil {
		s.fail(w, r, engine.ErrReadOnly)
		return false
	}
	return true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := msgpack.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, &ErrorResponse{Kind: kindInvalid, Message: err.Error()})
		return false
	}
	return true
}

func (s *server) reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", ContentType)
	if err := msgpack.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := errorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case kindInvalid:
		status = http.StatusBadRequest
	case kindDocNotFound:
		status = http.StatusNotFound
	case kindReadOnly:
		status = http.StatusMethodNotAllowed
	case kindLock:
		status = http.StatusConflict
	case kindOpening, kindNotFound, kindClosed:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.logger.LogAttrs(r.Context(), slog.LevelWarn, "shard request failed",
			slog.String("route", r.URL.Path),
			slog.String("error", err.Error()))
	}
	s.writeError(w, status, &ErrorResponse{Kind: kind, Message: err.Error()})
}

func (s *server) writeError(w http.ResponseWriter, status int, resp *ErrorResponse) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	if err := msgpack.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encoding error response", "error", err)
	}
}
