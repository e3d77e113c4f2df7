package server

import (
	"encoding/json"
	"net/http"

	"github.com/hstay/docextract/internal/common"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("response encode error", "error", err)
	}
}

// writeError maps domain errors to status codes; anything unrecognized is a 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if app, ok := common.AsAppError(err); ok {
		if app.Kind == common.KindUpstream || app.Kind == common.KindInternal {
			s.logger.Error("request failed", "code", app.Code, "error", err)
		} else {
			s.logger.Info("request rejected", "code", app.Code, "message", app.Message)
		}
		s.writeJSON(w, app.HTTPStatus(), errorBody{Code: app.Code, Message: app.Message})
		return
	}
	s.logger.Error("request failed", "error", err)
	s.writeJSON(w, http.StatusInternalServerError, errorBody{
		Code:    common.CodeInternalError,
		Message: "internal error",
	})
}
