package server

import (
	"encoding/json"
	"net/http"
)

// Domain error codes surfaced in the error envelope. Transport-agnostic:
// clients branch on the code, not the HTTP status.
const (
	codeDuplicateSubmission = "DUPLICATE_SUBMISSION"
	codePhotoIDMismatch     = "PHOTO_ID_MISMATCH"
	codeInvalidGuessCount   = "INVALID_GUESS_COUNT"
	codeInvalidNickname     = "INVALID_NICKNAME"
	codeInvalidCoordinates  = "INVALID_COORDINATES"
	codeDateMismatch        = "DATE_MISMATCH"
	codeSetNotFound         = "SET_NOT_FOUND"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
