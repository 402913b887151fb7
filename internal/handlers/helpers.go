package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cane-backend/internal/auth"
	"cane-backend/pkg/utils"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst. Unknown fields are ignored so older
// app builds keep working.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.WriteError(w, utils.ValidationError(map[string]string{"body": "invalid JSON: " + err.Error()}))
		return false
	}
	return true
}

// sessionOf returns the caller's session; the router only mounts these
// handlers behind Authenticate
func sessionOf(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		utils.WriteError(w, utils.NewAppError(utils.ErrCodeUnauthorized, "authentication required"))
	}
	return session, ok
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
