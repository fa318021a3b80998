package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeJSON は JSON 応答の書き出しヘルパーなのだ。
// エンコード失敗はヘッダー送信後なのでログに残すだけにします。
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("error encoding JSON response", "error", err)
	}
}

// writeError は {"error": "..."} 形式のエラー応答を書き出します。
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
