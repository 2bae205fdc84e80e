// Package topic переводит имена топиков LCU в имена событий на проводе и обратно.
//
//	Forward("/lol-lobby/v2/lobby")               == "OnJsonApiEvent_lol-lobby_v2_lobby"
//	Reverse("OnJsonApiEvent_lol-lobby_v2_lobby") == "/lol-lobby/v2/lobby"
//
// Топики без "/" (например "GetLolLoginV1LoginConnectionState") передаются как есть.
package topic

import "strings"

const (
	// Prefix — общий префикс JSON API событий.
	Prefix = "OnJsonApiEvent"
	// Firehose — нефильтрованный канал: сервер шлёт в него все события.
	Firehose = Prefix
)

func IsPath(t string) bool {
	return strings.Contains(t, "/")
}

// Forward — топик -> имя события на проводе.
func Forward(t string) string {
	if !IsPath(t) {
		return t
	}
	return Prefix + strings.ReplaceAll(t, "/", "_")
}

// Reverse — имя события на проводе -> топик.
// Голый Prefix остаётся самим собой, а не пустой строкой.
func Reverse(wire string) string {
	if len(wire) <= len(Prefix) || !strings.HasPrefix(wire, Prefix) {
		return wire
	}
	return strings.ReplaceAll(wire[len(Prefix):], "_", "/")
}
