package teemo

import (
	"context"
	"net/http"
)

// ========================= high-level API  =========================

func (t *Teemo) CurrentSummoner(ctx context.Context) any {
	return t.Request(ctx, http.MethodGet, "lol-summoner/v1/current-summoner", nil)
}

// GameflowPhase — "None", "Lobby", "Matchmaking", "ReadyCheck", "ChampSelect", "InProgress", ...
func (t *Teemo) GameflowPhase(ctx context.Context) any {
	return t.Request(ctx, http.MethodGet, "lol-gameflow/v1/gameflow-phase", nil)
}

func (t *Teemo) AcceptReadyCheck(ctx context.Context) any {
	return t.Request(ctx, http.MethodPost, "lol-matchmaking/v1/ready-check/accept", nil)
}

func (t *Teemo) DeclineReadyCheck(ctx context.Context) any {
	return t.Request(ctx, http.MethodPost, "lol-matchmaking/v1/ready-check/decline", nil)
}

// только пока матч идёт
func (t *Teemo) LiveAllGameData(ctx context.Context) any {
	return t.LiveRequest(ctx, http.MethodGet, "liveclientdata/allgamedata", nil)
}

func (t *Teemo) LiveActivePlayer(ctx context.Context) any {
	return t.LiveRequest(ctx, http.MethodGet, "liveclientdata/activeplayer", nil)
}
