package nakama

import (
	"encoding/json"

	"kmahjong/internal/domain"
)

// Client request payloads. Tiles travel as their wire strings ("man-3",
// "wind-1") and are validated by domain.ParseTile at this boundary.

type discardRequest struct {
	Tile string `json:"tile"`
}

type kongRequest struct {
	Kind string `json:"kind"`
	Tile string `json:"tile"`
}

type callResponseRequest struct {
	Call string `json:"call"`
}

func parseDiscard(data []byte) (domain.Tile, error) {
	var req discardRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.Tile{}, err
	}
	return domain.ParseTile(req.Tile)
}

func parseKong(data []byte) (domain.KongOption, error) {
	var req kongRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.KongOption{}, err
	}
	tile, err := domain.ParseTile(req.Tile)
	if err != nil {
		return domain.KongOption{}, err
	}
	kind := domain.MeldKind(req.Kind)
	switch kind {
	case domain.MeldClosedKong, domain.MeldAddedKong:
	default:
		return domain.KongOption{}, domain.ErrNoSuchKong
	}
	return domain.KongOption{Kind: kind, Tile: tile}, nil
}

func parseCallResponse(data []byte) (domain.CallKind, error) {
	var req callResponseRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.CallPass, err
	}
	kind := domain.CallKind(req.Call)
	switch kind {
	case domain.CallPass, domain.CallPung, domain.CallKong, domain.CallRon:
		return kind, nil
	}
	return domain.CallPass, domain.ErrNoSuchCall
}

type gameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
