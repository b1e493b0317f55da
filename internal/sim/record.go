package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"cardduel/internal/domain"
)

// Archiver stores named blobs and returns where they went.
type Archiver interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// Record is the archived summary of one duel.
type Record struct {
	Seed      string          `json:"seed"`
	Winner    domain.Side     `json:"winner,omitempty"`
	Turns     int             `json:"turns"`
	TurnLimit bool            `json:"turnLimit"`
	Rejected  int             `json:"rejected"`
	Final     domain.Snapshot `json:"final"`
}

// NewRecord summarizes a result.
func NewRecord(res Result) Record {
	return Record{
		Seed:      res.Seed,
		Winner:    res.Winner,
		Turns:     res.Turns,
		TurnLimit: res.TurnLimit,
		Rejected:  res.Rejected,
		Final:     res.Final,
	}
}

// Archive stores the record as <seed>/result.json and the match log as
// <seed>/log.txt, returning the locations in that order.
func Archive(ctx context.Context, a Archiver, res Result) ([]string, error) {
	record, err := json.MarshalIndent(NewRecord(res), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal duel record: %w", err)
	}
	log := strings.Join(res.Final.Match.Log, "\n") + "\n"

	var uris []string
	for _, obj := range []struct {
		name string
		data []byte
	}{
		{path.Join(res.Seed, "result.json"), record},
		{path.Join(res.Seed, "log.txt"), []byte(log)},
	} {
		uri, err := a.Put(ctx, obj.name, obj.data)
		if err != nil {
			return uris, fmt.Errorf("failed to archive %s: %w", obj.name, err)
		}
		uris = append(uris, uri)
	}
	return uris, nil
}
