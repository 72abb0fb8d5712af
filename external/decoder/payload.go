package decoder

import (
	"strings"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/digest"
	"github.com/riskibarqy/overmind/internal/domain/gamemap"
	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/replay"
)

type replayPayload struct {
	GameType   string          `json:"game_type" validate:"required"`
	Category   string          `json:"category"`
	Versions   []int64         `json:"versions" validate:"required,min=1"`
	Expansion  string          `json:"expansion"`
	Frames     int64           `json:"frames" validate:"gte=0"`
	GameFPS    float64         `json:"game_fps" validate:"gte=0"`
	RealType   string          `json:"real_type"`
	IsLadder   bool            `json:"is_ladder"`
	IsPrivate  bool            `json:"is_private"`
	Speed      string          `json:"speed"`
	Region     string          `json:"region"`
	StartTime  time.Time       `json:"start_time" validate:"required"`
	EndTime    time.Time       `json:"end_time" validate:"required"`
	TimeZone   float64         `json:"time_zone" validate:"gte=-14,lte=14"`
	RealLength float64         `json:"real_length" validate:"gte=0"`
	MapHash    string          `json:"map_hash" validate:"required,len=64,hexadecimal"`
	Players    []playerPayload `json:"players" validate:"dive"`
	Winner     *locatorPayload `json:"winner"`
}

type playerPayload struct {
	PID       int    `json:"pid"`
	Name      string `json:"name" validate:"required"`
	ClanTag   string `json:"clan_tag"`
	Race      string `json:"race"`
	Region    int    `json:"region" validate:"gt=0"`
	Realm     int    `json:"realm" validate:"gt=0"`
	ProfileID int64  `json:"profile_id" validate:"gt=0"`
}

type locatorPayload struct {
	Region    int   `json:"region"`
	Realm     int   `json:"realm"`
	ProfileID int64 `json:"profile_id"`
}

type mapPayload struct {
	Hash    string `json:"hash" validate:"omitempty,len=64,hexadecimal"`
	Name    string `json:"name" validate:"required"`
	Width   int    `json:"width" validate:"gt=0"`
	Height  int    `json:"height" validate:"gt=0"`
	TileSet string `json:"tileset"`
	Camera  struct {
		Top    int `json:"top"`
		Left   int `json:"left"`
		Bottom int `json:"bottom"`
		Right  int `json:"right"`
	} `json:"camera"`
}

func (p replayPayload) toDomain(hash, mapHash digest.Digest) replay.Decoded {
	out := replay.Decoded{
		Hash:          hash,
		MapHash:       mapHash,
		GameType:      strings.TrimSpace(p.GameType),
		Category:      p.Category,
		Versions:      append([]int64(nil), p.Versions...),
		Expansion:     p.Expansion,
		Frames:        p.Frames,
		GameFPS:       p.GameFPS,
		RealType:      p.RealType,
		IsLadder:      p.IsLadder,
		IsPrivate:     p.IsPrivate,
		Speed:         p.Speed,
		Region:        p.Region,
		StartTime:     p.StartTime.UTC(),
		EndTime:       p.EndTime.UTC(),
		TimeZoneHours: p.TimeZone,
		RealLength:    time.Duration(p.RealLength * float64(time.Second)),
		Participants:  make([]replay.Participant, 0, len(p.Players)),
	}
	for _, player := range p.Players {
		out.Participants = append(out.Participants, replay.Participant{
			PID:     player.PID,
			Name:    player.Name,
			ClanTag: player.ClanTag,
			Race:    identity.ParseRace(player.Race),
			Locator: identity.Locator{Region: player.Region, Realm: player.Realm, ProfileID: player.ProfileID},
		})
	}
	if p.Winner != nil && p.Winner.ProfileID > 0 {
		winner := identity.Locator{Region: p.Winner.Region, Realm: p.Winner.Realm, ProfileID: p.Winner.ProfileID}
		out.WinnerLocator = &winner
	}
	return out
}

func (p mapPayload) toDomain(hash digest.Digest) gamemap.Record {
	return gamemap.Record{
		Hash:         hash,
		Name:         strings.TrimSpace(p.Name),
		Width:        p.Width,
		Height:       p.Height,
		TileSet:      p.TileSet,
		CameraTop:    p.Camera.Top,
		CameraLeft:   p.Camera.Left,
		CameraBottom: p.Camera.Bottom,
		CameraRight:  p.Camera.Right,
	}
}
