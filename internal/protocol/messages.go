package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	ActorID         string         `json:"actor_id"`
	InventorySlots  int            `json:"inventory_slots"`
	Catalogs        CatalogDigests `json:"catalogs"`
}

type CatalogDigests struct {
	BlockPalette     DigestRef `json:"block_palette"`
	ItemPalette      DigestRef `json:"item_palette"`
	BlueprintsDigest string    `json:"blueprints_digest"`
	TuningDigest     string    `json:"tuning_digest,omitempty"`
}

type DigestRef struct {
	Digest string `json:"digest"`
	Count  int    `json:"count"`
}

// CMD (client -> server). Which fields matter depends on Cmd.
type CmdMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ID              string `json:"id"`
	Cmd             string `json:"cmd"`

	Slot    int     `json:"slot,omitempty"`
	ItemID  string  `json:"item_id,omitempty"`
	Corner1 *[3]int `json:"corner1,omitempty"`
	Corner2 *[3]int `json:"corner2,omitempty"`
	Origin  *[3]int `json:"origin,omitempty"`

	Pos   *[3]int `json:"pos,omitempty"`
	Min   *[3]int `json:"min,omitempty"`
	Max   *[3]int `json:"max,omitempty"`
	Block string  `json:"block,omitempty"`

	// COPY/PASTE transform.
	Rotation int    `json:"rotation,omitempty"`
	Mirror   string `json:"mirror,omitempty"`

	// PASTE source: a catalog blueprint or an inline copy document.
	BlueprintID string `json:"blueprint_id,omitempty"`
	Document    string `json:"document,omitempty"`

	Action json.RawMessage `json:"action,omitempty"`
}

// ACK (server -> client)
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`

	ItemEntity string          `json:"item_entity,omitempty"`
	Slot       *int            `json:"slot,omitempty"`
	Payload    string          `json:"payload,omitempty"`
	Placed     *bool           `json:"placed,omitempty"`
	Materials  map[string]int  `json:"materials,omitempty"`
	Action     json.RawMessage `json:"action,omitempty"`
}

// OUTLINE (server -> client): the session's current region outline.
type OutlineMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Seq             uint64  `json:"seq"`
	Visible         bool    `json:"visible"`
	Min             *[3]int `json:"min,omitempty"`
	Max             *[3]int `json:"max,omitempty"`
}
