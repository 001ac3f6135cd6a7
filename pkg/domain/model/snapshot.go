package model

import (
	"time"
)

// Snapshot is an archived export that can be restored on another device
type Snapshot struct {
	DeviceID  DeviceID   `json:"device_id"`
	CreatedAt time.Time  `json:"created_at"`
	Packets   PacketList `json:"packets"`
}
