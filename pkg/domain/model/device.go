package model

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// DeviceID identifies an instance in the sync protocol
type DeviceID string

// NewDeviceID generates a short random device identifier
func NewDeviceID() DeviceID {
	return DeviceID(uuid.New().String()[:8])
}

// Validate checks a device ID loaded from outside the process
func (d DeviceID) Validate() error {
	if d == "" {
		return goerr.New("device ID cannot be empty")
	}
	if strings.IndexFunc(string(d), unicode.IsSpace) >= 0 {
		return goerr.New("device ID must not contain whitespace", goerr.V("device_id", d))
	}
	return nil
}

func (d DeviceID) String() string {
	return string(d)
}
