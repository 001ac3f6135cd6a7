package model

// PullResult is the outcome of pulling from one peer
type PullResult struct {
	Peer     string
	DeviceID DeviceID
	Result   ImportResult
	Err      error
}
