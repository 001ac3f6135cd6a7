package config

import "time"

// NewDeviceForTest creates a Device config for testing purposes
func NewDeviceForTest(id, file string) *Device {
	return &Device{id: id, file: file}
}

// NewAssistantForTest creates an Assistant config for testing purposes
func NewAssistantForTest(path string) *Assistant {
	return &Assistant{path: path}
}

// NewSnapshotForTest creates a Snapshot config for testing purposes
func NewSnapshotForTest(dir, bucket string) *Snapshot {
	return &Snapshot{dir: dir, bucket: bucket}
}

// NewPeerForTest creates a Peer config for testing purposes
func NewPeerForTest(urls []string, timeout time.Duration) *Peer {
	return &Peer{urls: urls, timeout: timeout}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath, redisAddr string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath, redisAddr: redisAddr, redisPrefix: "zia-test"}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
