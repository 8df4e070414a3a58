package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
)

// Settings are the device choices remembered between runs.
type Settings struct {
	SerialPort  string `json:"serial_port,omitempty"`
	CameraIndex int    `json:"camera_index"`
}

// SettingsFile reads and writes Settings at a fixed path.
type SettingsFile struct {
	path string
}

// NewSettingsFile returns a settings file bound to path.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// Load returns the stored settings. A missing or unreadable file yields
// zero settings; unreadable files are logged.
func (f *SettingsFile) Load() Settings {
	var s Settings
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s
	}
	if err != nil {
		log.Printf("settings: read %s: %v", f.path, err)
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("settings: parse %s: %v", f.path, err)
		return Settings{}
	}
	return s
}

// Update applies fn to the stored settings and writes the result.
func (f *SettingsFile) Update(fn func(*Settings)) error {
	s := f.Load()
	fn(&s)

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// SetSerialPort remembers the serial port.
func (f *SettingsFile) SetSerialPort(port string) error {
	return f.Update(func(s *Settings) { s.SerialPort = port })
}

// SetCameraIndex remembers the camera index.
func (f *SettingsFile) SetCameraIndex(index int) error {
	return f.Update(func(s *Settings) { s.CameraIndex = index })
}
