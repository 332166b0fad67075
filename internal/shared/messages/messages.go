package messages

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type MessageText struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type Messages struct {
	SyncComplete MessageText `json:"sync_complete"`
	LinkFailed   MessageText `json:"link_failed"`
}

var (
	loaded   *Messages
	loadOnce sync.Once
	loadErr  error
)

// Default returns the built-in notification texts.
func Default() *Messages {
	return &Messages{
		SyncComplete: MessageText{
			Title: "Broker sync complete",
			Body:  "Your linked account holdings were imported into your portfolio.",
		},
		LinkFailed: MessageText{
			Title: "Broker link failed",
			Body:  "We could not finish linking your brokerage account. Please try again.",
		},
	}
}

// Load reads the notifications JSON file and caches the result. An empty
// path falls back to the built-in defaults. Safe to call from multiple
// goroutines.
func Load(path string) (*Messages, error) {
	loadOnce.Do(func() {
		if path == "" {
			loaded = Default()
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read messages file: %w", err)
			return
		}
		var m Messages
		if err := json.Unmarshal(data, &m); err != nil {
			loadErr = fmt.Errorf("failed to parse messages file: %w", err)
			return
		}
		loaded = &m
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return loaded, nil
}
