package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const credentialsFileName = "credentials.json"

// BridgeCredentials holds the API credentials for a paired Hue bridge.
type BridgeCredentials struct {
	Username  string `json:"username"`
	Clientkey string `json:"clientkey"`
}

func credentialsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, credentialsFileName), nil
}

func readAllCredentials(path string) (map[string]BridgeCredentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var creds map[string]BridgeCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func writeAllCredentials(path string, all map[string]BridgeCredentials) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadCredentials loads the stored credentials for bridgeID. A missing or
// unreadable file reports not found rather than an error.
func LoadCredentials(bridgeID string) (BridgeCredentials, bool, error) {
	path, err := credentialsPath()
	if err != nil {
		return BridgeCredentials{}, false, err
	}

	creds, err := readAllCredentials(path)
	if err != nil {
		return BridgeCredentials{}, false, nil
	}

	bc, ok := creds[bridgeID]
	return bc, ok, nil
}

// SaveCredentials persists the credentials for bridgeID, keeping those of
// other bridges. The directory is created with 0700 and the file with 0600.
func SaveCredentials(bridgeID string, creds BridgeCredentials) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	all, err := readAllCredentials(path)
	if err != nil || all == nil {
		all = make(map[string]BridgeCredentials)
	}
	all[bridgeID] = creds
	return writeAllCredentials(path, all)
}

// DeleteCredentials removes the stored credentials for bridgeID.
func DeleteCredentials(bridgeID string) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}

	all, err := readAllCredentials(path)
	if err != nil {
		return err
	}
	delete(all, bridgeID)
	return writeAllCredentials(path, all)
}
