package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

var hueClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		// Hue bridges present a self-signed certificate.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	},
}

// ErrLinkButtonNotPressed is returned by PairBridge when the user has not yet
// pressed the link button on the Hue bridge.
var ErrLinkButtonNotPressed = errors.New("link button not pressed")

// ErrUnauthorized is returned when the bridge rejects the API credentials.
var ErrUnauthorized = errors.New("unauthorized")

// PairBridge registers pixelpick with the Hue bridge at ip. The user must
// press the link button on the bridge first.
func PairBridge(ctx context.Context, ip net.IP) (BridgeCredentials, error) {
	body := strings.NewReader(`{"devicetype":"pixelpick#device","generateclientkey":true}`)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, bridgeURL(ip, "/api"), body)
	if err != nil {
		return BridgeCredentials{}, fmt.Errorf("creating pair request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hueClient.Do(req)
	if err != nil {
		return BridgeCredentials{}, fmt.Errorf("pairing request: %w", err)
	}
	defer resp.Body.Close()

	var result []pairResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return BridgeCredentials{}, fmt.Errorf("decoding pair response: %w", err)
	}
	return parsePairResponse(result)
}

func parsePairResponse(result []pairResponse) (BridgeCredentials, error) {
	if len(result) == 0 {
		return BridgeCredentials{}, fmt.Errorf("empty pair response")
	}

	r := result[0]
	if r.Error != nil {
		if r.Error.Type == 101 {
			return BridgeCredentials{}, ErrLinkButtonNotPressed
		}
		return BridgeCredentials{}, fmt.Errorf("bridge error %d: %s", r.Error.Type, r.Error.Description)
	}
	if r.Success == nil {
		return BridgeCredentials{}, fmt.Errorf("unexpected pair response: no success or error")
	}
	return BridgeCredentials{Username: r.Success.Username, Clientkey: r.Success.Clientkey}, nil
}

// EntertainmentArea represents a Hue entertainment configuration.
type EntertainmentArea struct {
	ID         string
	Name       string
	ChannelIDs []uint8
	Lights     int
}

func (a EntertainmentArea) String() string {
	return fmt.Sprintf("%s (%d channels, %d lights)", a.Name, len(a.ChannelIDs), a.Lights)
}

// FetchEntertainmentAreas lists the entertainment configurations of the bridge.
func FetchEntertainmentAreas(ctx context.Context, ip net.IP, username string) ([]EntertainmentArea, error) {
	req, err := newHueRequest(ctx, http.MethodGet, bridgeURL(ip, "/clip/v2/resource/entertainment_configuration"), nil, username)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := hueClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching entertainment areas: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}

	var result entertainmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding entertainment response: %w", err)
	}
	return result.areas()
}

func (r entertainmentResponse) areas() ([]EntertainmentArea, error) {
	areas := make([]EntertainmentArea, len(r.Data))
	for i, d := range r.Data {
		channelIDs := make([]uint8, len(d.Channels))
		for j, raw := range d.Channels {
			var ch channelData
			if err := json.Unmarshal(raw, &ch); err != nil {
				return nil, fmt.Errorf("decoding channel %d of %s: %w", j, d.ID, err)
			}
			channelIDs[j] = ch.ChannelID
		}
		areas[i] = EntertainmentArea{
			ID:         d.ID,
			Name:       d.Metadata.Name,
			ChannelIDs: channelIDs,
			Lights:     len(d.LightServices),
		}
	}
	return areas, nil
}

// ActivateArea starts entertainment mode for the area; streaming is only
// accepted while the area is active.
func ActivateArea(ctx context.Context, ip net.IP, username, areaID string) error {
	return setAreaAction(ctx, ip, username, areaID, "start")
}

// DeactivateArea stops entertainment mode; the lights return to their
// previous state.
func DeactivateArea(ctx context.Context, ip net.IP, username, areaID string) error {
	return setAreaAction(ctx, ip, username, areaID, "stop")
}

func setAreaAction(ctx context.Context, ip net.IP, username, areaID, action string) error {
	url := bridgeURL(ip, "/clip/v2/resource/entertainment_configuration/"+areaID)
	body := strings.NewReader(fmt.Sprintf(`{"action":%q}`, action))

	req, err := newHueRequest(ctx, http.MethodPut, url, body, username)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", action, err)
	}

	resp, err := hueClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s area: %w", action, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%s area: HTTP %d", action, resp.StatusCode)
	}
	return nil
}

func bridgeURL(ip net.IP, path string) string {
	host := ip.String()
	if ip.To4() == nil {
		host = "[" + host + "]"
	}
	return "https://" + host + path
}

func newHueRequest(ctx context.Context, method, url string, body io.Reader, username string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("hue-application-key", username)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// JSON mapping structs

type pairResponse struct {
	Success *pairSuccess `json:"success"`
	Error   *pairError   `json:"error"`
}

type pairSuccess struct {
	Username  string `json:"username"`
	Clientkey string `json:"clientkey"`
}

type pairError struct {
	Type        int    `json:"type"`
	Description string `json:"description"`
}

type entertainmentResponse struct {
	Data []entertainmentData `json:"data"`
}

type entertainmentData struct {
	ID            string            `json:"id"`
	Metadata      entertainmentMeta `json:"metadata"`
	Channels      []json.RawMessage `json:"channels"`
	LightServices []json.RawMessage `json:"light_services"`
}

type entertainmentMeta struct {
	Name string `json:"name"`
}

type channelData struct {
	ChannelID uint8 `json:"channel_id"`
}
