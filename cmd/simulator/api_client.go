package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type RideStarted struct {
	Message string `json:"message"`
	RideID  string `json:"ride_id"`
}

// RegisterUser creates a new rider account and logs it in
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)
	email := username + "@ridetrack.dev"
	password := "testpassword123"

	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"city":     "Portland",
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("register failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	loginResp, err := c.post("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	if err != nil {
		return nil, "", fmt.Errorf("login request failed: %w", err)
	}
	defer loginResp.Body.Close()

	if loginResp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(loginResp.Body)
		return nil, "", fmt.Errorf("login failed (status %d): %s", loginResp.StatusCode, string(bodyBytes))
	}

	var result AuthResponse
	if err := json.NewDecoder(loginResp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// CreateGroup creates a new riding group
func (c *APIClient) CreateGroup(token, name string) (*Group, error) {
	body := map[string]string{
		"name":        name,
		"description": "Simulator-created group",
	}

	resp, err := c.post("/groups", body, token)
	if err != nil {
		return nil, fmt.Errorf("create group request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create group failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var group Group
	if err := json.NewDecoder(resp.Body).Decode(&group); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &group, nil
}

// JoinGroup joins a rider to a group
func (c *APIClient) JoinGroup(token, groupID string) error {
	resp, err := c.post("/groups/"+groupID+"/join", nil, token)
	if err != nil {
		return fmt.Errorf("join group request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("join group failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// SendConnection sends a connection request to another rider
func (c *APIClient) SendConnection(token, userID string) error {
	resp, err := c.post("/connections/send/"+userID, nil, token)
	if err != nil {
		return fmt.Errorf("send connection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send connection failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// AcceptConnection accepts a pending connection request from another rider
func (c *APIClient) AcceptConnection(token, userID string) error {
	resp, err := c.post("/connections/accept/"+userID, nil, token)
	if err != nil {
		return fmt.Errorf("accept connection request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("accept connection failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// StartRide starts a ride session for a group
func (c *APIClient) StartRide(token, groupID string) (*RideStarted, error) {
	resp, err := c.post("/groups/"+groupID+"/start_ride", nil, token)
	if err != nil {
		return nil, fmt.Errorf("start ride request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("start ride failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var ride RideStarted
	if err := json.NewDecoder(resp.Body).Decode(&ride); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &ride, nil
}

// EndRide ends the active ride session for a group
func (c *APIClient) EndRide(token, groupID string) error {
	resp, err := c.post("/groups/"+groupID+"/end_ride", nil, token)
	if err != nil {
		return fmt.Errorf("end ride request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("end ride failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// DialRoom opens a websocket connection and joins the given room
func (c *APIClient) DialRoom(token, room, username string) (*websocket.Conn, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws?token=" + url.QueryEscape(token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	join := map[string]interface{}{
		"type": "JOIN",
		"payload": map[string]string{
			"room":     room,
			"username": username,
		},
	}
	if err := conn.WriteJSON(join); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join failed: %w", err)
	}

	return conn, nil
}

// SendChat sends a chat message over an open room connection
func (c *APIClient) SendChat(conn *websocket.Conn, room, username, msg string) error {
	chat := map[string]interface{}{
		"type": "MESSAGE",
		"payload": map[string]string{
			"room":     room,
			"username": username,
			"msg":      msg,
		},
	}
	return conn.WriteJSON(chat)
}

// HTTP helpers

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest("POST", c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
