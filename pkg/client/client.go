// Package client is a Go client for the cane-backend REST API, used by the
// loading point app and integration tools.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cane-backend/internal/models"
	"cane-backend/internal/services"
	"cane-backend/pkg/utils"
)

// Client calls the API with a bearer token. Network failures come back as
// TRANSPORT_ERROR; API failures as the AppError the server reported.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// New creates a client for baseURL. A nil httpClient gets a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SetToken sets the bearer token sent with every request
func (c *Client) SetToken(token string) {
	c.token = token
}

// Login authenticates and keeps the returned token for later calls
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.AccessToken
	return &resp, nil
}

// CreateRegistration submits the registration stage and returns the pending entry
func (c *Client) CreateRegistration(ctx context.Context, req *models.RegistrationRequest) (*models.Entry, error) {
	var entry models.Entry
	if err := c.do(ctx, http.MethodPost, "/api/entries", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// AttachArrival submits or replaces the arrival stage of entry id
func (c *Client) AttachArrival(ctx context.Context, id string, req *models.ArrivalRequest) (*models.Entry, error) {
	var entry models.Entry
	if err := c.do(ctx, http.MethodPut, "/api/entries/"+url.PathEscape(id)+"/arrival", req, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetStatus approves or rejects entry id
func (c *Client) SetStatus(ctx context.Context, id string, status models.EntryStatus, remarks string) (*models.Entry, error) {
	var entry models.Entry
	body := models.StatusRequest{Status: status, Remarks: remarks}
	if err := c.do(ctx, http.MethodPatch, "/api/entries/"+url.PathEscape(id)+"/status", body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	var entry models.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(id), nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries lists entries matching filter, newest first
func (c *Client) ListEntries(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, error) {
	var entries []*models.Entry
	if err := c.do(ctx, http.MethodGet, "/api/entries?"+filterQuery(filter).Encode(), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByMill lists the entries of one mill; filter.MillID is ignored
func (c *Client) ListByMill(ctx context.Context, millID string, filter models.EntryFilter) ([]*models.Entry, error) {
	filter.MillID = ""
	var entries []*models.Entry
	path := "/api/entries/by-mill/" + url.PathEscape(millID) + "?" + filterQuery(filter).Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) Stats(ctx context.Context, filter models.EntryFilter) (*models.EntryStats, error) {
	var stats models.EntryStats
	if err := c.do(ctx, http.MethodGet, "/api/entries/stats?"+filterQuery(filter).Encode(), nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) Comparison(ctx context.Context, id string) (*services.Comparison, error) {
	var cmp services.Comparison
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(id)+"/comparison", nil, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *Client) Events(ctx context.Context, id string) ([]*models.EntryEvent, error) {
	var events []*models.EntryEvent
	if err := c.do(ctx, http.MethodGet, "/api/entries/"+url.PathEscape(id)+"/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func filterQuery(f models.EntryFilter) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("millId", f.MillID)
	set("loadingPointId", f.LoadingPointID)
	set("deviceId", f.DeviceID)
	set("status", string(f.Status))
	set("vehicleNumber", f.VehicleNumber)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return utils.Wrap(utils.ErrCodeInternal, "failed to encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return utils.Wrap(utils.ErrCodeInternal, "failed to build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return utils.TransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return utils.TransportError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// decodeError rebuilds the server's AppError. Gateways that answer without
// an ErrorBody are treated as transport failures.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body utils.ErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Code == "" {
		return utils.TransportError(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}

	appErr := utils.NewAppError(body.Code, body.Message)
	appErr.Fields = body.Fields
	return appErr
}
