package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodedResponse struct {
	Ref        Ref             `json:"ref"`
	Entity     json.RawMessage `json:"entity"`
	AssignedTo *Ref            `json:"assigned_to"`
	Seats      []Ref           `json:"seats"`
}

func create(t *testing.T, url string, body string) (*http.Response, decodedResponse) {
	t.Helper()
	resp, err := http.Post(url+"/", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out decodedResponse
	if resp.StatusCode == http.StatusCreated {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestHandlerCreatesAssetWithCategory(t *testing.T) {
	catalog := NewMemoryCatalog()
	srv := httptest.NewServer(NewHandler(catalog).Routes())
	defer srv.Close()

	resp, out := create(t, srv.URL, `{
		"kind": "asset", "name": "MacBook Air", "asset_tag": "LT-9", "model": "M2",
		"category": {"name": "Laptops", "checkin_email": false}
	}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, KindAsset, out.Ref.Kind)

	item, err := catalog.Checkoutable(context.Background(), out.Ref)
	require.NoError(t, err)
	asset := item.(*Asset)
	assert.Equal(t, "LT-9", asset.Tag)
	require.NotNil(t, asset.Category())
	assert.False(t, asset.Category().CheckinEmail)
}

func TestHandlerCreateValidation(t *testing.T) {
	srv := httptest.NewServer(NewHandler(NewMemoryCatalog()).Routes())
	defer srv.Close()

	resp, _ := create(t, srv.URL, `{"kind": "consumable", "name": "Paper"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = create(t, srv.URL, `{"kind": "user"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandlerCreatesRequestedLicenseSeats(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	srv := httptest.NewServer(NewHandler(catalog).Routes())
	defer srv.Close()

	resp, out := create(t, srv.URL, `{"kind": "license_seat", "name": "Figma", "seats": 3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, out.Seats, 3)
	assert.Equal(t, out.Ref, out.Seats[0])

	var license *License
	for _, ref := range out.Seats {
		item, err := catalog.Checkoutable(ctx, ref)
		require.NoError(t, err)
		seat := item.(*LicenseSeat)
		if license == nil {
			license = seat.License
		}
		assert.Same(t, license, seat.License)
	}
	assert.Equal(t, 3, license.Seats)

	resp, out = create(t, srv.URL, `{"kind": "license_seat", "name": "Sketch"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, out.Seats, 1)
}

func TestHandlerRejectsInvalidSeatCounts(t *testing.T) {
	catalog := NewMemoryCatalog()
	srv := httptest.NewServer(NewHandler(catalog).Routes())
	defer srv.Close()

	for _, body := range []string{
		`{"kind": "license_seat", "name": "Figma", "seats": -1}`,
		`{"kind": "license_seat", "name": "Figma", "seats": 1001}`,
	} {
		resp, _ := create(t, srv.URL, body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestHandlerGetShowsAssignment(t *testing.T) {
	ctx := context.Background()
	catalog := NewMemoryCatalog()
	seat := NewLicenseSeat(NewLicense("Figma", 3))
	user := NewUser("jdoe", "Jane", "Doe")
	require.NoError(t, catalog.Add(ctx, seat))
	require.NoError(t, catalog.Add(ctx, user))
	require.NoError(t, catalog.Assign(ctx, seat, user))

	srv := httptest.NewServer(NewHandler(catalog).Routes())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/license_seat/" + seat.ID.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out decodedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotNil(t, out.AssignedTo)
	assert.Equal(t, user.Ref(), *out.AssignedTo)

	resp2, err := http.Get(srv.URL + "/user/" + user.ID.String())
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/location/not-a-uuid")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp3.StatusCode)
}
