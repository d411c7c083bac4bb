package apiclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kicks/internal/client/apiclient"
)

func serve(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestBearerHeaderAndDecode(t *testing.T) {
	var gotAuth, gotPath string
	base := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, 200, map[string]any{"user": map[string]any{"id": "u-1", "name": "Asha", "email": "asha@kicks.test"}})
	})
	c := apiclient.New(base, nil)

	u, err := c.Profile(context.Background(), apiclient.Credentials{Token: "tok-1"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/api/users/profile", gotPath)
	require.NotNil(t, u)
	assert.Equal(t, "Asha", u.Name)
}

func TestAnonymousCallsSendNoAuthorization(t *testing.T) {
	var gotAuth string
	var gotQuery string
	base := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		writeJSON(w, 200, map[string]any{"products": []any{}})
	})
	c := apiclient.New(base, nil)

	_, err := c.Products(context.Background(), "Sprays", "")
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "category=Sprays", gotQuery)
}

func TestUnauthorizedRunsPolicy(t *testing.T) {
	base := serve(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]string{"message": "Please log in to continue"})
	})
	var torn, redirected int
	c := apiclient.New(base, &apiclient.Policy{
		Teardown:       func() { torn++ },
		OnUnauthorized: func() { redirected++ },
	})

	_, err := c.Orders(context.Background(), apiclient.Credentials{Token: "stale"})
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindUnauthorized))
	assert.Equal(t, "Please log in to continue", apiclient.Message(err))
	assert.Equal(t, 1, torn)
	assert.Equal(t, 1, redirected)

	// any endpoint, not just the one that set the token
	_, err = c.Dashboard(context.Background(), apiclient.Credentials{Token: "stale"})
	require.Error(t, err)
	assert.Equal(t, 2, torn)
}

func TestErrorKindsAndMessages(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    any
		kind    apiclient.Kind
		message string
	}{
		{"validation", 400, map[string]string{"message": "Please enter a valid email"}, apiclient.KindValidation, "Please enter a valid email"},
		{"conflict", 409, map[string]string{"message": "only 2 left"}, apiclient.KindValidation, "only 2 left"},
		{"server", 500, map[string]string{"message": "Something went wrong. Please try again."}, apiclient.KindServer, apiclient.FallbackMessage},
		{"no message", 404, map[string]string{}, apiclient.KindValidation, apiclient.FallbackMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base := serve(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			err := apiclient.New(base, nil).ForgotPassword(context.Background(), "a@b.co")
			require.Error(t, err)
			assert.True(t, apiclient.IsKind(err, tc.kind), "kind %v", err)
			assert.Equal(t, tc.message, apiclient.Message(err))
		})
	}
}

func TestTransportFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL + "/api"
	srv.Close()

	c := apiclient.New(base, nil)
	c.Timeout = 2 * time.Second
	_, err := c.HeroSlides(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsKind(err, apiclient.KindTransport))
	assert.Equal(t, apiclient.FallbackMessage, apiclient.Message(err))
}

func TestUpdateOrderStatusOmitsBlankNote(t *testing.T) {
	var bodies []map[string]string
	base := serve(t, func(w http.ResponseWriter, r *http.Request) {
		var m map[string]string
		_ = json.NewDecoder(r.Body).Decode(&m)
		bodies = append(bodies, m)
		writeJSON(w, 200, map[string]any{"order": map[string]any{"id": "o-1", "orderStatus": m["status"]}})
	})
	c := apiclient.New(base, nil)
	cred := apiclient.Credentials{Token: "adm"}

	o, err := c.UpdateOrderStatus(context.Background(), cred, "o-1", "Shipped", "")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", string(o.OrderStatus))
	_, err = c.UpdateOrderStatus(context.Background(), cred, "o-1", "Delivered", "left at door")
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	_, hasNote := bodies[0]["note"]
	assert.False(t, hasNote)
	assert.Equal(t, "left at door", bodies[1]["note"])
}
