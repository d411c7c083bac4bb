package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formFile struct{ field, name, body string }

func multipartRequest(t *testing.T, method, path, token string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminStockUpdateIsAudited(t *testing.T) {
	env := newEnv(t)
	tok := env.adminToken(t)

	entries := captureAccessLogs(t, func() {
		resp, body := env.do(t, "PUT", "/api/products/kds-classic/variants/var-classic-dlx-l-mnt", tok, map[string]any{
			"type": "Deluxe", "size": "Large", "fragrance": "Eucalyptus Mint", "priceAdjustment": 250, "stock": 12, "sku": "KDS-CL-DLX-L-MNT",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode, body)
	})
	e, ok := findAction(entries, "admin.variant.update")
	require.True(t, ok, "expected admin.variant.update audit")
	assert.Equal(t, "audit", e.Level)
	assert.Equal(t, "a-owner", e.UserID)
	assert.Equal(t, "admin", e.Role)
	assert.EqualValues(t, 12, e.Fields["stock"])

	resp, body := env.do(t, "GET", "/api/products/kds-classic/variants/var-classic-dlx-l-mnt/availability", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "IN_STOCK", body["status"])

	entries = captureAccessLogs(t, func() {
		resp, _ := env.do(t, "PUT", "/api/admin/settings", tok, map[string]any{"lowStockThreshold": 20})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
	_, ok = findAction(entries, "admin.settings.update")
	assert.True(t, ok, "expected admin.settings.update audit")

	resp, body = env.do(t, "GET", "/api/products/kds-classic/variants/var-classic-dlx-l-mnt/availability", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "LOW_STOCK", body["status"])
}

func TestProductImageUploadAndServe(t *testing.T) {
	env := newEnv(t)
	tok := env.adminToken(t)

	req := multipartRequest(t, "POST", "/api/products/kds-spray/images", tok, nil,
		formFile{"images", "side.png", "png-bytes"},
		formFile{"images", "top.webp", "webp-bytes"},
	)
	resp, body := env.send(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	images := body["product"].(map[string]any)["images"].([]any)
	require.Len(t, images, 3)
	added := images[1].(map[string]any)
	assert.Equal(t, false, added["isPrimary"])

	resp, err := env.App.Test(httptest.NewRequest("GET", added["url"].(string), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = multipartRequest(t, "POST", "/api/products/kds-spray/images", tok, nil, formFile{"images", "notes.txt", "hello"})
	resp, body = env.send(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "jpg")

	resp, body = env.do(t, "DELETE", "/api/products/kds-spray/images/img-spray-1", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	images = body["product"].(map[string]any)["images"].([]any)
	require.Len(t, images, 2)
	assert.Equal(t, true, images[0].(map[string]any)["isPrimary"])
}

func TestHeroSlideMultipart(t *testing.T) {
	env := newEnv(t)
	tok := env.adminToken(t)

	req := multipartRequest(t, "POST", "/api/hero", tok, map[string]string{
		"title": "Monsoon Sale", "order": "-1", "isActive": "true",
	}, formFile{"image", "banner.jpg", "jpeg-bytes"})
	resp, body := env.send(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	slide := body["slide"].(map[string]any)
	assert.Equal(t, "Shop Now", slide["ctaText"])
	assert.Regexp(t, `^/uploads/.+\.jpg$`, slide["image"])

	resp, body = env.do(t, "GET", "/api/hero", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	slides := body["slides"].([]any)
	require.NotEmpty(t, slides)
	assert.Equal(t, "Monsoon Sale", slides[0].(map[string]any)["title"])

	req = multipartRequest(t, "PUT", "/api/hero/"+slide["id"].(string), tok, map[string]string{
		"title": "Monsoon Sale", "isActive": "false",
	})
	resp, _ = env.send(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, "GET", "/api/hero", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, s := range body["slides"].([]any) {
		assert.NotEqual(t, "Monsoon Sale", s.(map[string]any)["title"])
	}
}
