package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryhaapp/ryha-server/internal/media/images"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMedia_ServesStoredImage(t *testing.T) {
	ts := setupTestServer(t)
	data := testPNG(t)

	url, err := ts.media.SaveGenerated(data, "image/png")
	require.NoError(t, err)

	resp := ts.api.Get(url)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, resp.Header().Get("Cache-Control"))
	assert.Equal(t, data, resp.Body.Bytes())
}

func TestMedia_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	for _, name := range []string{"missing.png", ".hidden"} {
		resp := ts.api.Get(images.URLPrefix + name)
		assert.Equal(t, http.StatusNotFound, resp.Code, name)
	}
}

func TestMedia_BlurHashOnLocalHero(t *testing.T) {
	ts := setupTestServer(t)
	authz := ts.login(t)

	url, err := ts.media.SaveGenerated(testPNG(t), "image/png")
	require.NoError(t, err)

	body := ts.postBody("Post With Local Hero")
	body["imageUrl"] = url
	post := ts.createPost(t, authz, body)
	assert.NotEmpty(t, post.ImageBlurHash)
}
