package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
)

func writeEnvelope(w http.ResponseWriter, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dto.Response{Code: code, Message: message, Data: data})
}

func TestClientListComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/posts/100/comments", r.URL.Path)
		writeEnvelope(w, 200, "success", []*dto.CommentDTO{
			{ID: 1, Content: "first", CreatedAt: "2026-08-01T10:00:00Z"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	comments, err := c.ListComments(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Content)
}

func TestClientCreateCommentMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "hello", r.FormValue("content"))
		assert.Equal(t, "7", r.FormValue("parent_comment_id"))

		_, header, err := r.FormFile("image")
		require.NoError(t, err)
		assert.Equal(t, "image.jpg", header.Filename)

		writeEnvelope(w, 200, "success", &dto.CommentCreatedDTO{ID: 8, Content: "hello", ParentID: 7, RootID: 7})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	created, err := c.CreateComment(context.Background(), 100, "hello", 7, []byte{0xff, 0xd8})
	require.NoError(t, err)
	assert.Equal(t, uint64(8), created.ID)
	assert.Equal(t, uint64(7), created.RootID)
}

func TestClientBusinessError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 429, "评论太频繁，请稍后再试", nil)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	_, err := c.CreateComment(context.Background(), 100, "hello", 0, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
}
