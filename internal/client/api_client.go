package client

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/zcamb1/S-Connect-sub000/internal/api/dto"
)

// APIError 服务端业务错误，code 来自响应封装而非 HTTP 状态
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Message)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client 评论接口的 HTTP 客户端
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

func decode(body []byte, out interface{}) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if env.Code != 200 {
		return &APIError{Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

func (s *Client) ListComments(ctx context.Context, postID uint64) ([]*dto.CommentDTO, error) {
	resp, err := s.http.R().SetContext(ctx).
		Get(fmt.Sprintf("/api/posts/%d/comments", postID))
	if err != nil {
		return nil, err
	}
	var comments []*dto.CommentDTO
	if err := decode(resp.Body(), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *Client) GetCommentCount(ctx context.Context, postID uint64) (int64, error) {
	resp, err := s.http.R().SetContext(ctx).
		Get(fmt.Sprintf("/api/posts/%d/comments/count", postID))
	if err != nil {
		return 0, err
	}
	var count dto.CommentCountDTO
	if err := decode(resp.Body(), &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

// CreateComment 发布评论，image 为空时退化成纯表单请求
func (s *Client) CreateComment(ctx context.Context, postID uint64, content string, parentID uint64, image []byte) (*dto.CommentCreatedDTO, error) {
	req := s.http.R().SetContext(ctx).
		SetFormData(map[string]string{"content": content})
	if parentID > 0 {
		req.SetFormData(map[string]string{"parent_comment_id": strconv.FormatUint(parentID, 10)})
	}
	if len(image) > 0 {
		req.SetFileReader("image", "image.jpg", bytes.NewReader(image))
	}

	resp, err := req.Post(fmt.Sprintf("/api/posts/%d/comments", postID))
	if err != nil {
		return nil, err
	}
	var created dto.CommentCreatedDTO
	if err := decode(resp.Body(), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Client) DeleteComment(ctx context.Context, commentID uint64) (*dto.CommentDeleteDTO, error) {
	resp, err := s.http.R().SetContext(ctx).
		Delete(fmt.Sprintf("/api/comments/%d", commentID))
	if err != nil {
		return nil, err
	}
	var res dto.CommentDeleteDTO
	if err := decode(resp.Body(), &res); err != nil {
		return nil, err
	}
	return &res, nil
}
