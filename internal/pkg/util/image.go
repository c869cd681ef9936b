package util

import (
	"bytes"
	"io"

	"github.com/disintegration/imaging"
)

const maxImageEdge = 2048

// NormalizeImage 解码评论附图并统一转成 JPEG，超过最大边长时等比缩小。
// 返回可直接上传的字节流；解码失败说明不是受支持的图片。
func NormalizeImage(r io.Reader) ([]byte, string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", err
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageEdge || bounds.Dy() > maxImageEdge {
		img = imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/jpeg", nil
}
