package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType 按文件头嗅探 MIME 类型并与白名单比对。
// 嗅探会消耗读取位置，调用方上传前需重新打开文件。
// allowedTypes 为 MIME 前缀或完整类型，如 "image/", "application/pdf"。
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}
	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsAllowedCertificateExtension 证书附件扩展名白名单（小写比对）
func IsAllowedCertificateExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range AllowedCertificateExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
