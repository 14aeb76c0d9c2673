package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 资格证书附件上传相关常量
const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

var (
	AllowedCertificateExtensions = []string{".pdf", ".png", ".jpg", ".jpeg"}
	AllowedCertificateTypes      = []string{MimeImage, MimePDF}
)
