// internal/app/system/limits/limits.go
package limits

// Upload size limits. These bound memory use while parsing multipart forms.
const (
	// MaxUploadBytes is the default size limit for a single image.
	MaxUploadBytes = 5 << 20 // 5 MB

	// MaxImagesPerRequest bounds how many photos one laag upload may carry.
	MaxImagesPerRequest = 10

	// MaxMultipartMemory is held in memory before spilling to temp files.
	MaxMultipartMemory = 8 << 20 // 8 MB

	// MaxCommentLength is the longest comment accepted, in bytes.
	MaxCommentLength = 4000
)
