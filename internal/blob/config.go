package blob

// S3Config carries everything needed to address the bucket. Endpoint and
// ForcePathStyle only change how requests are addressed; empty AccessKey
// falls back to the default AWS credential chain (~/.aws/credentials, env).
type S3Config struct {
	Bucket         string
	Region         string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	ForcePathStyle bool
}
