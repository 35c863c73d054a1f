package config

const (
	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Detection Defaults
	DefaultDeepScanEnabled      = false
	DefaultDeepScanMaxSizeBytes = 100 * 1024 * 1024
	DefaultPrefixBytes          = 512
	DefaultFetchTimeoutSecs     = 10
	DefaultDetectionWorkers     = 8

	// Notification Defaults
	DefaultNotificationsEnabled = false
	DefaultNotificationUsername = "meshhound"

	// Storage Defaults
	DefaultStorageBackend          = "sqlite"
	DefaultStoragePath             = "database/meshhound.db"
	DefaultStorageCompressionCodec = "zstd"
	DefaultStorageWriteTimeoutSecs = 10
	DefaultStorageLockFile         = true

	// HTTP Client Defaults
	DefaultHTTPTimeoutSecs      = 15
	DefaultHTTPMaxRetries       = 2
	DefaultHTTPRetryBaseDelayMs = 500
	DefaultHTTPRetryMaxDelayMs  = 5000
	DefaultHTTPFollowRedirects  = true
	DefaultHTTPMaxRedirects     = 10
	DefaultHTTPEnableHTTP2      = true
	DefaultUserAgent            = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// Crawler Defaults
	DefaultCrawlerMaxDepth              = 2
	DefaultCrawlerMaxConcurrentRequests = 8
	DefaultCrawlerRequestTimeoutSecs    = 20
	DefaultCrawlerMaxBodySizeMB         = 10
	DefaultCrawlerRespectRobotsTxt      = true
	DefaultCrawlerExtractJSLinks        = true

	// Browser Defaults
	DefaultBrowserHeadless            = true
	DefaultBrowserPageLoadTimeoutSecs = 30
	DefaultBrowserWaitAfterLoadMs     = 2000

	// Probe Defaults
	DefaultProbeThreads     = 25
	DefaultProbeTimeoutSecs = 10
	DefaultProbeRetries     = 1
	DefaultProbeMethod      = "HEAD"

	// Resource Guard Defaults
	DefaultResourceGuardEnabled            = false
	DefaultResourceGuardMaxMemoryPercent   = 90.0
	DefaultResourceGuardSampleIntervalSecs = 2
)

// DefaultGenericContentTypes are the content types that trigger a deep scan.
var DefaultGenericContentTypes = []string{
	"application/octet-stream",
	"application/binary",
	"application/x-unknown-content-type",
}

// DefaultResourceTypes are the request types the detector looks at.
var DefaultResourceTypes = []string{"main_frame", "sub_frame", "xmlhttprequest", "other"}

// DefaultRetryStatusCodes are retried by the HTTP client with backoff.
var DefaultRetryStatusCodes = []int{429, 502, 503, 504}
