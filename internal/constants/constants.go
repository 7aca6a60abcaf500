package constants

// DefaultBaseURL is the standard base URL for the OpenSubtitles REST API.
const DefaultBaseURL = "https://api.opensubtitles.com/api/v1"

// LegacyEndpoint is the OpenSubtitles.org XML-RPC endpoint.
const LegacyEndpoint = "https://api.opensubtitles.org/xml-rpc"

// UserAgent is sent by every provider request.
const UserAgent = "subfinder v0.1.0"

// LegacyUserAgent is the agent string registered with the XML-RPC service.
const LegacyUserAgent = "VLSub 0.11.1"
