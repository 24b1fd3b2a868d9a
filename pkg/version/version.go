package version

const Version = "2.0.0"

// ProtocolVersion is the MCP revision the server speaks by default.
const ProtocolVersion = "2025-03-26"

var SupportedProtocolVersions = []string{
	"2025-03-26",
	"2024-11-05",
}
