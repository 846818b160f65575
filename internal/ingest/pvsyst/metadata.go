package pvsyst

import "strings"

// HeaderVersionKey holds the first non-empty line of the export.
const HeaderVersionKey = "version"

// MetadataMarker extracts one field from lines starting with Prefix.
type MetadataMarker struct {
	Prefix string
	Key    string
	Field  int
}

// DefaultMarkers are the metadata lines PVsyst writes above the table.
var DefaultMarkers = []MetadataMarker{
	{Prefix: "Simulation date", Key: "simulation_date", Field: 2},
}

func parseHeaderInfo(lines []string, markers []MetadataMarker) map[string]string {
	info := make(map[string]string)
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			info[HeaderVersionKey] = strings.Trim(trimmed, "; ")
			break
		}
	}
	for _, line := range lines {
		for _, m := range markers {
			if !strings.HasPrefix(line, m.Prefix) {
				continue
			}
			parts := strings.Split(line, Delimiter)
			if len(parts) > m.Field {
				info[m.Key] = strings.TrimSpace(parts[m.Field])
			}
		}
	}
	return info
}
