package sdmx

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// Source is one dataset location from the source list. A bare data URL is a
// self-contained SDMX-JSON payload; a second URL names the separate SDMX-XML
// structure document. Code is the optional dataset-code annotation.
type Source struct {
	DataURL      string
	StructureURL string
	Code         string
}

// ResolveCode returns the annotated dataset code, falling back to the code
// embedded in the data URL path.
func (s Source) ResolveCode() (string, error) {
	if s.Code != "" {
		return s.Code, nil
	}
	return DatasetCode(s.DataURL)
}

var dataPathPattern = regexp.MustCompile(`/data/([^/]+)/`)

// DatasetCode infers the dataset code from an SDMX data URL, whose path
// contains a /data/AGENCY,CODE,VERSION/ segment.
func DatasetCode(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("cannot infer dataset code from URL %s: %w", rawURL, err)
	}
	match := dataPathPattern.FindStringSubmatch(parsed.Path)
	if match == nil {
		return "", fmt.Errorf("cannot infer dataset code from URL: %s", rawURL)
	}
	parts := strings.Split(match[1], ",")
	if len(parts) < 2 {
		return "", fmt.Errorf("unexpected path shape for dataset URL: %s", rawURL)
	}
	return parts[1], nil
}

// LoadSources reads the source list file: one entry per line, formatted as
// data_url[;structure_url][;code]. Blank lines and # comments are skipped.
// A second field that is not a URL is taken as the dataset-code annotation.
func LoadSources(path string) ([]Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source list %s: %w", path, err)
	}
	defer file.Close()

	var sources []Source
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ";")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		src := Source{DataURL: fields[0]}
		if len(fields) > 1 && fields[1] != "" {
			if isURL(fields[1]) {
				src.StructureURL = fields[1]
			} else {
				src.Code = fields[1]
			}
		}
		if len(fields) > 2 && fields[2] != "" && src.Code == "" {
			src.Code = fields[2]
		}
		if src.DataURL == "" {
			continue
		}
		sources = append(sources, src)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source list %s: %w", path, err)
	}
	return sources, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
