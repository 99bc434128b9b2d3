// Utilities for parsing cURL commands copied from browser DevTools.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var headerRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"|--header\s+'([^']+)'|--header\s+"([^"]+)"`)

// CurlHeaders represents parsed headers from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers.
func ParseCurlCommand(curlCmd string) (*CurlHeaders, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)

	for _, match := range headerRegex.FindAllStringSubmatch(curlCmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers}, nil
}

// BearerToken returns the token of the Authorization header when it uses the Bearer scheme.
func (c *CurlHeaders) BearerToken() (string, error) {
	for key, value := range c.Headers {
		if !strings.EqualFold(key, "authorization") {
			continue
		}
		scheme, token, ok := strings.Cut(value, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return "", fmt.Errorf("%w: authorization header is not a bearer token", ErrInvalidToken)
		}
		token = strings.TrimSpace(token)
		if token == "" || token == "undefined" || token == "null" {
			return "", fmt.Errorf("%w: bearer token is empty", ErrInvalidToken)
		}
		return token, nil
	}
	return "", fmt.Errorf("%w: no authorization header", ErrInvalidToken)
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
