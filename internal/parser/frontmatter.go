package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klauern/agenttransfer/internal/logging"
	"github.com/klauern/agenttransfer/internal/model"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

// FrontmatterResult contains the parsed frontmatter and remaining content.
type FrontmatterResult struct {
	// Frontmatter contains the raw YAML between the delimiter lines.
	Frontmatter []byte
	// Content contains everything after the closing delimiter line.
	Content string
	// HasFrontmatter indicates whether a complete frontmatter block was found.
	HasFrontmatter bool
}

// SplitFrontmatter separates a leading frontmatter block from the body.
// The first line must be the delimiter and a later line must consist of the
// delimiter alone; trailing spaces and \r are tolerated on both. Anything
// else is treated as a document without frontmatter.
func SplitFrontmatter(content []byte) FrontmatterResult {
	noFrontmatter := FrontmatterResult{Content: string(content)}

	first, rest, ok := cutLine(content)
	if !ok || !isDelimiter(first) {
		return noFrontmatter
	}

	offset := 0
	for offset <= len(rest) {
		line, next, hasNewline := cutLine(rest[offset:])
		if isDelimiter(line) {
			fm := bytes.ReplaceAll(rest[:offset], []byte("\r\n"), []byte("\n"))
			fm = bytes.TrimSuffix(fm, []byte("\n"))
			body := ""
			if hasNewline {
				body = string(next)
			}
			return FrontmatterResult{
				Frontmatter:    fm,
				Content:        body,
				HasFrontmatter: true,
			}
		}
		if !hasNewline {
			break
		}
		offset += len(line) + 1
	}

	return noFrontmatter
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	idx := bytes.IndexByte(b, '\n')
	if idx < 0 {
		return b, nil, false
	}
	return b[:idx], b[idx+1:], true
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == Delimiter
}

// Sections splits text into frontmatter and body for section-aware merging.
// ok is false when the text has no frontmatter block.
func Sections(text string) (frontmatter, body string, ok bool) {
	res := SplitFrontmatter([]byte(text))
	if !res.HasFrontmatter {
		return "", text, false
	}
	return string(res.Frontmatter), res.Content, true
}

// JoinSections rebuilds a document from a frontmatter block and a body.
// eol terminates the delimiter and frontmatter lines; an empty eol means "\n".
func JoinSections(frontmatter, body, eol string) string {
	if eol == "" {
		eol = "\n"
	}
	if eol != "\n" {
		frontmatter = strings.ReplaceAll(frontmatter, "\n", eol)
	}
	return Delimiter + eol + frontmatter + eol + Delimiter + eol + body
}

// ParseYAMLFrontmatter parses YAML frontmatter into a map.
func ParseYAMLFrontmatter(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var result map[string]any
	if err := yaml.Unmarshal(frontmatter, &result); err != nil {
		return nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// ParseMetadata decodes frontmatter into the item metadata record.
// Invalid YAML degrades to empty metadata.
func ParseMetadata(frontmatter []byte) model.Metadata {
	raw, err := ParseYAMLFrontmatter(frontmatter)
	if err != nil {
		logging.Debug("ignoring invalid frontmatter", logging.Err(err))
		return model.EmptyMetadata()
	}

	meta := model.EmptyMetadata()
	for key, value := range raw {
		switch key {
		case "name":
			meta.Name = scalar(value)
		case "description":
			meta.Description = scalar(value)
		case "tools":
			meta.Tools = stringList(value)
		case "allowed-tools":
			meta.AllowedTools = stringList(value)
		case "permissionMode":
			meta.PermissionMode = scalar(value)
		case "permission_mode":
			if meta.PermissionMode == "" {
				meta.PermissionMode = scalar(value)
			}
		case "model":
			meta.Model = scalar(value)
		case "agent_type":
			if s := scalar(value); s != "" {
				meta.AgentType = s
			}
		case "context":
			meta.Context = scalar(value)
		case "agent":
			meta.Agent = scalar(value)
		case "version":
			meta.Version = scalar(value)
		default:
			meta.Extra[key] = value
		}
	}
	return meta
}

// scalar renders a YAML scalar as a string; nil becomes empty.
func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// stringList accepts a comma-separated string or a YAML sequence.
func stringList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, elem := range t {
			if s := scalar(elem); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Describe picks the description shown for an item: the frontmatter value,
// else a short first body line, else the default text.
func Describe(meta model.Metadata, body string) string {
	if meta.Description != "" {
		return meta.Description
	}
	first, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	first = strings.TrimRight(first, "\r")
	if first != "" && len([]rune(first)) < 200 {
		return first
	}
	return model.DefaultDescription
}
