// Package parser reads agent files and skill directories.
//
// Agents are Markdown files with an optional YAML frontmatter block; skills
// are directories holding a SKILL.md in the same format plus supporting
// files. Parsing never fails on malformed frontmatter: such items get empty
// metadata and the default description.
package parser
