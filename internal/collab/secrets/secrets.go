// Package secrets implements a collab.Scanner that flags likely hardcoded
// credentials via a regex bank over the raw source, independent of the AST
// (secrets are usually string literals assigned to a suspicious-looking
// name, and a regex over raw text catches cases a pure AST walk over
// recognized literal nodes might miss, e.g. inside f-strings or comments).
package secrets

import (
	"bufio"
	"bytes"
	"regexp"

	"github.com/duriantaco/skylos-go/internal/parser"
	"github.com/duriantaco/skylos-go/pkg/types"
)

type rule struct {
	id      string
	pattern *regexp.Regexp
}

var rules = []rule{
	{"secret-aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"secret-generic-api-key", regexp.MustCompile(`(?i)(api_key|apikey|secret_key|access_token)\s*=\s*["'][A-Za-z0-9_\-]{16,}["']`)},
	{"secret-private-key-block", regexp.MustCompile(`-----BEGIN (RSA|EC|DSA|OPENSSH|PGP) PRIVATE KEY-----`)},
	{"secret-slack-token", regexp.MustCompile(`xox[baprs]-[0-9A-Za-z-]{10,}`)},
	{"secret-hardcoded-password", regexp.MustCompile(`(?i)password\s*=\s*["'][^"'\s]{4,}["']`)},
}

// Scanner scans raw source lines against the rule bank.
type Scanner struct{}

func New() *Scanner { return &Scanner{} }

func (s *Scanner) Name() string { return "secrets" }

func (s *Scanner) Scan(file *parser.ParsedFile, _ []types.Definition) []types.CollabFinding {
	var findings []types.CollabFinding
	scanner := bufio.NewScanner(bytes.NewReader(file.Content))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		for _, r := range rules {
			if r.pattern.MatchString(line) {
				findings = append(findings, types.CollabFinding{
					Source:  "secrets",
					Rule:    r.id,
					File:    file.RelPath,
					Line:    lineNo,
					Message: "possible hardcoded secret",
				})
			}
		}
	}
	return findings
}
