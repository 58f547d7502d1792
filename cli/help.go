// Copyright (c) 2024, The OTNS Authors.
// All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
// 1. Redistributions of source code must retain the above copyright
//    notice, this list of conditions and the following disclaimer.
// 2. Redistributions in binary form must reproduce the above copyright
//    notice, this list of conditions and the following disclaimer in the
//    documentation and/or other materials provided with the distribution.
// 3. Neither the name of the copyright holder nor the
//    names of its contributors may be used to endorse or promote products
//    derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS"
// AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE
// IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE
// ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE
// LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR
// CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF
// SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN
// CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE)
// ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
// POSSIBILITY OF SUCH DAMAGE.


package cli

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"golang.org/x/term"
)

// Help holds the command reference parsed from README.md, one entry per "### <command>" section.
type Help struct {
	termWidth   uint
	indentWidth uint
	commands    map[string][]string
	summaries   map[string]string
}

var (
	cmdHeaderPattern  = regexp.MustCompile(`^###\s+(\S+)`)
	linkTargetPattern = regexp.MustCompile(`\(#[a-z-]+\)`)
)

//go:embed README.md
var cliHelpFile string

func newHelp() Help {
	h := Help{
		termWidth:   80,
		indentWidth: 2,
		commands:    map[string][]string{},
		summaries:   map[string]string{},
	}
	h.parse(cliHelpFile)
	h.update()
	return h
}

// update takes the width of the user's terminal into account, if stdout is one.
func (help *Help) update() {
	fdTerm := int(os.Stdout.Fd())
	if term.IsTerminal(fdTerm) {
		if width, _, err := term.GetSize(fdTerm); err == nil && width > 40 {
			help.termWidth = uint(width)
		}
	}
}

// commandNames returns the documented commands, sorted.
func (help *Help) commandNames() []string {
	names := make([]string, 0, len(help.summaries))
	for k := range help.summaries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (help *Help) outputGeneralHelp() string {
	var sb strings.Builder
	for _, c := range help.commandNames() {
		sb.WriteString(fmt.Sprintf("%-10s %s\n", c, help.summaries[c]))
	}
	sb.WriteString(wordwrap.WrapString("\nFor detailed help per command, use: 'help <command>'\n", help.termWidth))
	return sb.String()
}

func (help *Help) outputCommandHelp(command string) string {
	help.update()
	lines, ok := help.commands[command]
	if !ok {
		return fmt.Sprintf("%s\n  (Non-existent command.)\n", command)
	}

	var sb strings.Builder
	sb.WriteString(command + "\n")
	width := help.termWidth - help.indentWidth
	indent := strings.Repeat(" ", int(help.indentWidth))
	for _, line := range lines {
		for _, wrapped := range strings.Split(wordwrap.WrapString(line, width), "\n") {
			sb.WriteString(indent + wrapped + "\n")
		}
	}
	return sb.String()
}

func (help *Help) parse(md string) {
	active := ""
	inCode := false
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimRight(line, " \t")
		if m := cmdHeaderPattern.FindStringSubmatch(line); m != nil {
			active = m[1]
			help.commands[active] = nil
			help.summaries[active] = ""
			inCode = false
			continue
		}
		if active == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "```"):
			if !inCode {
				help.commands[active] = append(help.commands[active], "", "Example:")
			}
			inCode = !inCode
			continue
		case strings.HasPrefix(line, "#"):
			active = ""
			continue
		case len(strings.TrimSpace(line)) == 0:
			continue
		}

		text := markdownUnquote(strings.TrimSpace(line))
		if inCode {
			text = "  " + text
		} else if help.summaries[active] == "" {
			help.summaries[active] = firstSentence(text)
		}
		help.commands[active] = append(help.commands[active], text)
	}
}

func firstSentence(s string) string {
	if idx := strings.Index(s, ". "); idx > 0 {
		return s[:idx+1]
	}
	return s
}

func markdownUnquote(md string) string {
	md = strings.ReplaceAll(md, "\\", "")
	md = strings.ReplaceAll(md, "`", "")
	md = linkTargetPattern.ReplaceAllString(md, "")
	return md
}
