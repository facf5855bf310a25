package clickhouse

import (
	"bytes"
	"strings"
)

// Format describes the tab separated response format requested from the
// server.
type Format struct {
	Name      string
	WithNames bool
	WithTypes bool
}

var Formats = &struct {
	TabSeparated                  *Format
	TabSeparatedWithNames         *Format
	TabSeparatedWithNamesAndTypes *Format
}{
	TabSeparated: &Format{
		Name: "TabSeparated",
	},
	TabSeparatedWithNames: &Format{
		Name:      "TabSeparatedWithNames",
		WithNames: true,
	},
	TabSeparatedWithNamesAndTypes: &Format{
		Name:      "TabSeparatedWithNamesAndTypes",
		WithNames: true,
		WithTypes: true,
	},
}

// serverDefault reports whether the server answers in f without being asked.
func (f *Format) serverDefault() bool {
	return f == nil || f.Name == Formats.TabSeparated.Name
}

var fieldUnescaper = strings.NewReplacer(
	`\\`, `\`,
	`\t`, "\t",
	`\n`, "\n",
	`\r`, "\r",
	`\b`, "\b",
	`\f`, "\f",
	`\0`, "\x00",
	`\'`, "'",
)

// splitTabSeparated splits a TabSeparated body into rows of unescaped
// cells. NULL stays as the two characters \N.
func splitTabSeparated(body []byte) [][]string {
	body = bytes.TrimSuffix(body, []byte("\n"))
	if len(body) == 0 {
		return nil
	}
	lines := bytes.Split(body, []byte("\n"))
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(string(line), "\t")
		for i, c := range cells {
			if c != `\N` && strings.IndexByte(c, '\\') >= 0 {
				cells[i] = fieldUnescaper.Replace(c)
			}
		}
		rows = append(rows, cells)
	}
	return rows
}
