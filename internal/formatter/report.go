// package formatter renders library update failures into the shareable error report.
package formatter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/desertthunder/updatelog/internal/models"
	"github.com/desertthunder/updatelog/internal/shared"
)

// SourceNameFunc resolves a source ID to its display name. It must never fail.
type SourceNameFunc func(sourceID int64) string

type sourceGroup struct {
	sourceID int64
	titles   []string
}

type messageGroup struct {
	messageID int64
	text      string
	sources   []*sourceGroup
	index     map[int64]int
}

// GenerateReport renders records as a three-level report:
//
//	<preamble>
//
//	! <message text>
//	  # <source name>
//	    - <item title>
//
// Message groups follow the first-seen order of message IDs in records, source groups the first-seen order of
// source IDs within their message group, and items keep record order. The output is byte-identical for identical input.
//
// Returns [shared.ErrMessageNotFound] and no output when a record's message ID is missing from messages.
func GenerateReport(records []models.FailureRecord, messages []models.FailureMessage, resolve SourceNameFunc, preamble string) ([]byte, error) {
	texts := make(map[int64]string, len(messages))
	for _, m := range messages {
		if _, dup := texts[m.ID]; !dup {
			texts[m.ID] = m.Text
		}
	}

	groups, err := groupRecords(records, texts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(preamble)
	buf.WriteString("\n\n")

	for _, g := range groups {
		fmt.Fprintf(&buf, "! %s\n", g.text)
		for _, s := range g.sources {
			fmt.Fprintf(&buf, "  # %s\n", resolve(s.sourceID))
			for _, title := range s.titles {
				fmt.Fprintf(&buf, "    - %s\n", title)
			}
		}
	}

	return buf.Bytes(), nil
}

// groupRecords partitions records by message and then by source, keeping first-seen order at both levels.
func groupRecords(records []models.FailureRecord, texts map[int64]string) ([]*messageGroup, error) {
	var groups []*messageGroup
	byMessage := make(map[int64]int)

	for _, r := range records {
		gi, ok := byMessage[r.MessageID]
		if !ok {
			text, found := texts[r.MessageID]
			if !found {
				return nil, fmt.Errorf("%w: message id %d (item %d %q)", shared.ErrMessageNotFound, r.MessageID, r.ItemID, r.ItemTitle)
			}
			gi = len(groups)
			byMessage[r.MessageID] = gi
			groups = append(groups, &messageGroup{messageID: r.MessageID, text: text, index: make(map[int64]int)})
		}
		g := groups[gi]

		si, ok := g.index[r.SourceID]
		if !ok {
			si = len(g.sources)
			g.index[r.SourceID] = si
			g.sources = append(g.sources, &sourceGroup{sourceID: r.SourceID})
		}
		g.sources[si].titles = append(g.sources[si].titles, r.ItemTitle)
	}

	return groups, nil
}

// Preamble renders the report's help line from a template and documentation URL.
//
// A "%s" in template is replaced by url; otherwise url is appended after a space.
func Preamble(template, url string) string {
	switch {
	case url == "":
		return strings.ReplaceAll(template, "%s", "")
	case strings.Contains(template, "%s"):
		return strings.Replace(template, "%s", url, 1)
	case template == "":
		return url
	default:
		return template + " " + url
	}
}
