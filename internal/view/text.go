package view

import (
	"fmt"
	"io"
	"strings"
)

// RenderText writes a narrowed response for a terminal.
func RenderText(w io.Writer, resp Response) error {
	var b strings.Builder

	switch resp.Kind {
	case KindAnswer:
		b.WriteString(resp.Answer)
		b.WriteString("\n")
		if resp.HasConfidence() {
			fmt.Fprintf(&b, "\nConfidence: %d%%\n", resp.ConfidencePercent())
		}
		if len(resp.Sources) > 0 {
			b.WriteString("\nSources:\n")
			for _, src := range resp.Sources {
				fmt.Fprintf(&b, "  - %s: %s\n", src.Name, indent(src.Text, "    "))
			}
		}
	case KindText:
		b.WriteString(resp.Answer)
		b.WriteString("\n")
	case KindError:
		fmt.Fprintf(&b, "The service answered with an error: %s\n", resp.Message)
	default:
		b.WriteString("Unrecognized response:\n")
		b.WriteString(resp.Raw)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n"+prefix)
}
